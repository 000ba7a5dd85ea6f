package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Awaddd/bazaar-backend/internal/domain"
	"github.com/Awaddd/bazaar-backend/internal/repository"
	"github.com/Awaddd/bazaar-backend/pkg/database"
	apperrors "github.com/Awaddd/bazaar-backend/pkg/errors"
)

// viewSelect joins products with brand and category names so views come
// back with references already resolved.
const viewSelect = `
	SELECT p.id, p.name, p.slug, p.description, p.care, p.price_cents, p.image_url,
	       b.name AS brand, c.name AS category, p.created_at
	FROM products p
	JOIN brands b ON b.id = p.brand_id
	JOIN categories c ON c.id = p.category_id`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts the product row and its gallery, features, and sizes in a
// single transaction, filling in the generated ID.
func (r *ProductRepository) Create(ctx context.Context, np *repository.NewProduct) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create product: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p := &np.Product

	err = tx.QueryRow(ctx, `
		INSERT INTO products (name, slug, description, care, price_cents, image_url, brand_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		p.Name, p.Slug, p.Description, p.Care, p.PriceCents, p.ImageURL, p.BrandID, p.CategoryID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("unknown brand or category reference")
		}
		return fmt.Errorf("insert product: %w", err)
	}

	for i, url := range np.Gallery {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_images (product_id, url, sort_order)
			VALUES ($1, $2, $3)`,
			p.ID, url, i,
		); err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}

	for _, feature := range np.Features {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_features (product_id, feature)
			VALUES ($1, $2)`,
			p.ID, feature,
		); err != nil {
			return fmt.Errorf("insert product feature: %w", err)
		}
	}

	for _, size := range np.Sizes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_sizes (product_id, size, available)
			VALUES ($1, $2, $3)`,
			p.ID, size.Size, size.Available,
		); err != nil {
			if isUniqueViolation(err) {
				return apperrors.InvalidInput(fmt.Sprintf("duplicate size entry %d", size.Size))
			}
			return fmt.Errorf("insert product size: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create product: %w", err)
	}
	return nil
}

// GetView retrieves one fully hydrated product view.
func (r *ProductRepository) GetView(ctx context.Context, id int64) (*domain.ProductView, error) {
	var v domain.ProductView

	err := r.db.QueryRow(ctx, viewSelect+` WHERE p.id = $1`, id).Scan(
		&v.ID, &v.Name, &v.Slug, &v.Description, &v.Care, &v.PriceCents, &v.ImageURL,
		&v.Brand, &v.Category, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}

	views := []domain.ProductView{v}
	if err := r.hydrate(ctx, views); err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListViews returns hydrated views for the whole catalog, ordered by ID.
func (r *ProductRepository) ListViews(ctx context.Context) ([]domain.ProductView, error) {
	rows, err := r.db.Query(ctx, viewSelect+` ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	views, err := scanViews(rows)
	if err != nil {
		return nil, err
	}

	if err := r.hydrate(ctx, views); err != nil {
		return nil, err
	}
	return views, nil
}

// GetViews returns hydrated views for the given IDs; missing IDs are
// absent from the result.
func (r *ProductRepository) GetViews(ctx context.Context, ids []int64) ([]domain.ProductView, error) {
	if len(ids) == 0 {
		return []domain.ProductView{}, nil
	}

	rows, err := r.db.Query(ctx, viewSelect+` WHERE p.id = ANY($1) ORDER BY p.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}

	views, err := scanViews(rows)
	if err != nil {
		return nil, err
	}

	if err := r.hydrate(ctx, views); err != nil {
		return nil, err
	}
	return views, nil
}

func scanViews(rows pgx.Rows) ([]domain.ProductView, error) {
	defer rows.Close()

	views := []domain.ProductView{}
	for rows.Next() {
		var v domain.ProductView
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Slug, &v.Description, &v.Care, &v.PriceCents, &v.ImageURL,
			&v.Brand, &v.Category, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return views, nil
}

// hydrate batch-loads gallery URLs, features, and sizes for the given views
// with one query per collection instead of per product.
func (r *ProductRepository) hydrate(ctx context.Context, views []domain.ProductView) error {
	if len(views) == 0 {
		return nil
	}

	ids := make([]int64, len(views))
	index := make(map[int64]int, len(views))
	for i := range views {
		ids[i] = views[i].ID
		index[views[i].ID] = i
		views[i].Gallery = []string{}
		views[i].Features = []string{}
		views[i].Sizes = []domain.ProductSize{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT product_id, url
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY product_id, sort_order`, ids)
	if err != nil {
		return fmt.Errorf("load product images: %w", err)
	}
	for rows.Next() {
		var (
			productID int64
			url       string
		)
		if err := rows.Scan(&productID, &url); err != nil {
			rows.Close()
			return fmt.Errorf("scan product image: %w", err)
		}
		if i, ok := index[productID]; ok {
			views[i].Gallery = append(views[i].Gallery, url)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate product images: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT product_id, feature
		FROM product_features
		WHERE product_id = ANY($1)
		ORDER BY product_id, id`, ids)
	if err != nil {
		return fmt.Errorf("load product features: %w", err)
	}
	for rows.Next() {
		var (
			productID int64
			feature   string
		)
		if err := rows.Scan(&productID, &feature); err != nil {
			rows.Close()
			return fmt.Errorf("scan product feature: %w", err)
		}
		if i, ok := index[productID]; ok {
			views[i].Features = append(views[i].Features, feature)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate product features: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT product_id, size, available
		FROM product_sizes
		WHERE product_id = ANY($1)
		ORDER BY product_id, size`, ids)
	if err != nil {
		return fmt.Errorf("load product sizes: %w", err)
	}
	for rows.Next() {
		var (
			productID int64
			size      domain.ProductSize
		)
		if err := rows.Scan(&productID, &size.Size, &size.Available); err != nil {
			rows.Close()
			return fmt.Errorf("scan product size: %w", err)
		}
		if i, ok := index[productID]; ok {
			views[i].Sizes = append(views[i].Sizes, size)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate product sizes: %w", err)
	}

	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}
