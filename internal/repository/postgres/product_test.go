package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Awaddd/bazaar-backend/internal/domain"
	"github.com/Awaddd/bazaar-backend/internal/repository"
	"github.com/Awaddd/bazaar-backend/pkg/database"
	apperrors "github.com/Awaddd/bazaar-backend/pkg/errors"
)

var viewColumns = []string{"id", "name", "slug", "description", "care", "price_cents", "image_url", "brand", "category", "created_at"}

func expectHydration(mock pgxmock.PgxPoolIface, ids []int64, imageRows, featureRows, sizeRows *pgxmock.Rows) {
	mock.ExpectQuery(`SELECT product_id, url`).WithArgs(ids).WillReturnRows(imageRows)
	mock.ExpectQuery(`SELECT product_id, feature`).WithArgs(ids).WillReturnRows(featureRows)
	mock.ExpectQuery(`SELECT product_id, size, available`).WithArgs(ids).WillReturnRows(sizeRows)
}

func TestGetView(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT p.id, p.name`).
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows(viewColumns).
			AddRow(int64(4), "Air Max 90", "air-max-90", "Classic runner", "Wipe clean", int64(14900), "https://img.example.com/am90.jpg", "Nike", "Sneakers", now))

	expectHydration(mock, []int64{4},
		pgxmock.NewRows([]string{"product_id", "url"}).
			AddRow(int64(4), "https://img.example.com/am90-1.jpg").
			AddRow(int64(4), "https://img.example.com/am90-2.jpg"),
		pgxmock.NewRows([]string{"product_id", "feature"}).
			AddRow(int64(4), "Air cushioning"),
		pgxmock.NewRows([]string{"product_id", "size", "available"}).
			AddRow(int64(4), 8, true).
			AddRow(int64(4), 9, false),
	)

	view, err := repo.GetView(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, int64(4), view.ID)
	assert.Equal(t, "Nike", view.Brand)
	assert.Equal(t, "Sneakers", view.Category)
	assert.Equal(t, []string{"https://img.example.com/am90-1.jpg", "https://img.example.com/am90-2.jpg"}, view.Gallery)
	assert.Equal(t, []string{"Air cushioning"}, view.Features)
	assert.Equal(t, []domain.ProductSize{{Size: 8, Available: true}, {Size: 9, Available: false}}, view.Sizes)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetViewNotFound(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`SELECT p.id, p.name`).
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(viewColumns))

	_, err := repo.GetView(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListViews(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT p.id, p.name`).
		WillReturnRows(pgxmock.NewRows(viewColumns).
			AddRow(int64(1), "GEL-1130", "gel-1130", "", "", int64(11900), "", "Asics", "Sneakers", now).
			AddRow(int64(2), "P-6000", "p-6000", "", "", int64(12900), "", "Nike", "Sneakers", now))

	expectHydration(mock, []int64{1, 2},
		pgxmock.NewRows([]string{"product_id", "url"}),
		pgxmock.NewRows([]string{"product_id", "feature"}),
		pgxmock.NewRows([]string{"product_id", "size", "available"}).
			AddRow(int64(1), 9, true),
	)

	views, err := repo.ListViews(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "Asics", views[0].Brand)
	assert.Equal(t, []domain.ProductSize{{Size: 9, Available: true}}, views[0].Sizes)
	assert.Empty(t, views[1].Sizes)
	assert.NotNil(t, views[1].Gallery)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetViewsEmptyIDs(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	views, err := repo.GetViews(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, views)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("Air Max 90", "air-max-90", "Classic runner", "Wipe clean", int64(14900), "https://img.example.com/am90.jpg", int64(1), int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(12), now))
	mock.ExpectExec(`INSERT INTO product_images`).
		WithArgs(int64(12), "https://img.example.com/am90-1.jpg", 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO product_features`).
		WithArgs(int64(12), "Air cushioning").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO product_sizes`).
		WithArgs(int64(12), 8, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	np := &repository.NewProduct{
		Product: domain.Product{
			Name:        "Air Max 90",
			Slug:        "air-max-90",
			Description: "Classic runner",
			Care:        "Wipe clean",
			PriceCents:  14900,
			ImageURL:    "https://img.example.com/am90.jpg",
			BrandID:     1,
			CategoryID:  2,
		},
		Gallery:  []string{"https://img.example.com/am90-1.jpg"},
		Features: []string{"Air cushioning"},
		Sizes:    []domain.ProductSize{{Size: 8, Available: true}},
	}

	err := repo.Create(context.Background(), np)
	require.NoError(t, err)
	assert.Equal(t, int64(12), np.Product.ID)
	assert.Equal(t, now, np.Product.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateSlug(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("Air Max 90", "air-max-90", "", "", int64(0), "", int64(0), int64(0)).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "products_slug_key" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &repository.NewProduct{
		Product: domain.Product{Name: "Air Max 90", Slug: "air-max-90"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBrandListAll(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewBrandRepository(mock)

	mock.ExpectQuery(`SELECT id, name, slug FROM brands`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(int64(1), "Asics", "asics").
			AddRow(int64(2), "Nike", "nike"))

	brands, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, brands, 2)
	assert.Equal(t, "Asics", brands[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryListAll(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery(`SELECT id, name, slug FROM categories`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(int64(1), "Sneakers", "sneakers"))

	categories, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Sneakers", categories[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}
