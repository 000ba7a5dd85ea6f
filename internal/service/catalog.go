package service

import (
	"context"
	"log/slog"

	"github.com/Awaddd/bazaar-backend/internal/catalog"
	"github.com/Awaddd/bazaar-backend/internal/domain"
	"github.com/Awaddd/bazaar-backend/internal/repository"
	apperrors "github.com/Awaddd/bazaar-backend/pkg/errors"
	"github.com/Awaddd/bazaar-backend/pkg/logger"
	"github.com/Awaddd/bazaar-backend/pkg/slug"
	"github.com/Awaddd/bazaar-backend/pkg/validator"
)

// EventPublisher emits domain events after successful mutations.
type EventPublisher interface {
	ProductCreated(ctx context.Context, view *domain.ProductView)
	CartUpdated(ctx context.Context, cart *domain.Cart)
	CartCleared(ctx context.Context, sessionID string)
}

// CatalogService serves the product catalog: filtered listings, single
// lookups, reference data, and catalog-management creates.
type CatalogService struct {
	products   repository.ProductRepository
	brands     repository.BrandRepository
	categories repository.CategoryRepository
	events     EventPublisher
	log        *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(
	products repository.ProductRepository,
	brands repository.BrandRepository,
	categories repository.CategoryRepository,
	events EventPublisher,
	log *slog.Logger,
) *CatalogService {
	return &CatalogService{
		products:   products,
		brands:     brands,
		categories: categories,
		events:     events,
		log:        log,
	}
}

// ListProducts runs the typed query over the hydrated catalog and returns
// one page of views plus the total match count.
func (s *CatalogService) ListProducts(ctx context.Context, q catalog.Query) (catalog.Result, error) {
	views, err := s.products.ListViews(ctx)
	if err != nil {
		return catalog.Result{}, err
	}
	return catalog.Run(views, q), nil
}

// GetProduct returns the fully hydrated view for one product.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.ProductView, error) {
	return s.products.GetView(ctx, id)
}

// ListBrands returns the brand reference data.
func (s *CatalogService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return s.brands.ListAll(ctx)
}

// ListCategories returns the category reference data.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.ListAll(ctx)
}

// CreateProductInput is the payload for creating a catalog entry.
type CreateProductInput struct {
	Name        string            `json:"name" validate:"required,max=200"`
	Description string            `json:"description"`
	Care        string            `json:"care"`
	PriceCents  int64             `json:"price_cents" validate:"gte=0"`
	ImageURL    string            `json:"image_url" validate:"omitempty,url"`
	BrandID     int64             `json:"brand_id" validate:"required,gt=0"`
	CategoryID  int64             `json:"category_id" validate:"required,gt=0"`
	Gallery     []string          `json:"gallery" validate:"dive,url"`
	Features    []string          `json:"features"`
	Sizes       []CreateSizeInput `json:"sizes" validate:"dive"`
}

// CreateSizeInput is one size entry on a new product.
type CreateSizeInput struct {
	Size      int  `json:"size" validate:"required,gt=0"`
	Available bool `json:"available"`
}

// CreateProduct validates the input, stores the product with its
// collections, and returns the hydrated view.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.ProductView, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	sizes := make([]domain.ProductSize, len(input.Sizes))
	seen := make(map[int]bool, len(input.Sizes))
	for i, sz := range input.Sizes {
		if seen[sz.Size] {
			return nil, apperrors.InvalidInput("duplicate size entries in request")
		}
		seen[sz.Size] = true
		sizes[i] = domain.ProductSize{Size: sz.Size, Available: sz.Available}
	}

	np := &repository.NewProduct{
		Product: domain.Product{
			Name:        input.Name,
			Slug:        slug.Generate(input.Name),
			Description: input.Description,
			Care:        input.Care,
			PriceCents:  input.PriceCents,
			ImageURL:    input.ImageURL,
			BrandID:     input.BrandID,
			CategoryID:  input.CategoryID,
		},
		Gallery:  input.Gallery,
		Features: input.Features,
		Sizes:    sizes,
	}

	if err := s.products.Create(ctx, np); err != nil {
		return nil, err
	}

	view, err := s.products.GetView(ctx, np.Product.ID)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).InfoContext(ctx, "product created",
		slog.Int64("product_id", view.ID),
		slog.String("slug", view.Slug),
	)
	s.events.ProductCreated(ctx, view)

	return view, nil
}
