package repository

import (
	"context"

	"github.com/Awaddd/bazaar-backend/internal/domain"
)

// NewProduct carries everything needed to create a catalog entry: the
// product row plus its ordered gallery, features, and size entries.
type NewProduct struct {
	Product  domain.Product
	Gallery  []string
	Features []string
	Sizes    []domain.ProductSize
}

// ProductRepository is the product store: read access to hydrated product
// views and a single create operation for catalog management.
type ProductRepository interface {
	// Create inserts the product and its collections in one transaction
	// and fills in the generated ID.
	Create(ctx context.Context, p *NewProduct) error

	// GetView returns the fully hydrated view for one product, or
	// ErrNotFound.
	GetView(ctx context.Context, id int64) (*domain.ProductView, error)

	// ListViews returns hydrated views for the whole catalog.
	ListViews(ctx context.Context) ([]domain.ProductView, error)

	// GetViews returns hydrated views for the given IDs. Missing IDs are
	// simply absent from the result, not an error.
	GetViews(ctx context.Context, ids []int64) ([]domain.ProductView, error)
}

// BrandRepository exposes the brand reference data.
type BrandRepository interface {
	ListAll(ctx context.Context) ([]domain.Brand, error)
}

// CategoryRepository exposes the category reference data.
type CategoryRepository interface {
	ListAll(ctx context.Context) ([]domain.Category, error)
}

// CartRepository is the cart store. Carts are stored as whole documents
// keyed by session; SaveIfVersion provides the optimistic-concurrency
// primitive the consolidation engine builds its read-modify-write cycle on.
type CartRepository interface {
	// Get returns the session's cart. A session with no stored cart gets
	// an empty cart with Version 0, never an error.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save unconditionally writes the cart and bumps its version.
	Save(ctx context.Context, cart *domain.Cart) error

	// SaveIfVersion writes the cart only if the stored version still
	// equals expectedVersion, returning ErrConflict otherwise.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) error

	// Delete removes the session's cart entirely.
	Delete(ctx context.Context, sessionID string) error
}
