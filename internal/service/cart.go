package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Awaddd/bazaar-backend/internal/domain"
	"github.com/Awaddd/bazaar-backend/internal/repository"
	apperrors "github.com/Awaddd/bazaar-backend/pkg/errors"
	"github.com/Awaddd/bazaar-backend/pkg/logger"
)

// saveAttempts bounds the read-modify-write retry loop when concurrent
// writers race on the same session's cart.
const saveAttempts = 3

// CartService is the cart consolidation engine: it validates mutations
// against current catalog availability and applies merge-by-identity
// semantics, with the cart store as the single source of truth.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	events   EventPublisher
	log      *slog.Logger
}

// NewCartService creates a cart service.
func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	events EventPublisher,
	log *slog.Logger,
) *CartService {
	return &CartService{carts: carts, products: products, events: events, log: log}
}

// ListCart returns the session's lines joined with each product's current
// name, price, and image. Lines whose product has disappeared from the
// catalog are dropped from the view without error.
func (s *CartService) ListCart(ctx context.Context, sessionID string) ([]domain.CartLineView, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if len(cart.Items) == 0 {
		return []domain.CartLineView{}, nil
	}

	ids := make([]int64, 0, len(cart.Items))
	seen := make(map[int64]bool, len(cart.Items))
	for _, line := range cart.Items {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	products, err := s.products.GetViews(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.ProductView, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	views := make([]domain.CartLineView, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, ok := byID[line.ProductID]
		if !ok {
			// Product deleted since the line was added.
			continue
		}
		views = append(views, domain.CartLineView{
			ID:         line.ID,
			ProductID:  line.ProductID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			ImageURL:   product.ImageURL,
			Size:       line.Size,
			Quantity:   line.Quantity,
		})
	}
	return views, nil
}

// AddItem merges the requested quantity into the existing line for
// (session, product, size), or creates a new line. The product must exist
// and carry the size as available.
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID int64, size, quantity int) (*domain.CartLineView, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be a positive integer")
	}

	product, err := s.products.GetView(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.HasAvailableSize(size) {
		return nil, apperrors.Unavailable(fmt.Sprintf("size %d is not available for product %d", size, productID))
	}

	var line domain.CartLine

	err = s.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		if idx := cart.FindLineIndex(productID, size); idx >= 0 {
			cart.Items[idx].Quantity += quantity
			line = cart.Items[idx]
			return nil
		}

		line = domain.CartLine{
			ID:        uuid.NewString(),
			ProductID: productID,
			Size:      size,
			Quantity:  quantity,
			AddedAt:   time.Now().UTC(),
		}
		cart.Items = append(cart.Items, line)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).InfoContext(ctx, "cart item added",
		slog.Int64("product_id", productID),
		slog.Int("size", size),
		slog.Int("quantity", line.Quantity),
	)

	return &domain.CartLineView{
		ID:         line.ID,
		ProductID:  productID,
		Name:       product.Name,
		PriceCents: product.PriceCents,
		ImageURL:   product.ImageURL,
		Size:       size,
		Quantity:   line.Quantity,
	}, nil
}

// UpdateItem sets the line's quantity to an absolute value. A line ID from
// another session is indistinguishable from a missing one.
func (s *CartService) UpdateItem(ctx context.Context, sessionID, itemID string, quantity int) (*domain.CartLineView, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be a positive integer")
	}

	var line domain.CartLine

	err := s.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		idx := cart.FindLineByID(itemID)
		if idx < 0 {
			return apperrors.NotFound("cart item", itemID)
		}
		cart.Items[idx].Quantity = quantity
		line = cart.Items[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetView(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}

	return &domain.CartLineView{
		ID:         line.ID,
		ProductID:  line.ProductID,
		Name:       product.Name,
		PriceCents: product.PriceCents,
		ImageURL:   product.ImageURL,
		Size:       line.Size,
		Quantity:   line.Quantity,
	}, nil
}

// RemoveItem deletes the line. Removing an already-removed line is
// NotFound, never a silent success.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) error {
	err := s.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		idx := cart.FindLineByID(itemID)
		if idx < 0 {
			return apperrors.NotFound("cart item", itemID)
		}
		cart.RemoveLineAt(idx)
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).InfoContext(ctx, "cart item removed", slog.String("item_id", itemID))
	return nil
}

// mutate runs a read-modify-write cycle against the session's cart using
// the store's versioned save, retrying a bounded number of times when a
// concurrent writer wins the race.
func (s *CartService) mutate(ctx context.Context, sessionID string, apply func(cart *domain.Cart) error) error {
	var lastErr error

	for attempt := 0; attempt < saveAttempts; attempt++ {
		cart, err := s.carts.Get(ctx, sessionID)
		if err != nil {
			return err
		}

		if err := apply(cart); err != nil {
			return err
		}

		expected := cart.Version
		if err := s.carts.SaveIfVersion(ctx, cart, expected); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				lastErr = err
				continue
			}
			return err
		}

		if len(cart.Items) == 0 {
			s.events.CartCleared(ctx, sessionID)
		} else {
			s.events.CartUpdated(ctx, cart)
		}
		return nil
	}

	return lastErr
}
