package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Awaddd/bazaar-backend/internal/domain"
	apperrors "github.com/Awaddd/bazaar-backend/pkg/errors"
)

const keyPrefix = "cart:"

// CartRepository stores carts as JSON documents in Redis, one document per
// session, with a version counter for optimistic concurrency.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a Redis-backed cart repository. Carts expire
// after ttl of inactivity; every save refreshes the expiry.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

// Get returns the session's cart. A session with no stored document gets a
// fresh empty cart at version 0.
func (r *CartRepository) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return &domain.Cart{SessionID: sessionID, Items: []domain.CartLine{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart %s: %w", sessionID, err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart %s: %w", sessionID, err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartLine{}
	}
	return &cart, nil
}

// Save unconditionally writes the cart, bumping its version.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart %s: %w", cart.SessionID, err)
	}

	if err := r.client.Set(ctx, keyPrefix+cart.SessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", cart.SessionID, err)
	}
	return nil
}

// SaveIfVersion writes the cart only if the stored document's version still
// equals expectedVersion. It uses WATCH so two writers racing on the same
// session cannot both win; the loser gets ErrConflict and should re-read.
func (r *CartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) error {
	key := keyPrefix + cart.SessionID

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		current := 0
		switch {
		case errors.Is(err, redis.Nil):
			// No document yet counts as version 0.
		case err != nil:
			return fmt.Errorf("get cart %s: %w", cart.SessionID, err)
		default:
			var stored domain.Cart
			if err := json.Unmarshal(data, &stored); err != nil {
				return fmt.Errorf("unmarshal cart %s: %w", cart.SessionID, err)
			}
			current = stored.Version
		}

		if current != expectedVersion {
			return apperrors.Conflict(fmt.Sprintf("cart for session %s was modified concurrently", cart.SessionID))
		}

		cart.Version = expectedVersion + 1
		cart.UpdatedAt = time.Now().UTC()

		payload, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("marshal cart %s: %w", cart.SessionID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return apperrors.Conflict(fmt.Sprintf("cart for session %s was modified concurrently", cart.SessionID))
	}
	return err
}

// Delete removes the session's cart document.
func (r *CartRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete cart %s: %w", sessionID, err)
	}
	return nil
}
