package event

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/Awaddd/bazaar-backend/internal/domain"
	"github.com/Awaddd/bazaar-backend/pkg/kafka"
)

// Event types published by the storefront.
const (
	TypeProductCreated = "storefront.product.created"
	TypeCartUpdated    = "storefront.cart.updated"
	TypeCartCleared    = "storefront.cart.cleared"
)

// Producer is the subset of the Kafka producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Publisher emits storefront domain events. Publishing is best-effort:
// failures are logged and never fail the originating request.
type Publisher struct {
	producer Producer
	logger   *slog.Logger
}

// NewPublisher creates an event publisher. A nil producer disables
// publishing entirely, which keeps tests and local runs simple.
func NewPublisher(producer Producer, logger *slog.Logger) *Publisher {
	return &Publisher{producer: producer, logger: logger}
}

// ProductCreated announces a new catalog entry.
func (p *Publisher) ProductCreated(ctx context.Context, view *domain.ProductView) {
	payload := map[string]any{
		"product_id":  view.ID,
		"name":        view.Name,
		"slug":        view.Slug,
		"brand":       view.Brand,
		"category":    view.Category,
		"price_cents": view.PriceCents,
	}
	p.publish(ctx, kafka.NewEvent(TypeProductCreated, "product", strconv.FormatInt(view.ID, 10), payload))
}

// CartUpdated announces a cart mutation (add, update, or remove).
func (p *Publisher) CartUpdated(ctx context.Context, cart *domain.Cart) {
	payload := map[string]any{
		"session_id": cart.SessionID,
		"lines":      len(cart.Items),
		"item_count": cart.ItemCount(),
		"version":    cart.Version,
	}
	p.publish(ctx, kafka.NewEvent(TypeCartUpdated, "cart", cart.SessionID, payload))
}

// CartCleared announces that a session's cart was deleted.
func (p *Publisher) CartCleared(ctx context.Context, sessionID string) {
	payload := map[string]any{"session_id": sessionID}
	p.publish(ctx, kafka.NewEvent(TypeCartCleared, "cart", sessionID, payload))
}

func (p *Publisher) publish(ctx context.Context, event kafka.Event) {
	if p.producer == nil {
		return
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "failed to publish event",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("error", err.Error()),
		)
	}
}
