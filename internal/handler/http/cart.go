package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Awaddd/bazaar-backend/internal/domain"
	apperrors "github.com/Awaddd/bazaar-backend/pkg/errors"
	"github.com/Awaddd/bazaar-backend/pkg/httputil"
)

// CartService is the cart surface the handlers call into. Every operation
// is scoped by the caller's session.
type CartService interface {
	ListCart(ctx context.Context, sessionID string) ([]domain.CartLineView, error)
	AddItem(ctx context.Context, sessionID string, productID int64, size, quantity int) (*domain.CartLineView, error)
	UpdateItem(ctx context.Context, sessionID, itemID string, quantity int) (*domain.CartLineView, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) error
}

// CartHandler serves the session-scoped cart endpoints.
type CartHandler struct {
	service CartService
	logger  *slog.Logger
}

// NewCartHandler creates a cart handler.
func NewCartHandler(svc CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: logger}
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Size      int   `json:"size"`
	Quantity  int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// List handles GET /cart.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListCart(r.Context(), SessionFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: views})
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid JSON body"), h.logger)
		return
	}

	view, err := h.service.AddItem(r.Context(), SessionFromContext(r.Context()), req.ProductID, req.Size, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: view})
}

// UpdateItem handles PUT /cart/items/{itemID}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid JSON body"), h.logger)
		return
	}

	view, err := h.service.UpdateItem(r.Context(), SessionFromContext(r.Context()), chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// RemoveItem handles DELETE /cart/items/{itemID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveItem(r.Context(), SessionFromContext(r.Context()), chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
