package http

import (
	"log/slog"
	"net/http"

	"github.com/Awaddd/bazaar-backend/pkg/httputil"
)

// ReferenceHandler serves the brand and category reference endpoints.
type ReferenceHandler struct {
	service CatalogService
	logger  *slog.Logger
}

// NewReferenceHandler creates a reference-data handler.
func NewReferenceHandler(svc CatalogService, logger *slog.Logger) *ReferenceHandler {
	return &ReferenceHandler{service: svc, logger: logger}
}

// ListBrands handles GET /brands.
func (h *ReferenceHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.ListBrands(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: brands})
}

// ListCategories handles GET /categories.
func (h *ReferenceHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}
