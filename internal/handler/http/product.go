package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Awaddd/bazaar-backend/internal/catalog"
	"github.com/Awaddd/bazaar-backend/internal/domain"
	"github.com/Awaddd/bazaar-backend/internal/service"
	apperrors "github.com/Awaddd/bazaar-backend/pkg/errors"
	"github.com/Awaddd/bazaar-backend/pkg/httputil"
	"github.com/Awaddd/bazaar-backend/pkg/validator"
)

// CatalogService is the catalog surface the handlers call into.
type CatalogService interface {
	ListProducts(ctx context.Context, q catalog.Query) (catalog.Result, error)
	GetProduct(ctx context.Context, id int64) (*domain.ProductView, error)
	CreateProduct(ctx context.Context, input service.CreateProductInput) (*domain.ProductView, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// ProductHandler serves the catalog endpoints.
type ProductHandler struct {
	service CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a product handler.
func NewProductHandler(svc CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// List handles GET /products with filter, sort, and pagination parameters.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	res, err := h.service.ListProducts(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if q.Limit == nil {
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: res.Products})
		return
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(res.Products, res.Total, page, *q.Limit))
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("product id must be an integer"), h.logger)
		return
	}

	view, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Create handles POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid JSON body"), h.logger)
		return
	}

	view, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			httputil.WriteValidationError(w, err)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: view})
}

// parseListQuery binds the list endpoint's query string to a typed query.
// Malformed numeric parameters are a client error; unknown sort values fall
// back to the default silently.
func parseListQuery(r *http.Request) (catalog.Query, error) {
	params := r.URL.Query()
	q := catalog.Query{Sort: catalog.ParseSort(params.Get("sort")), Page: 1}

	if raw := params.Get("excludeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, apperrors.InvalidInput("excludeId must be an integer")
		}
		q.ExcludeID = &id
	}

	if raw := params.Get("brands"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				q.Brands = append(q.Brands, b)
			}
		}
	}

	if raw := params.Get("minPrice"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, apperrors.InvalidInput("minPrice must be an integer number of cents")
		}
		q.MinPriceCents = &v
	}

	if raw := params.Get("maxPrice"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, apperrors.InvalidInput("maxPrice must be an integer number of cents")
		}
		q.MaxPriceCents = &v
	}

	if raw := params.Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperrors.InvalidInput("size must be an integer")
		}
		q.Size = &v
	}

	q.Search = params.Get("search")

	if raw := params.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperrors.InvalidInput("page must be an integer")
		}
		q.Page = v
	}

	if raw := params.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return q, apperrors.InvalidInput("limit must be a positive integer")
		}
		q.Limit = &v
	}

	return q, nil
}
