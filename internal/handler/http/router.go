package http

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Awaddd/bazaar-backend/pkg/health"
	"github.com/Awaddd/bazaar-backend/pkg/middleware"
)

// RouterConfig carries the router's tunables.
type RouterConfig struct {
	ServiceName     string
	RequestTimeout  time.Duration
	CatalogCacheAge int
	CORS            middleware.CORSConfig
	PprofEnabled    bool
	PprofAllowCIDRs []string
}

// NewRouter wires the middleware chain, operational endpoints, and the
// storefront API routes.
func NewRouter(
	cfg RouterConfig,
	products *ProductHandler,
	reference *ReferenceHandler,
	cart *CartHandler,
	healthHandler *health.Handler,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowCIDRs, logger)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogCacheAge))
			r.Get("/products", products.List)
			r.Get("/products/{id}", products.Get)
			r.Get("/brands", reference.ListBrands)
			r.Get("/categories", reference.ListCategories)
		})

		r.Post("/products", products.Create)

		r.Route("/cart", func(r chi.Router) {
			r.Use(RequireSession)
			r.Get("/", cart.List)
			r.Post("/items", cart.AddItem)
			r.Put("/items/{itemID}", cart.UpdateItem)
			r.Delete("/items/{itemID}", cart.RemoveItem)
		})
	})

	return r
}
