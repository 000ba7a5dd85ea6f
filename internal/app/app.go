package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Awaddd/bazaar-backend/internal/config"
	"github.com/Awaddd/bazaar-backend/internal/event"
	handler "github.com/Awaddd/bazaar-backend/internal/handler/http"
	"github.com/Awaddd/bazaar-backend/internal/migrations"
	postgresrepo "github.com/Awaddd/bazaar-backend/internal/repository/postgres"
	redisrepo "github.com/Awaddd/bazaar-backend/internal/repository/redis"
	"github.com/Awaddd/bazaar-backend/internal/service"
	"github.com/Awaddd/bazaar-backend/pkg/database"
	"github.com/Awaddd/bazaar-backend/pkg/health"
	pkgkafka "github.com/Awaddd/bazaar-backend/pkg/kafka"
	"github.com/Awaddd/bazaar-backend/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	pool            *pgxpool.Pool
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// New creates the application, connecting to its backing stores, applying
// migrations, and building the dependency graph.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracingShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.Migrate(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	rdb, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))

	var producer *pkgkafka.Producer
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("kafka producer initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.KafkaTopic),
		)
	}

	productRepo := postgresrepo.NewProductRepository(pool)
	brandRepo := postgresrepo.NewBrandRepository(pool)
	categoryRepo := postgresrepo.NewCategoryRepository(pool)
	cartRepo := redisrepo.NewCartRepository(rdb, cfg.CartTTL)

	var eventProducer event.Producer
	if producer != nil {
		eventProducer = producer
	}
	publisher := event.NewPublisher(eventProducer, logger)

	catalogService := service.NewCatalogService(productRepo, brandRepo, categoryRepo, publisher, logger)
	cartService := service.NewCartService(cartRepo, productRepo, publisher, logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	router := handler.NewRouter(
		handler.RouterConfig{
			ServiceName:     cfg.ServiceName,
			RequestTimeout:  cfg.RequestTimeout,
			CatalogCacheAge: cfg.CatalogCacheAge,
			CORS:            cfg.CORS(),
			PprofEnabled:    cfg.PprofEnabled,
			PprofAllowCIDRs: cfg.PprofAllowCIDRs,
		},
		handler.NewProductHandler(catalogService, logger),
		handler.NewReferenceHandler(catalogService, logger),
		handler.NewCartHandler(cartService, logger),
		healthHandler,
		logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		rdb:             rdb,
		producer:        producer,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("shutdown complete")
	return nil
}
