package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kssweets/sweetshop/internal/config"
	"github.com/kssweets/sweetshop/internal/event"
	handler "github.com/kssweets/sweetshop/internal/handler/http"
	"github.com/kssweets/sweetshop/internal/repository/postgres"
	"github.com/kssweets/sweetshop/internal/service"
	"github.com/kssweets/sweetshop/internal/storage/local"
	"github.com/kssweets/sweetshop/migrations"
	"github.com/kssweets/sweetshop/pkg/database"
	"github.com/kssweets/sweetshop/pkg/health"
	pkgkafka "github.com/kssweets/sweetshop/pkg/kafka"
)

// App wires together all dependencies and runs the sweetshop service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Expose connection pool statistics on /metrics.
	prometheus.MustRegister(database.NewPoolStatsCollector(pool, "sweetshop"))

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	store := local.New(cfg.ImagesDir)
	eventProducer := event.NewProducer(producer, logger)

	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)
	wishlistRepo := postgres.NewWishlistRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	feedbackRepo := postgres.NewFeedbackRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	uowFactory := postgres.NewUnitOfWorkFactory(pool, logger)

	categoryService := service.NewCategoryService(categoryRepo, uowFactory, store, eventProducer, logger)
	productService := service.NewProductService(productRepo, categoryRepo, uowFactory, store, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(handler.Deps{
		CategoryService:  categoryService,
		ProductService:   productService,
		CartRepo:         cartRepo,
		WishlistRepo:     wishlistRepo,
		OrderRepo:        orderRepo,
		FeedbackRepo:     feedbackRepo,
		NotificationRepo: notificationRepo,
		Producer:         eventProducer,
		Health:           healthHandler,
		ImagesDir:        filepath.Join(cfg.ImagesDir, "images"),
		PprofCIDRs:       cfg.PprofAllowedCIDRs,
		CORSOrigins:      cfg.CORSAllowedOrigins,
		Environment:      cfg.Environment,
		Logger:           logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
