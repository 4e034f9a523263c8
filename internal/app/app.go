package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Brodino96/TasteTracker/internal/auth"
	"github.com/Brodino96/TasteTracker/internal/config"
	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/internal/event"
	handler "github.com/Brodino96/TasteTracker/internal/handler/http"
	"github.com/Brodino96/TasteTracker/internal/repository"
	"github.com/Brodino96/TasteTracker/internal/repository/postgres"
	redisrepo "github.com/Brodino96/TasteTracker/internal/repository/redis"
	"github.com/Brodino96/TasteTracker/internal/review"
	"github.com/Brodino96/TasteTracker/internal/service"
	"github.com/Brodino96/TasteTracker/internal/storage/memory"
	"github.com/Brodino96/TasteTracker/migrations"
	"github.com/Brodino96/TasteTracker/pkg/database"
	"github.com/Brodino96/TasteTracker/pkg/health"
	pkgkafka "github.com/Brodino96/TasteTracker/pkg/kafka"
	"github.com/Brodino96/TasteTracker/pkg/middleware"
	"github.com/Brodino96/TasteTracker/pkg/tracing"
)

// App wires together all dependencies and runs the TasteTracker API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	limiter        *middleware.RateLimiter
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		_ = tracerShutdown(ctx)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		_ = tracerShutdown(ctx)
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Metrics registry.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := database.RegisterPoolMetrics(reg, pool, config.ServiceName); err != nil {
		logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
	}

	// Redis backs the submission guard and the author cache. Without it the
	// service runs with an in-process guard and no cache.
	var redisClient *goredis.Client
	if cfg.RedisEnabled {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			logger.Warn("redis unavailable, continuing without it",
				slog.String("addr", cfg.Redis().Addr()),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
		}
	}

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, pkgkafka.NewProducerMetrics(reg), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	eventProducer := event.NewProducer(producer, logger)

	// Build the dependency graph.
	var users repository.UserRepository = postgres.NewUserRepository(pool)
	var guard review.Guard = review.NewMemoryGuard()
	if redisClient != nil {
		users = redisrepo.NewUserCache(redisClient, users, cfg.UserCacheTTL(), logger)
		guard = redisrepo.NewSubmissionLock(redisClient, cfg.SubmissionLockTTL(), logger)
	}

	restaurants := postgres.NewRestaurantRepository(pool)
	dishes := postgres.NewDishRepository(pool)
	reviews := postgres.NewReviewRepository(pool, users)

	store := memory.New(cfg.ImageBaseURL, domain.MaxImageSize)
	images := service.NewImageService(store, logger)
	coordinator := review.NewCoordinator(reviews, guard, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterOptional("kafka", producer.Ping)
	if redisClient != nil {
		healthHandler.RegisterOptional("redis", database.RedisPing(redisClient))
	}

	limiter := middleware.NewRateLimiter(cfg.ReviewRateLimitRPS, cfg.ReviewRateLimitBurst, 10*time.Minute, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:    config.ServiceName,
		Restaurants:    service.NewRestaurantService(restaurants, images, eventProducer, logger),
		Dishes:         service.NewDishService(dishes, restaurants, reviews, images, eventProducer, logger),
		Reviews:        service.NewReviewService(dishes, reviews, coordinator, logger),
		Images:         images,
		Users:          service.NewUserService(users, logger),
		Media:          store,
		Health:         healthHandler,
		Metrics:        middleware.NewHTTPMetrics(reg, config.ServiceName),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		TokenValidator: auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience).TokenValidator(),
		ReviewLimiter:  limiter,
		CORS:           cors,
		PprofCIDRs:     cfg.PprofAllowedCIDR,
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		limiter:        limiter,
		tracerShutdown: tracerShutdown,
		httpServer:     httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.limiter.Close()

	// Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	// Close PostgreSQL pool.
	a.pool.Close()

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
