package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/sangmo-land/BBinance-sub001/internal/adapter/http"
	"github.com/sangmo-land/BBinance-sub001/internal/adapter/http/handler"
	"github.com/sangmo-land/BBinance-sub001/internal/adapter/http/middleware"
	"github.com/sangmo-land/BBinance-sub001/internal/app"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/config"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/logger"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/metrics"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/postgres"
	"github.com/sangmo-land/BBinance-sub001/internal/infrastructure/redis"
)

const poolStatsInterval = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "ledgerd",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("ledgerd stopped with error")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log.Logger); err != nil {
		return err
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL, redis.Options{})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	} else {
		log.Warn().Msg("REDIS_URL empty: rate cache and idempotency keys disabled")
	}

	m := metrics.New()

	container, err := app.NewPostgres(cfg, pool, redisClient, m, log.Logger)
	if err != nil {
		return err
	}

	if cfg.ReconcileInterval > 0 {
		go container.Reconciliation.Run(ctx, cfg.ReconcileInterval)
	}
	go trackPool(ctx, pool, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		HealthHandler:         handler.NewHealthHandler(healthChecks(pool, redisClient)),
		ReconciliationHandler: handler.NewReconciliationHandler(container.Reconciliation),
		MetricsHandler:        m.Handler(),
		HTTPMetrics:           middleware.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Logger:                log.Logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting ops server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ops server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func healthChecks(pool *pgxpool.Pool, redisClient *goredis.Client) map[string]handler.Check {
	checks := map[string]handler.Check{
		"postgres": pool.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redis.Ping(ctx, redisClient)
		}
	}

	return checks
}

type poolStater interface {
	Stat() *pgxpool.Stat
}

type connectionGauge interface {
	ObserveDBConnections(acquired int32)
}

func trackPool(ctx context.Context, pool poolStater, gauge connectionGauge) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	for {
		gauge.ObserveDBConnections(pool.Stat().AcquiredConns())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
