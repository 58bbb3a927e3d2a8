package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/api"
	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/config"
	"github.com/hackgods/clinic-appointments/internal/db"
	"github.com/hackgods/clinic-appointments/internal/logging"
	redisclient "github.com/hackgods/clinic-appointments/internal/redis"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("api-server starting up", zap.String("env", cfg.Env), zap.String("http_port", cfg.HTTPPort))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolOptions{
		MaxConns: cfg.PGMaxConns,
		MinConns: cfg.PGMinConns,
	})
	cancelPg()
	if err != nil {
		logger.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	deps := []api.Dependency{
		{Name: "postgres", Critical: true, Check: pgPool.Ping},
	}
	rateLimit := api.LocalRateLimit(cfg.RateLimit, cfg.RateWindow)

	if cfg.RedisEnabled {
		rdb, err := redisclient.NewRedisClient(rootCtx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			logger.Fatal("redis connection error", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("error closing redis", zap.Error(err))
			}
		}()
		logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

		limiter := redisclient.NewFixedWindowLimiter(rdb, cfg.RateLimit, cfg.RateWindow, "rl:api")
		rateLimit = api.RateLimitMiddleware(limiter, logger)
		deps = append(deps, api.Dependency{Name: "redis", Check: redisPing(rdb)})
	}

	store := appointment.NewPgStore(pgPool)
	svc := appointment.NewService(store, logger.Sugar())

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Service:   svc,
			Health:    api.NewHealthHandler(cfg.Env, version, deps...),
			Logger:    logger,
			RateLimit: rateLimit,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()

	logger.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func redisPing(rdb *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
