package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/agendafacil/agenda-service/internal/api"
	"github.com/agendafacil/agenda-service/internal/chat"
	"github.com/agendafacil/agenda-service/internal/config"
	"github.com/agendafacil/agenda-service/internal/db"
	"github.com/agendafacil/agenda-service/internal/observability/metrics"
	redisclient "github.com/agendafacil/agenda-service/internal/redis"
	"github.com/agendafacil/agenda-service/internal/slot"
	"github.com/agendafacil/agenda-service/pkg/logging"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("api-server starting", "env", cfg.Env, "http_port", cfg.HTTPPort,
		"store_backend", cfg.StoreBackend, "session_backend", cfg.SessionBackend)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pgPool *pgxpool.Pool
	var store slot.Store

	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			logger.Error("postgres connection error", "error", err)
			os.Exit(1)
		}
		defer pgPool.Close()
		store = slot.NewPgStore(pgPool)
		logger.Info("connected to Postgres")
	case config.StoreBackendMemory:
		store = slot.NewMemoryStore()
		logger.Warn("using in-memory slot store, data will not survive restarts")
	}

	var rdb *redis.Client
	var sessions chat.SessionStore

	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb, err = redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Error("redis connection error", "error", err)
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()
		sessions = chat.NewRedisSessionStore(rdb, cfg.SessionTTL)
		logger.Info("connected to Redis")
	case config.SessionBackendMemory:
		sessions = chat.NewMemorySessionStore(cfg.SessionTTL)
	}

	m := metrics.New(nil)
	engine := chat.NewEngine(store, sessions, cfg.BookingWindowDays, logger, m)

	router := api.NewRouter(api.RouterConfig{
		Engine:        engine,
		Store:         store,
		PgPool:        pgPool,
		Redis:         rdb,
		Logger:        logger,
		Metrics:       m,
		WindowDays:    cfg.BookingWindowDays,
		AdminUser:     cfg.AdminUser,
		AdminPassword: cfg.AdminPassword,
		JWTSecret:     cfg.JWTSecret,
		Env:           cfg.Env,
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		logger.Info("shutting down api-server")
	case err := <-errCh:
		logger.Error("http server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
