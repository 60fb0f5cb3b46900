package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/agendafacil/agenda-service/internal/observability/metrics"
	"github.com/agendafacil/agenda-service/internal/slot"
	"github.com/agendafacil/agenda-service/pkg/logging"
)

type RouterConfig struct {
	Engine     ChatEngine
	Store      slot.Store
	PgPool     *pgxpool.Pool // nil for the memory backend
	Redis      *redis.Client // nil for the memory backend
	Logger     *logging.Logger
	Metrics    *metrics.Metrics
	WindowDays int

	AdminUser     string
	AdminPassword string
	JWTSecret     string

	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Post("/chat", chatHandler(cfg.Engine))

	r.Post("/admin/login", loginHandler(cfg.AdminUser, cfg.AdminPassword, cfg.JWTSecret))

	r.Route("/admin/slots", func(r chi.Router) {
		r.Use(AdminAuth(cfg.JWTSecret))
		r.Get("/", adminListSlotsHandler(cfg.Store, cfg.WindowDays))
		r.Post("/", adminAddSlotHandler(cfg.Store, cfg.Metrics))
		r.Post("/delete", adminDeleteSlotsHandler(cfg.Store, cfg.Metrics))
		r.Post("/{id}/release", adminReleaseSlotHandler(cfg.Store, cfg.Metrics))
		r.Delete("/{id}", adminDeleteSlotHandler(cfg.Store, cfg.Metrics))
	})

	return r
}
