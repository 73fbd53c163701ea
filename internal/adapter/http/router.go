package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sangmo-land/BBinance-sub001/internal/adapter/http/handler"
	"github.com/sangmo-land/BBinance-sub001/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the ops router.
type RouterConfig struct {
	HealthHandler         *handler.HealthHandler
	ReconciliationHandler *handler.ReconciliationHandler
	MetricsHandler        http.Handler
	HTTPMetrics           *middleware.HTTPMetrics
	Logger                zerolog.Logger
}

// NewRouter creates the operational HTTP router of ledgerd. It exposes health checks,
// metrics and the last reconciliation report; no ledger mutations.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Wrap)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	if cfg.ReconciliationHandler != nil {
		r.Get("/reconciliation", cfg.ReconciliationHandler.Last)
	}

	return r
}
