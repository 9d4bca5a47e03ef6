package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hackclub/hermes/internal/adapter/http/handler"
	"github.com/hackclub/hermes/internal/adapter/http/middleware"
	"github.com/hackclub/hermes/internal/infrastructure/security"
	"github.com/hackclub/hermes/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	OrganizationHandler *handler.OrganizationHandler
	ItemHandler         *handler.ItemHandler
	DisbursementHandler *handler.DisbursementHandler
	BillingHandler      *handler.BillingHandler
	HealthHandler       *handler.HealthHandler

	Logger zerolog.Logger

	// APIKeyVerifier guards /api/v1 when set. Health and metrics stay open.
	APIKeyVerifier   *security.KeyVerifier
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.APIKeyVerifier != nil {
			r.Use(middleware.APIKeyAuth(cfg.APIKeyVerifier))
		}
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Billing
		r.Route("/billing", func(r chi.Router) {
			r.Post("/run", cfg.BillingHandler.Run)
			r.Get("/summary", cfg.BillingHandler.Summary)
		})

		// Organizations
		r.Route("/organizations", func(r chi.Router) {
			r.Post("/", cfg.OrganizationHandler.Create)
			r.Get("/", cfg.OrganizationHandler.List)
			r.Get("/{id}", cfg.OrganizationHandler.Get)
			r.Put("/{id}/slug", cfg.OrganizationHandler.UpdateSlug)
			r.Get("/{id}/items", cfg.ItemHandler.ListByOrganization)
			r.Get("/{id}/disbursements", cfg.DisbursementHandler.ListByOrganization)
		})

		// Items
		r.Route("/items", func(r chi.Router) {
			r.Post("/", cfg.ItemHandler.Create)
			r.Get("/{id}", cfg.ItemHandler.Get)
		})

		// Disbursements
		r.Route("/disbursements", func(r chi.Router) {
			r.Get("/", cfg.DisbursementHandler.List)
			r.Get("/{id}", cfg.DisbursementHandler.Get)
			r.Get("/{id}/verify", cfg.DisbursementHandler.Verify)
		})
	})

	return r
}
