package api

import (
	"net/http"

	"github.com/missionconf/server/internal/api/handlers"
	"github.com/missionconf/server/internal/api/middleware"
	"github.com/missionconf/server/internal/api/respond"
	"github.com/missionconf/server/internal/audit"
	"github.com/missionconf/server/internal/config"
	"github.com/missionconf/server/internal/domain/contact"
	"github.com/missionconf/server/internal/domain/registrations"
	"github.com/missionconf/server/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps holds what the HTTP surface needs from the rest of the server.
type Deps struct {
	Registrations *registrations.Service
	Contact       *contact.Service
	Readiness     handlers.ReadinessProbe
	Audit         *audit.Logger
	Version       string
	GitCommit     string
}

// NewAuditLogger records the same client address the rate limiter keys on.
func NewAuditLogger(cfg config.Config, logger zerolog.Logger) *audit.Logger {
	trusted := cfg.RateLimit.TrustedProxyCIDRs
	return audit.NewLogger(logger, audit.WithClientIP(func(r *http.Request) string {
		return middleware.ClientIP(r, trusted)
	}))
}

// NewRouter wires every route behind the shared middleware chain. The
// returned stop function releases the rate limiter's cleanup goroutine.
func NewRouter(cfg config.Config, logger zerolog.Logger, deps Deps) (http.Handler, func()) {
	registrationsHandler := handlers.NewRegistrationsHandler(deps.Registrations, deps.Audit, cfg.Environment)
	contactHandler := handlers.NewContactHandler(deps.Contact, cfg.Environment)
	health := handlers.NewHealthChecker(deps.Readiness, deps.Version, deps.GitCommit)

	rateLimit, stopLimiter := middleware.RateLimit(cfg.RateLimit)
	public := func(h http.HandlerFunc) http.Handler {
		return rateLimit(middleware.PublicRequestSize()(h))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", health.Healthz())
	mux.Handle("GET /readyz", health.Readyz())
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("POST /api/register", public(registrationsHandler.Register))
	mux.Handle("POST /api/contact", respond.Envelope(respond.WithSuccessFlag())(public(contactHandler.Submit)))
	mux.Handle("GET /api/registrations/export", http.HandlerFunc(registrationsHandler.Export))

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.SecurityHeaders(cfg.IsProduction())(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler, stopLimiter
}
