package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leadgate/internal/platform/middleware"
	"leadgate/pkg/platform/httputil"
	"leadgate/pkg/platform/middleware/metadata"
	"leadgate/pkg/platform/middleware/requesttime"
)

// RouteRegistrar mounts a module's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthFunc reports readiness of backing services.
type HealthFunc func(ctx context.Context) error

// Config wires the router.
type Config struct {
	Logger          *slog.Logger
	TrustedIPHeader string
	Health          HealthFunc
	// MetricsHandler serves GET /metrics when non-nil.
	MetricsHandler http.Handler
	Modules        []RouteRegistrar
}

// NewRouter builds the public router with the shared middleware chain.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(cfg.TrustedIPHeader))

	r.Get("/healthz", healthHandler(cfg.Health, logger))
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}
	for _, m := range cfg.Modules {
		m.Register(r)
	}
	return r
}

// DefaultMetricsHandler exposes the default Prometheus registry.
func DefaultMetricsHandler() http.Handler {
	return promhttp.Handler()
}

func healthHandler(check HealthFunc, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
