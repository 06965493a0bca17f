package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"malpot/internal/platform/metrics"
	"malpot/internal/platform/middleware"
	"malpot/pkg/platform/httputil"
	"malpot/pkg/platform/middleware/metadata"
)

type routerDeps struct {
	log       *slog.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	validator middleware.JWTValidator
	health    func(ctx context.Context) error
	handlers  []interface{ Register(chi.Router) }
}

// newRouter mounts /health and /metrics unauthenticated and every domain
// handler under /api behind JWT authentication.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.log))
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(d.log))
	r.Use(middleware.RequestTime)
	r.Use(middleware.LatencyMiddleware(d.metrics))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.health(ctx); err != nil {
			d.log.WarnContext(ctx, "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler(d.registry))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(d.validator, d.log))
		for _, h := range d.handlers {
			h.Register(r)
		}
	})
	return r
}
