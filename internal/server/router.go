// internal/server/router.go
package server

import (
	"context"
	"net/http"
	"net/http/pprof"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campaign-forecaster/internal/common/logger"
)

// ReadinessCheck reports whether a backing dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// NewRouter assembles the full route table. The readiness checks are probed
// on every /readyz call; pass none to report ready unconditionally.
func NewRouter(h *Handler, log logger.Logger, checks map[string]ReadinessCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		for name, check := range checks {
			if err := check(req.Context()); err != nil {
				log.Warn("readiness check failed", map[string]interface{}{
					"check": name,
					"error": err.Error(),
				})
				http.Error(w, name+" unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/forecasts", h.CreateForecast)
		r.Get("/forecasts/{id}", h.GetForecast)
		r.Get("/catalog", h.GetCatalog)
	})

	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Get("/symbol", pprof.Symbol)
		r.Get("/trace", pprof.Trace)
		r.Handle("/{name}", http.HandlerFunc(pprof.Index))
	})

	return r
}
