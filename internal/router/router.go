package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samims/indexer/internal/handler"
	customMiddleware "github.com/samims/indexer/internal/middleware"
)

// NewRouter mounts the trigger and history routes behind auth. A nil
// validator leaves them open.
func NewRouter(runHandler *handler.RunHandler, healthHandler *handler.HealthHandler, validator customMiddleware.TokenValidator) http.Handler {
	r := chi.NewRouter()

	r.Use(customMiddleware.MetricsMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// a run lasts as long as its batches, so /indexing has no request timeout
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.AuthMiddleware(validator))
		r.Post("/indexing", runHandler.Start)
		r.Get("/indexing", runHandler.Start)

		r.Route("/runs", func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Get("/", runHandler.ListRuns)
			r.Get("/{id}", runHandler.GetRun)
		})
	})

	r.Get("/healthz", healthHandler.Liveness)
	r.Get("/readyz", healthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
