package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router собирает маршруты воркера.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(Recovery(h.logger))
	r.Use(Logging(h.logger))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/tasks", h.ListTasks)

	if h.results != nil {
		r.Get("/results/{taskID}", h.GetResult)
	}

	return r
}
