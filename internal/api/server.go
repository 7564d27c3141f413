// Package api exposes the management HTTP surface: catalog CRUD for
// sources and webhooks, run statistics, a manual run trigger, and the
// Prometheus exposition endpoint.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"NewsNotify/internal/ports"
)

// Server holds handler dependencies.
type Server struct {
	catalog  ports.Catalog
	seen     ports.SeenStore
	trigger  func()
	registry *prometheus.Registry
	logger   *slog.Logger
}

// NewServer builds the API server. trigger starts a collection run in
// the background when `POST /api/v1/run` is called; it may be nil.
func NewServer(catalog ports.Catalog, seen ports.SeenStore, trigger func(), registry *prometheus.Registry, logger *slog.Logger) *Server {
	return &Server{
		catalog:  catalog,
		seen:     seen,
		trigger:  trigger,
		registry: registry,
		logger:   logger,
	}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleRoot)
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)
		r.Post("/run", s.handleRun)

		r.Route("/sources", func(r chi.Router) {
			r.Get("/", s.handleListSources)
			r.Post("/", s.handleCreateSource)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSource)
				r.Put("/", s.handleUpdateSource)
				r.Delete("/", s.handleDeleteSource)
			})
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Get("/", s.handleListWebhooks)
			r.Post("/", s.handleCreateWebhook)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetWebhook)
				r.Put("/", s.handleUpdateWebhook)
				r.Delete("/", s.handleDeleteWebhook)
			})
		})
	})

	return r
}
