package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/feed-service/internal/delivery/http/handler"
	"github.com/user/feed-service/internal/delivery/http/middleware"
)

func New(h *handler.Handler, adminToken string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(120 * time.Second))
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)

		r.Post("/import/file", h.HandleImportFile)
		r.Post("/import/cnm", h.HandleImportCNM)
		r.Post("/import/vrsync", h.HandleImportVRSync)

		r.Get("/export", h.HandleExportGeneric)

		r.Get("/olx/metadata", h.HandleGetOlxMetadata)
		r.Put("/olx/metadata", h.HandleSaveOlxMetadata)
		r.Get("/olx/readiness", h.HandleOlxReadiness)
		r.Post("/olx/mark", h.HandleMarkOlx)

		// Bulk marketplace feed is admin-only; brokers only see the
		// per-listing surface above.
		r.With(middleware.RequireAdmin(adminToken)).Get("/feeds/olx", h.HandleOlxFeed)
	})

	return r
}
