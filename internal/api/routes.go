package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TagEngineRequest)
	r.Use(RequestLogger)
	r.Use(Recover)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(RequireAPIKey(h.apiKey))
			r.Get("/tree", h.Tree)
			r.Get("/status", h.Status)
			r.Get("/notifications", h.Notifications)
			r.Post("/save", h.Save)
			r.Get("/export", h.Export)

			r.Group(func(r chi.Router) {
				r.Use(RejectDuringLoad(h.engine.Status))
				r.Post("/reload", h.Reload)
				r.Post("/import", h.Import)
			})
		})
	})

	return r
}
