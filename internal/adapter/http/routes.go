package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/agreement-sections", h.ListSections)
		r.Post("/agreement-sections", h.CreateSection)
		r.Get("/agreement-sections/resolve", h.ResolveSections)
		r.Get("/agreement-sections/{id}", h.GetSection)
		r.Put("/agreement-sections/{id}", h.UpdateSection)
		r.Delete("/agreement-sections/{id}", h.DeleteSection)

		r.Post("/tenancies/{id}/agreement", h.GenerateAgreement)
		r.Post("/agreement-preview", h.PreviewAgreement)
	})
}
