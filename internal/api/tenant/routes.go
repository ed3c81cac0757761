package tenant

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers tenant routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/tenants", func(r chi.Router) {
		r.Post("/", h.CreateTenant)
		r.Get("/", h.ListTenants)

		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", h.GetTenant)
			r.Post("/connections", h.AddConnection)
			r.Get("/connections", h.ListConnections)
		})
	})
}
