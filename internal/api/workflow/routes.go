package workflow

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers lead workflow routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/workflow/leads", func(r chi.Router) {
		r.Post("/", h.CreateLead)
		r.Get("/{lead_id}", h.GetLead)
	})
}
