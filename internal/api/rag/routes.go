package rag

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers RAG routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/rag", func(r chi.Router) {
		r.Post("/ingest", h.Ingest)
		r.Post("/chat", h.Chat)
	})
}
