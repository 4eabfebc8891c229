package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all tracking routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tracking", func(r chi.Router) {
		r.Get("/indices", h.HandleGetIndices)
		r.Get("/overview", h.HandleGetOverview)
		r.Get("/select", h.HandleSelect)
		r.Get("/ws", h.HandleWebSocket)

		r.Get("/{index}", h.HandleGetView)
		r.Get("/{index}/summary", h.HandleGetSummary)
	})
}
