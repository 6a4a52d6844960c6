package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Post("/calculate", h.HandleCalculate)

		// Portfolio endpoints backed by the price history
		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/var", h.HandleGetPortfolioVaR)
			r.Get("/analytics", h.HandleGetPortfolioAnalytics)
		})
	})
}
