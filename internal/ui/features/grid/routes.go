package grid

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures routes for the grid feature.
func SetupRoutes(router chi.Router, h *Handlers) error {
	router.Get("/", h.GridPage)

	router.Route("/grid", func(r chi.Router) {
		r.Get("/", h.GridFragment)
		r.Get("/updates", h.GridUpdates)

		r.Post("/sort", h.intent("sort", false, h.Sort))
		r.Post("/filter", h.intent("filter", true, h.Filter))
		r.Post("/search", h.intent("search", true, h.Search))
		r.Post("/page", h.intent("page", false, h.Page))
		r.Post("/select", h.intent("select", false, h.Select))
		r.Post("/expand", h.intent("expand", false, h.Expand))
		r.Post("/activate", h.intent("activate", false, h.Activate))
		r.Post("/reload", h.intent("reload", false, h.Reload))
	})

	return nil
}
