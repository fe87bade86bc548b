// internal/app/features/events/routes.go
package events

import (
	sessionauth "github.com/dalemusser/commonshub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /api/events.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Public reads
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(sessionauth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Get("/{id}/access", h.ServeAccess)
	})

	return r
}
