// internal/app/features/communities/routes.go
package communities

import (
	sessionauth "github.com/dalemusser/commonshub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /api/communities.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Public reads
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	// Everything else requires a session
	r.Group(func(pr chi.Router) {
		pr.Use(sessionauth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Post("/{id}/join", h.HandleJoin)
		pr.Post("/{id}/leave", h.HandleLeave)
		pr.Post("/{id}/reconcile", h.HandleReconcile)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
