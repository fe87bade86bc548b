// internal/app/features/posts/routes.go
package posts

import (
	sessionauth "github.com/dalemusser/commonshub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /api/posts.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeListByCommunity)

	r.Group(func(pr chi.Router) {
		pr.Use(sessionauth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Post("/{id}/like", h.HandleLike)
		pr.Post("/{id}/unlike", h.HandleUnlike)
		pr.Post("/{id}/comment", h.HandleComment)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
