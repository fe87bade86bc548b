// internal/app/features/auth/routes.go
package auth

import (
	sessionauth "github.com/dalemusser/commonshub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /api/auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(sessionauth.RequireSignedIn)
		pr.Get("/me", h.ServeMe)
	})

	return r
}
