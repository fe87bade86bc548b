// internal/app/features/payments/routes.go
package payments

import (
	sessionauth "github.com/dalemusser/commonshub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /api/payments. Everything
// here requires a session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sessionauth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/razorpay", h.HandleInitiateRazorpay)
		pr.Post("/stripe", h.HandleInitiateStripe)
		pr.Get("/{id}", h.ServeView)
		pr.Post("/{id}/status", h.HandleUpdateStatus)
	})

	return r
}
