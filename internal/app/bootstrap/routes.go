// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authfeature "github.com/dalemusser/commonshub/internal/app/features/auth"
	communitiesfeature "github.com/dalemusser/commonshub/internal/app/features/communities"
	eventsfeature "github.com/dalemusser/commonshub/internal/app/features/events"
	healthfeature "github.com/dalemusser/commonshub/internal/app/features/health"
	paymentsfeature "github.com/dalemusser/commonshub/internal/app/features/payments"
	postsfeature "github.com/dalemusser/commonshub/internal/app/features/posts"
	razorpayprovider "github.com/dalemusser/commonshub/internal/app/providers/razorpay"
	stripeprovider "github.com/dalemusser/commonshub/internal/app/providers/stripe"
	"github.com/dalemusser/commonshub/internal/app/store/audit"
	"github.com/dalemusser/commonshub/internal/app/system/auditlog"
	"github.com/dalemusser/commonshub/internal/app/system/auth"
	"github.com/dalemusser/commonshub/internal/app/system/membership"
	"github.com/dalemusser/commonshub/internal/app/system/payments"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and Startup have completed. CommonsHub is a JSON API: feature routers
// are mounted under /api and the session middleware makes the current
// user available to every handler via auth.CurrentUser(r).
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	auditLog := auditlog.New(audit.New(db), logger)
	ledger := membership.NewLedger(db, logger, auditLog)

	// Only providers with credentials are registered; requests naming an
	// unregistered provider fail with unknown-provider.
	var providers []payments.Provider
	if appCfg.RazorpayKeyID != "" {
		providers = append(providers, razorpayprovider.New(appCfg.RazorpayKeyID, appCfg.RazorpayKeySecret))
	}
	if appCfg.StripeSecretKey != "" {
		providers = append(providers, stripeprovider.New(appCfg.StripeSecretKey))
	}
	reconciler := payments.NewReconciler(db, logger, auditLog, providers...)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		authHandler := authfeature.NewHandler(db, auditLog, logger)
		api.Mount("/auth", authfeature.Routes(authHandler))

		communitiesHandler := communitiesfeature.NewHandler(db, ledger, logger)
		api.Mount("/communities", communitiesfeature.Routes(communitiesHandler))

		eventsHandler := eventsfeature.NewHandler(db, ledger, reconciler, logger)
		api.Mount("/events", eventsfeature.Routes(eventsHandler))

		postsHandler := postsfeature.NewHandler(db, ledger, logger)
		api.Mount("/posts", postsfeature.Routes(postsHandler))

		paymentsHandler := paymentsfeature.NewHandler(reconciler, appCfg.DefaultCurrency, logger)
		api.Mount("/payments", paymentsfeature.Routes(paymentsHandler))
	})

	return r, nil
}
