// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CommonsHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_key, etc.
//   - Environment variables: COMMONSHUB_MONGO_URI, COMMONSHUB_SESSION_KEY, etc.
//   - Command-line flags: --mongo_uri, --session_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "commonshub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Payment providers
	{Name: "razorpay_key_id", Default: "", Desc: "Razorpay API key ID"},
	{Name: "razorpay_key_secret", Default: "", Desc: "Razorpay API key secret"},
	{Name: "stripe_secret_key", Default: "", Desc: "Stripe secret key"},
	{Name: "default_currency", Default: "INR", Desc: "Currency used when a payment request omits one"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config
// files, environment variables (WAFFLE_* for core, COMMONSHUB_* for
// app), and command-line flags, merged with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COMMONSHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionDomain: appValues.String("session_domain"),

		RazorpayKeyID:     appValues.String("razorpay_key_id"),
		RazorpayKeySecret: appValues.String("razorpay_key_secret"),
		StripeSecretKey:   appValues.String("stripe_secret_key"),
		DefaultCurrency:   appValues.String("default_currency"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// CommonsHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and refuses to start in
// production without a session key.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" && appCfg.SessionKey == "" {
		return fmt.Errorf("session_key must be set in production")
	}

	if appCfg.RazorpayKeyID == "" && appCfg.StripeSecretKey == "" {
		logger.Warn("no payment provider configured; payment initiation will be rejected")
	}

	return nil
}
