// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS). AppConfig is everything specific to CommonsHub:
// database connection, session signing, and payment provider keys.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionDomain string // Cookie domain (blank means current host)

	// Payment provider credentials. A provider with no credentials is
	// not registered and requests naming it get an unknown-provider
	// error instead of a half-configured client.
	RazorpayKeyID     string
	RazorpayKeySecret string
	StripeSecretKey   string

	// DefaultCurrency is used when a payment request omits one.
	DefaultCurrency string
}
