// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, CORS, and request body limits. AppConfig is
// where everything specific to the partner engine lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session cookie configuration. The signing key is shared with the
	// identity service that issues the cookies; this service only reads.
	SessionKey    string // Secret key for verifying session cookies
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)

	// Matching engine tuning
	GroupDuration      time.Duration // How long a group lives (default one week)
	PoolReadLimit      int           // Max waiting entries read per interactive request
	BatchCandidateCap  int           // Max users considered by the trio search per batch pass
	LockTTL            time.Duration // Matching lock time-to-live
	MatchRateLimit     int           // Max matching requests per user per minute
	SupplementInterval time.Duration // How often the supplementation sweep runs
}
