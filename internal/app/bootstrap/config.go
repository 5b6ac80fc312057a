// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for PartnerHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: PARTNERHUB_MONGO_URI, PARTNERHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "partner_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session cookie verification key, shared with the identity service"},
	{Name: "session_name", Default: "partnerhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Matching engine tuning
	{Name: "group_duration", Default: "168h", Desc: "Partner group lifetime (e.g., 168h for one week)"},
	{Name: "pool_read_limit", Default: 30, Desc: "Max waiting pool entries read per interactive match request"},
	{Name: "batch_candidate_cap", Default: 200, Desc: "Max users considered by the weekly trio search"},
	{Name: "lock_ttl", Default: "15s", Desc: "Matching lock time-to-live"},
	{Name: "match_rate_limit", Default: 10, Desc: "Max matching requests per user per minute"},
	{Name: "supplement_interval", Default: "30m", Desc: "How often the supplementation sweep retries short groups"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, PARTNERHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PARTNERHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		GroupDuration:      appValues.Duration("group_duration", 7*24*time.Hour),
		PoolReadLimit:      appValues.Int("pool_read_limit"),
		BatchCandidateCap:  appValues.Int("batch_candidate_cap"),
		LockTTL:            appValues.Duration("lock_ttl", 15*time.Second),
		MatchRateLimit:     appValues.Int("match_rate_limit"),
		SupplementInterval: appValues.Duration("supplement_interval", 30*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// PartnerHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and rejects engine tunings that
// would deadlock the interactive path.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.LockTTL < 5*time.Second {
		return fmt.Errorf("lock_ttl %s is too short: a holder must be able to finish one group creation before reclaim", appCfg.LockTTL)
	}
	if appCfg.PoolReadLimit < 2 {
		return fmt.Errorf("pool_read_limit must be at least 2 to ever form a group")
	}
	if appCfg.GroupDuration < time.Hour {
		return fmt.Errorf("group_duration %s is shorter than the expiry sweep can track", appCfg.GroupDuration)
	}
	if appCfg.MatchRateLimit < 1 {
		return fmt.Errorf("match_rate_limit must be at least 1")
	}
	if appCfg.SupplementInterval < time.Minute {
		return fmt.Errorf("supplement_interval %s is too aggressive for a pool sweep", appCfg.SupplementInterval)
	}

	return nil
}
