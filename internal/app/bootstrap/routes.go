// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	groupsfeature "github.com/chikahq/partnerhub/internal/app/features/groups"
	healthfeature "github.com/chikahq/partnerhub/internal/app/features/health"
	matchfeature "github.com/chikahq/partnerhub/internal/app/features/match"
	profilefeature "github.com/chikahq/partnerhub/internal/app/features/profile"
	stampsfeature "github.com/chikahq/partnerhub/internal/app/features/stamps"
	growthstore "github.com/chikahq/partnerhub/internal/app/store/growth"
	stampstore "github.com/chikahq/partnerhub/internal/app/store/stamps"
	"github.com/chikahq/partnerhub/internal/app/system/auth"
	"github.com/chikahq/partnerhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so the matching engine built in Startup
// is available here.
//
// All feature routers are JSON APIs; the session middleware decodes the
// identity cookie on every request and each protected subrouter enforces
// sign-in itself.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	stamps := stampstore.New(deps.MongoClient, deps.MongoDatabase)
	growth := growthstore.New(deps.MongoDatabase, engine.Users(), logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the caller's uid into context when the
	// session cookie is present and valid.
	r.Use(sessionMgr.LoadSession)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Partner profile
	profileHandler := profilefeature.NewHandler(engine.Users(), logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	// Interactive matching, throttled per user.
	matchLimiter := ratelimit.New(appCfg.MatchRateLimit, time.Minute)
	matchHandler := matchfeature.NewHandler(engine, logger)
	r.Mount("/match", matchfeature.Routes(matchHandler, matchLimiter, logger))

	// Group membership and lifecycle
	groupsHandler := groupsfeature.NewHandler(engine, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler))

	// Stamps and activity reporting
	stampsHandler := stampsfeature.NewHandler(engine.Users(), stamps, growth, logger)
	r.Mount("/stamps", stampsfeature.Routes(stampsHandler))

	return r, nil
}
