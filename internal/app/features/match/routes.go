// internal/app/features/match/routes.go
package match

import (
	"github.com/chikahq/partnerhub/internal/app/system/auth"
	"github.com/chikahq/partnerhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a subrouter for the matching endpoints, mounted under
// /match. Requests are rate limited per user: the interactive flow takes
// the global matching lock, so unthrottled retries punish everyone.
func Routes(h *Handler, limiter *ratelimit.Limiter, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	if limiter != nil {
		r.Use(limiter.Middleware(logger))
	}
	r.Post("/request", h.ServeRequest)
	return r
}
