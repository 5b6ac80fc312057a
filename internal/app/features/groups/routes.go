// internal/app/features/groups/routes.go
package groups

import (
	"github.com/chikahq/partnerhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the partner-group endpoints, mounted under
// /groups.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/me", h.ServeMyGroup)
	r.Post("/leave", h.ServeLeave)
	r.Post("/continue-with", h.ServeContinueWith)
	return r
}
