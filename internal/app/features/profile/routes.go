// internal/app/features/profile/routes.go
package profile

import (
	"github.com/chikahq/partnerhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the profile endpoints, mounted under
// /profile.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/me", h.ServeGet)
	r.Put("/me", h.ServeUpdate)
	return r
}
