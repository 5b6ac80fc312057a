// internal/app/features/stamps/routes.go
package stamps

import (
	"github.com/chikahq/partnerhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the stamp endpoints, mounted under /stamps.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/activity", h.ServeReport)
	r.Get("/week", h.ServeWeek)
	r.Get("/today", h.ServeToday)
	return r
}
