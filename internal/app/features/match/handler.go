// internal/app/features/match/handler.go
package match

import (
	"context"
	"net/http"

	"github.com/chikahq/partnerhub/internal/app/system/apperr"
	"github.com/chikahq/partnerhub/internal/app/system/auth"
	"github.com/chikahq/partnerhub/internal/app/system/httpapi"
	"github.com/chikahq/partnerhub/internal/app/system/partner"
	"github.com/chikahq/partnerhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the interactive matching endpoint.
type Handler struct {
	Svc *partner.Service
	Log *zap.Logger
}

// NewHandler constructs a match Handler bound to the partner service.
func NewHandler(svc *partner.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// ServeRequest handles POST /match/request.
//
// The outcome is always determinate: "matched" with the new group id, or
// "waiting" with the requester registered in the pool. Contention on the
// matching lock comes back as 429 and is safe to retry.
func (h *Handler) ServeRequest(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUID(r)
	if !ok {
		httpapi.WriteError(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	outcome, err := h.Svc.RequestMatching(ctx, uid)
	if err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, outcome)
}
