// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"errors"
	"net/http"

	groupstore "github.com/chikahq/partnerhub/internal/app/store/groups"
	userstore "github.com/chikahq/partnerhub/internal/app/store/users"
	"github.com/chikahq/partnerhub/internal/app/system/apperr"
	"github.com/chikahq/partnerhub/internal/app/system/auth"
	"github.com/chikahq/partnerhub/internal/app/system/httpapi"
	"github.com/chikahq/partnerhub/internal/app/system/partner"
	"github.com/chikahq/partnerhub/internal/app/system/timeouts"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler owns the partner-group endpoints.
type Handler struct {
	Svc *partner.Service
	Log *zap.Logger
}

// NewHandler constructs a groups Handler bound to the partner service.
func NewHandler(svc *partner.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// groupResponse is the caller's view of their group.
type groupResponse struct {
	Group      *models.PartnerGroup `json:"group"`
	MyContinue string               `json:"my_continue_with,omitempty"`
}

// ServeMyGroup handles GET /groups/me. A caller with no live group gets a
// 404 rather than an empty body so clients can branch on status alone.
func (h *Handler) ServeMyGroup(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	user, err := h.Svc.Users().GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpapi.WriteError(w, h.Log, apperr.New(apperr.NotFound, "user profile not found"))
			return
		}
		httpapi.WriteError(w, h.Log, err)
		return
	}
	if user.PartnerGroupID == "" {
		httpapi.WriteError(w, h.Log, apperr.New(apperr.NotFound, "no partner group"))
		return
	}

	g, err := h.Svc.Groups().GetByHexID(ctx, user.PartnerGroupID)
	if err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			httpapi.WriteError(w, h.Log, apperr.New(apperr.NotFound, "no partner group"))
			return
		}
		httpapi.WriteError(w, h.Log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, groupResponse{
		Group:      &g,
		MyContinue: user.ContinueWith,
	})
}

// ServeLeave handles POST /groups/leave.
func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	if err := h.Svc.LeaveGroup(ctx, uid); err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// continueRequest is the JSON body for the continue-with endpoint.
type continueRequest struct {
	PartnerUID string `json:"partner_uid"`
}

// ServeContinueWith handles POST /groups/continue-with.
func (h *Handler) ServeContinueWith(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	var req continueRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}
	if req.PartnerUID == "" {
		httpapi.WriteError(w, h.Log, apperr.New(apperr.FailedPrecondition, "partner_uid is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.Svc.SetContinueWith(ctx, uid, req.PartnerUID); err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
