// internal/app/features/stamps/handler.go
package stamps

import (
	"context"
	"errors"
	"net/http"
	"time"

	growthstore "github.com/chikahq/partnerhub/internal/app/store/growth"
	stampstore "github.com/chikahq/partnerhub/internal/app/store/stamps"
	userstore "github.com/chikahq/partnerhub/internal/app/store/users"
	"github.com/chikahq/partnerhub/internal/app/system/apperr"
	"github.com/chikahq/partnerhub/internal/app/system/auth"
	"github.com/chikahq/partnerhub/internal/app/system/httpapi"
	"github.com/chikahq/partnerhub/internal/app/system/timeouts"
	"github.com/chikahq/partnerhub/internal/app/system/weekkey"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler owns the stamp and activity endpoints.
type Handler struct {
	Users  *userstore.Store
	Stamps *stampstore.Store
	Growth *growthstore.Store
	Log    *zap.Logger
}

// NewHandler constructs a stamps Handler.
func NewHandler(users *userstore.Store, stamps *stampstore.Store, growth *growthstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Stamps: stamps, Growth: growth, Log: logger}
}

// activityRequest is the JSON body for the activity report endpoint.
type activityRequest struct {
	Kind  string `json:"kind"`
	Value int64  `json:"value,omitempty"`
}

func validKind(kind string) bool {
	for _, k := range models.ActivityKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// activityResponse reports the day's stamp state after the report.
type activityResponse struct {
	MeetsCondition bool `json:"meets_condition"`
	StampFilled    bool `json:"stamp_filled"`
	JustFilled     bool `json:"just_filled"`
	FilledCount    int  `json:"filled_count"`
}

// groupFor resolves the caller's live group id or fails the request.
func (h *Handler) groupFor(ctx context.Context, uid string) (string, error) {
	user, err := h.Users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return "", apperr.New(apperr.NotFound, "user profile not found")
		}
		return "", err
	}
	if user.PartnerGroupID == "" {
		return "", apperr.New(apperr.FailedPrecondition, "no partner group")
	}
	return user.PartnerGroupID, nil
}

// ServeReport handles POST /stamps/activity.
//
// The stamp write is the source of truth; the growth event is recorded
// best-effort afterwards and never fails the request.
func (h *Handler) ServeReport(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	var req activityRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}
	if !validKind(req.Kind) {
		httpapi.WriteError(w, h.Log, apperr.New(apperr.FailedPrecondition, "unknown activity kind"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	groupID, err := h.groupFor(ctx, uid)
	if err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	now := time.Now()
	res, err := h.Stamps.ReportActivity(ctx, groupID, uid, req.Kind, now)
	if err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	value := req.Value
	if value <= 0 {
		value = 1
	}
	h.Growth.Record(ctx, uid, "interaction", value)
	if res.JustFilled {
		h.Growth.Record(ctx, uid, "stamp", 1)
	}

	httpapi.WriteJSON(w, http.StatusOK, activityResponse{
		MeetsCondition: res.MeetsCondition,
		StampFilled:    res.StampFilled,
		JustFilled:     res.JustFilled,
		FilledCount:    res.FilledCount,
	})
}

// ServeWeek handles GET /stamps/week. It returns the current week's stamp
// card for the caller's group; a week with no activity comes back as an
// empty card, not a 404.
func (h *Handler) ServeWeek(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	groupID, err := h.groupFor(ctx, uid)
	if err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	week, err := h.Stamps.GetWeek(ctx, groupID, weekkey.Current())
	if err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, week)
}

// ServeToday handles GET /stamps/today.
func (h *Handler) ServeToday(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	groupID, err := h.groupFor(ctx, uid)
	if err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	day, err := h.Stamps.GetDay(ctx, groupID, time.Now())
	if err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, day)
}
