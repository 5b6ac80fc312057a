// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/chikahq/partnerhub/internal/app/store/users"
	"github.com/chikahq/partnerhub/internal/app/system/apperr"
	"github.com/chikahq/partnerhub/internal/app/system/auth"
	"github.com/chikahq/partnerhub/internal/app/system/career"
	"github.com/chikahq/partnerhub/internal/app/system/httpapi"
	"github.com/chikahq/partnerhub/internal/app/system/regions"
	"github.com/chikahq/partnerhub/internal/app/system/sanitize"
	"github.com/chikahq/partnerhub/internal/app/system/timeouts"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler owns the partner-profile endpoints.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a profile Handler bound to the user store.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

// ServeGet handles GET /profile/me.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	user, err := h.Users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpapi.WriteError(w, h.Log, apperr.New(apperr.NotFound, "user profile not found"))
			return
		}
		httpapi.WriteError(w, h.Log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, user)
}

// updateRequest is the JSON body for the profile update endpoint. All fields
// are optional; absent fields keep their stored values.
type updateRequest struct {
	Nickname          string                     `json:"nickname,omitempty"`
	Region            string                     `json:"region,omitempty"`
	CareerGroup       string                     `json:"career_group,omitempty"`
	WorkplaceType     string                     `json:"workplace_type,omitempty"`
	MainConcerns      []string                   `json:"main_concerns,omitempty"`
	PartnerStatus     string                     `json:"partner_status,omitempty"`
	WillMatchNextWeek *bool                      `json:"will_match_next_week,omitempty"`
	Preferences       *models.PartnerPreferences `json:"partner_preferences,omitempty"`
}

func (req *updateRequest) validate() error {
	if req.Region != "" && !regions.Valid(req.Region) {
		return apperr.New(apperr.FailedPrecondition, "unknown region")
	}
	if req.CareerGroup != "" && !career.ValidGroup(req.CareerGroup) {
		return apperr.New(apperr.FailedPrecondition, "unknown career group")
	}
	switch req.PartnerStatus {
	case "", models.PartnerStatusActive, models.PartnerStatusPaused:
	default:
		return apperr.New(apperr.FailedPrecondition, "partner_status must be active or paused")
	}
	if req.Preferences != nil {
		if err := validatePreferences(req.Preferences); err != nil {
			return err
		}
	}
	return nil
}

func validatePreferences(p *models.PartnerPreferences) error {
	for _, item := range []models.PreferenceItem{p.Priority1, p.Priority2, p.Priority3} {
		valid := false
		switch item.Type {
		case "region":
			valid = item.Value == "nearby" || item.Value == "far" || item.Value == "any"
		case "career":
			valid = item.Value == "similar" || item.Value == "senior" || item.Value == "any"
		case "tags":
			valid = item.Value == "similar" || item.Value == "any"
		}
		if !valid {
			return apperr.New(apperr.FailedPrecondition, "invalid preference item")
		}
	}
	return nil
}

// ServeUpdate handles PUT /profile/me. Free-text fields are sanitized
// before they reach the store.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	var req updateRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}
	req.Nickname = sanitize.Text(req.Nickname)
	req.MainConcerns = sanitize.TextSlice(req.MainConcerns)
	if err := req.validate(); err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	upd := userstore.PartnerProfileUpdate{
		Nickname:          req.Nickname,
		Region:            req.Region,
		CareerGroup:       req.CareerGroup,
		WorkplaceType:     sanitize.Text(req.WorkplaceType),
		MainConcerns:      req.MainConcerns,
		PartnerStatus:     req.PartnerStatus,
		WillMatchNextWeek: req.WillMatchNextWeek,
		Preferences:       req.Preferences,
	}
	if err := h.Users.UpsertPartnerProfile(ctx, uid, upd); err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	user, err := h.Users.GetByUID(ctx, uid)
	if err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, user)
}
