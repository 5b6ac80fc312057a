// internal/domain/models/userprofile.go
package models

import (
	"time"
)

// Partner participation states.
const (
	PartnerStatusActive = "active"
	PartnerStatusPaused = "paused"
)

// Career buckets, ordered junior to senior.
const (
	CareerBucket0to2  = "0-2"
	CareerBucket3to5  = "3-5"
	CareerBucket6Plus = "6+"
)

// PreferenceItem is one prioritized matching criterion.
//
// Type is one of "region", "career", "tags".
// Value depends on Type:
//   - region: "nearby" | "far" | "any"
//   - career: "similar" | "senior" | "any"
//   - tags:   "similar" | "any"
type PreferenceItem struct {
	Type  string `bson:"type" json:"type"`
	Value string `bson:"value" json:"value"`
}

// PartnerPreferences holds the three weighted criteria a user matches by.
// Priority1 weighs 3, Priority2 weighs 2, Priority3 weighs 1.
type PartnerPreferences struct {
	Priority1 PreferenceItem `bson:"priority1" json:"priority1"`
	Priority2 PreferenceItem `bson:"priority2" json:"priority2"`
	Priority3 PreferenceItem `bson:"priority3" json:"priority3"`
}

// DefaultPreferences is the fallback preference set for users who never
// picked their own: similar career first, shared concerns second, any region.
func DefaultPreferences() PartnerPreferences {
	return PartnerPreferences{
		Priority1: PreferenceItem{Type: "career", Value: "similar"},
		Priority2: PreferenceItem{Type: "tags", Value: "similar"},
		Priority3: PreferenceItem{Type: "region", Value: "any"},
	}
}

// UserProfile is the matching-relevant view of a user document.
//
// The document is owned by the identity service; this engine only writes the
// partner group reference, partner status, continue-with selection, and the
// stats counters. Documents are keyed by uid (users/{uid}).
type UserProfile struct {
	UID        string `bson:"_id" json:"uid"`
	Nickname   string `bson:"nickname" json:"nickname"`
	NicknameCI string `bson:"nickname_ci,omitempty" json:"-"`

	Region        string   `bson:"region" json:"region"`
	CareerGroup   string   `bson:"career_group" json:"career_group"`
	CareerBucket  string   `bson:"career_bucket" json:"career_bucket"`
	WorkplaceType string   `bson:"workplace_type,omitempty" json:"workplace_type,omitempty"`
	MainConcerns  []string `bson:"main_concerns" json:"main_concerns"`

	PartnerStatus     string              `bson:"partner_status" json:"partner_status"`
	WillMatchNextWeek bool                `bson:"will_match_next_week" json:"will_match_next_week"`
	Preferences       *PartnerPreferences `bson:"partner_preferences,omitempty" json:"partner_preferences,omitempty"`

	// Current group reference; nil when unmatched.
	PartnerGroupID     string     `bson:"partner_group_id,omitempty" json:"partner_group_id,omitempty"`
	PartnerGroupEndsAt *time.Time `bson:"partner_group_ends_at,omitempty" json:"partner_group_ends_at,omitempty"`

	// ContinueWith is the uid of the group member this user chose to keep
	// as a partner past expiry. Cleared when a new group is formed.
	ContinueWith string `bson:"continue_with,omitempty" json:"continue_with,omitempty"`

	// Stats accumulates gamification counters fed by growth events.
	Stats map[string]int64 `bson:"stats,omitempty" json:"stats,omitempty"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at"`
}

// EffectivePreferences returns the user's preferences or the default set.
func (u *UserProfile) EffectivePreferences() PartnerPreferences {
	if u.Preferences != nil {
		return *u.Preferences
	}
	return DefaultPreferences()
}

// HasActiveGroup reports whether the profile points at a group that has not
// yet passed its end time.
func (u *UserProfile) HasActiveGroup(now time.Time) bool {
	return u.PartnerGroupID != "" && u.PartnerGroupEndsAt != nil && u.PartnerGroupEndsAt.After(now)
}

// ProfileComplete reports whether the fields matching requires are present.
func (u *UserProfile) ProfileComplete() bool {
	return u.Nickname != "" && u.Region != "" && u.CareerBucket != "" && len(u.MainConcerns) > 0
}
