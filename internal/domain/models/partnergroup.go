// internal/domain/models/partnergroup.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group states.
const (
	GroupStatusActive  = "active"
	GroupStatusExpired = "expired"
)

// Group size bounds. Groups start with 2 or 3 members; active membership may
// shrink to 1 before supplementation catches up.
const (
	GroupMinMembers = 2
	GroupMaxMembers = 3
)

// MemberMeta is the per-member snapshot stored on the group at join time.
// It is informational: matching never re-derives correctness from it.
type MemberMeta struct {
	UID            string    `bson:"uid" json:"uid"`
	Region         string    `bson:"region" json:"region"`
	CareerBucket   string    `bson:"career_bucket" json:"career_bucket"`
	CareerGroup    string    `bson:"career_group,omitempty" json:"career_group,omitempty"`
	WorkplaceType  string    `bson:"workplace_type,omitempty" json:"workplace_type,omitempty"`
	MainConcern    string    `bson:"main_concern_shown,omitempty" json:"main_concern_shown,omitempty"`
	JoinedAt       time.Time `bson:"joined_at" json:"joined_at"`
	IsSupplemented bool      `bson:"is_supplemented,omitempty" json:"is_supplemented,omitempty"`
}

// PartnerGroup is a 2-3 person peer-support group that lives for one week.
//
// MemberUids is append-only; ActiveMemberUids shrinks when members leave.
// A group with status "active" whose EndsAt has passed is logically expired
// even before the expiry sweep records it.
type PartnerGroup struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	StartedAt time.Time          `bson:"started_at" json:"started_at"`
	EndsAt    time.Time          `bson:"ends_at" json:"ends_at"`
	ExpiredAt *time.Time         `bson:"expired_at,omitempty" json:"expired_at,omitempty"`
	WeekKey   string             `bson:"week_key" json:"week_key"`

	MemberUids       []string     `bson:"member_uids" json:"member_uids"`
	ActiveMemberUids []string     `bson:"active_member_uids" json:"active_member_uids"`
	MemberMeta       []MemberMeta `bson:"member_meta" json:"member_meta"`

	// Matching metadata, informational only.
	MainConcern string `bson:"main_concern,omitempty" json:"main_concern,omitempty"`
	RegionMix   string `bson:"region_mix,omitempty" json:"region_mix,omitempty"`
	CareerMix   string `bson:"career_mix,omitempty" json:"career_mix,omitempty"`

	IsPairContinued      bool       `bson:"is_pair_continued,omitempty" json:"is_pair_continued,omitempty"`
	PreviousPair         []string   `bson:"previous_pair,omitempty" json:"previous_pair,omitempty"`
	WeekNumber           int        `bson:"week_number" json:"week_number"`
	NeedsSupplementation bool       `bson:"needs_supplementation" json:"needs_supplementation"`
	SupplementationAt    *time.Time `bson:"supplementation_marked_at,omitempty" json:"supplementation_marked_at,omitempty"`
	SupplementedAt       *time.Time `bson:"supplemented_at,omitempty" json:"supplemented_at,omitempty"`

	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsMember reports whether uid ever joined the group.
func (g *PartnerGroup) IsMember(uid string) bool {
	for _, m := range g.MemberUids {
		if m == uid {
			return true
		}
	}
	return false
}

// ActiveCount returns the number of currently active members.
func (g *PartnerGroup) ActiveCount() int { return len(g.ActiveMemberUids) }
