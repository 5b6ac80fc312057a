// internal/domain/models/poolentry.go
package models

import "time"

// Pool entry states.
const (
	PoolStatusWaiting = "waiting"
	PoolStatusMatched = "matched"
)

// PoolEntry is a waiting user's matching projection, keyed by uid.
//
// Entries are upserted when a user requests matching or enters a weekly cycle
// unmatched, flipped to matched inside the group-creation transaction, and
// deleted once the placement is durable. A stale entry is superseded by the
// next upsert.
type PoolEntry struct {
	UID           string   `bson:"_id" json:"uid"`
	Region        string   `bson:"region" json:"region"`
	CareerBucket  string   `bson:"career_bucket" json:"career_bucket"`
	WorkplaceType string   `bson:"workplace_type,omitempty" json:"workplace_type,omitempty"`
	MainConcerns  []string `bson:"main_concerns" json:"main_concerns"`

	Status         string `bson:"status" json:"status"`
	MatchedGroupID string `bson:"matched_group_id,omitempty" json:"matched_group_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// SharesConcern reports whether the two entries have at least one concern
// tag in common.
func (p *PoolEntry) SharesConcern(other *PoolEntry) bool {
	for _, a := range p.MainConcerns {
		for _, b := range other.MainConcerns {
			if a == b {
				return true
			}
		}
	}
	return false
}
