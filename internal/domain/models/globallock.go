// internal/domain/models/globallock.go
package models

import "time"

// GlobalLock is a TTL-bound mutual-exclusion token, one document per lock id.
// It has no lifecycle beyond its TTL: a record whose ExpiresAt has passed is
// free to be overwritten by any new owner.
type GlobalLock struct {
	ID        string    `bson:"_id" json:"id"`
	LockedAt  time.Time `bson:"locked_at" json:"locked_at"`
	LockedBy  string    `bson:"locked_by" json:"locked_by"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
}
