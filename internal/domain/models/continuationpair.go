// internal/domain/models/continuationpair.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContinuationPair records two members who mutually chose to stay together
// after their group expired. The next weekly cycle consumes it exactly once
// (UsedForMatching flips true) whether or not a third member was found.
type ContinuationPair struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	MemberUids      []string           `bson:"member_uids" json:"member_uids"` // always length 2
	WeekNumber      int                `bson:"week_number" json:"week_number"`
	UsedForMatching bool               `bson:"used_for_matching" json:"used_for_matching"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}
