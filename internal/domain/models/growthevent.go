// internal/domain/models/growthevent.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GrowthEvent is a gamification counter event emitted by app features.
// Applying one increments a stats field on the user document; failures are
// logged and swallowed, never failing the operation that emitted the event.
type GrowthEvent struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Type      string             `bson:"type" json:"type"`
	Value     int64              `bson:"value" json:"value"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
