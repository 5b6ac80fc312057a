// internal/app/store/growth/growthstore.go
package growthstore

import (
	"context"
	"time"

	userstore "github.com/chikahq/partnerhub/internal/app/store/users"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Store records growth events and applies their counter increments to the
// owning user's stats. Events are best-effort gamification plumbing: a
// failed apply is logged and swallowed, never failing the caller.
type Store struct {
	c     *mongo.Collection
	users *userstore.Store
	log   *zap.Logger
}

func New(db *mongo.Database, users *userstore.Store, logger *zap.Logger) *Store {
	return &Store{
		c:     db.Collection("growth_events"),
		users: users,
		log:   logger,
	}
}

// statFieldFor maps an event type to the stats counter it feeds.
func statFieldFor(eventType string) string {
	switch eventType {
	case "exercise":
		return "step_count"
	case "sleep":
		return "sleep_hours"
	case "study":
		return "study_minutes"
	case "emotion", "interaction":
		return "emotion_points"
	case "stamp", "quiz":
		return "quiz_count"
	default:
		return ""
	}
}

// Record persists the event and applies its increment. Both halves are
// best-effort: errors are logged, nothing is returned.
func (s *Store) Record(ctx context.Context, userID, eventType string, value int64) {
	ev := models.GrowthEvent{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      eventType,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		s.log.Warn("growth event insert failed",
			zap.String("user_id", userID),
			zap.String("type", eventType),
			zap.Error(err))
		return
	}

	field := statFieldFor(eventType)
	if field == "" {
		s.log.Debug("unhandled growth event type", zap.String("type", eventType))
		return
	}
	if err := s.users.IncrementStat(ctx, userID, field, value); err != nil {
		s.log.Warn("growth stat increment failed",
			zap.String("user_id", userID),
			zap.String("field", field),
			zap.Error(err))
	}
}
