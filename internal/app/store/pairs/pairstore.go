// internal/app/store/pairs/pairstore.go
package pairstore

import (
	"context"
	"time"

	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("continuation_pairs")}
}

// Create records a mutual continue-with selection for the coming week.
func (s *Store) Create(ctx context.Context, uidA, uidB string, weekNumber int) (models.ContinuationPair, error) {
	p := models.ContinuationPair{
		ID:              primitive.NewObjectID(),
		MemberUids:      []string{uidA, uidB},
		WeekNumber:      weekNumber,
		UsedForMatching: false,
		CreatedAt:       time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.ContinuationPair{}, err
	}
	return p, nil
}

// ListUnconsumed returns pairs not yet spent by a weekly cycle, oldest first.
func (s *Store) ListUnconsumed(ctx context.Context) ([]models.ContinuationPair, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"used_for_matching": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var pairs []models.ContinuationPair
	for cur.Next(ctx) {
		var p models.ContinuationPair
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, cur.Err()
}

// MarkConsumed spends a pair. A pair is spent exactly once per cycle whether
// or not the cycle managed to build a full trio around it.
func (s *Store) MarkConsumed(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"used_for_matching": true},
	})
	return err
}
