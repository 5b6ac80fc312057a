// internal/app/store/pool/poolstore.go
package poolstore

import (
	"context"
	"errors"
	"time"

	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotWaiting is returned when a conditional consume finds an entry that
// is no longer in the waiting state (or gone). Callers treat it as a
// retryable contention failure.
var ErrNotWaiting = errors.New("pool entry is not waiting")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("partner_pool")}
}

// Upsert writes a waiting entry for the user, superseding any stale one.
// The original creation time is kept when re-upserting so oldest-first
// fairness is measured from the first time the user started waiting.
func (s *Store) Upsert(ctx context.Context, e models.PoolEntry) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateByID(ctx, e.UID, bson.M{
		"$set": bson.M{
			"region":         e.Region,
			"career_bucket":  e.CareerBucket,
			"workplace_type": e.WorkplaceType,
			"main_concerns":  e.MainConcerns,
			"status":         models.PoolStatusWaiting,
		},
		"$unset":       bson.M{"matched_group_id": ""},
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}, opts)
	return err
}

// GetByUID loads one entry; returns mongo.ErrNoDocuments when absent.
func (s *Store) GetByUID(ctx context.Context, uid string) (models.PoolEntry, error) {
	var e models.PoolEntry
	err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&e)
	return e, err
}

// ListWaiting returns up to limit waiting entries ordered by creation time
// ascending (oldest first), excluding excludeUID. limit ≤ 0 means unbounded.
func (s *Store) ListWaiting(ctx context.Context, excludeUID string, limit int64) ([]*models.PoolEntry, error) {
	filter := bson.M{
		"status": models.PoolStatusWaiting,
		"_id":    bson.M{"$ne": excludeUID},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []*models.PoolEntry
	for cur.Next(ctx) {
		var e models.PoolEntry
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, cur.Err()
}

// MarkMatched flips an entry to matched only if it is still waiting.
// The guard filter is the re-verification step of the interactive flow:
// a concurrently consumed candidate fails with ErrNotWaiting and the caller
// aborts the whole attempt.
func (s *Store) MarkMatched(ctx context.Context, uid, groupID string) error {
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": uid, "status": models.PoolStatusWaiting},
		bson.M{"$set": bson.M{
			"status":           models.PoolStatusMatched,
			"matched_group_id": groupID,
		}},
	)
	if err := res.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotWaiting
		}
		return err
	}
	return nil
}

// Delete removes an entry once its placement is durable. Absence is fine.
func (s *Store) Delete(ctx context.Context, uid string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": uid})
	return err
}

// DeleteMany removes several entries at once (batch placement cleanup).
func (s *Store) DeleteMany(ctx context.Context, uids []string) error {
	if len(uids) == 0 {
		return nil
	}
	_, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": uids}})
	return err
}
