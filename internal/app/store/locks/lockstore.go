// internal/app/store/locks/lockstore.go
package lockstore

import (
	"context"
	"errors"
	"time"

	"github.com/chikahq/partnerhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrHeld is returned when an acquire attempt finds a live lock record
// owned by someone else.
var ErrHeld = errors.New("lock is held")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("global_locks")}
}

// TryAcquire writes the lock record in one atomic operation. The replace
// filter only matches a record whose TTL has already passed, so exactly one
// of three things happens:
//   - no record exists: the upsert inserts ours and we win;
//   - a stale record exists: the replace overwrites it and we win;
//   - a live record exists: the filter misses, the upsert collides on _id,
//     and the duplicate-key error surfaces as ErrHeld.
func (s *Store) TryAcquire(ctx context.Context, lockID, owner string, ttl time.Duration) error {
	now := time.Now().UTC()
	rec := models.GlobalLock{
		ID:        lockID,
		LockedAt:  now,
		LockedBy:  owner,
		ExpiresAt: now.Add(ttl),
	}

	filter := bson.M{
		"_id":        lockID,
		"expires_at": bson.M{"$lte": now},
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, filter, rec, opts)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrHeld
		}
		return err
	}
	return nil
}

// Release deletes the lock record only while owner still holds it. Deleting
// nothing is not an error: the record may have expired and been reclaimed,
// in which case it now belongs to someone else and must stay.
func (s *Store) Release(ctx context.Context, lockID, owner string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": lockID, "locked_by": owner})
	return err
}

// Get reads the current lock record, if any.
func (s *Store) Get(ctx context.Context, lockID string) (models.GlobalLock, error) {
	var rec models.GlobalLock
	err := s.c.FindOne(ctx, bson.M{"_id": lockID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return models.GlobalLock{}, mongo.ErrNoDocuments
	}
	return rec, err
}
