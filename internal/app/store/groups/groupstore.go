// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no group document matches.
var ErrNotFound = errors.New("partner group not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("partner_groups")}
}

// Create inserts a new group document. The caller provides members, metadata,
// and timing; Create assigns the id and stamps timestamps.
func (s *Store) Create(ctx context.Context, g models.PartnerGroup) (models.PartnerGroup, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	if g.Status == "" {
		g.Status = models.GroupStatusActive
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.WeekNumber == 0 {
		g.WeekNumber = 1
	}
	g.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.PartnerGroup{}, err
	}
	return g, nil
}

// GetByID loads one group.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.PartnerGroup, error) {
	var g models.PartnerGroup
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.PartnerGroup{}, ErrNotFound
	}
	if err != nil {
		return models.PartnerGroup{}, err
	}
	return g, nil
}

// GetByHexID loads one group from the string form stored on user documents.
func (s *Store) GetByHexID(ctx context.Context, hex string) (models.PartnerGroup, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return models.PartnerGroup{}, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// ListExpiredActive returns active groups whose end time has passed.
func (s *Store) ListExpiredActive(ctx context.Context, now time.Time) ([]models.PartnerGroup, error) {
	return s.list(ctx, bson.M{
		"status":  models.GroupStatusActive,
		"ends_at": bson.M{"$lte": now},
	})
}

// ListNeedingSupplementation returns active groups flagged for a deferred
// member top-up.
func (s *Store) ListNeedingSupplementation(ctx context.Context) ([]models.PartnerGroup, error) {
	return s.list(ctx, bson.M{
		"status":                models.GroupStatusActive,
		"needs_supplementation": true,
	})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.PartnerGroup, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.PartnerGroup
	for cur.Next(ctx) {
		var g models.PartnerGroup
		if err := cur.Decode(&g); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, cur.Err()
}

// MarkExpired flips a group to expired and stamps the expiry time.
func (s *Store) MarkExpired(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":     models.GroupStatusExpired,
			"expired_at": now,
			"updated_at": now,
		},
	})
	return err
}

// AddMember appends a supplemented member to both membership lists and their
// meta snapshot. Guarded on active status so a concurrent expiry cannot gain
// a member.
func (s *Store) AddMember(ctx context.Context, id primitive.ObjectID, uid string, meta models.MemberMeta) error {
	now := time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.GroupStatusActive},
		bson.M{
			"$addToSet": bson.M{
				"member_uids":        uid,
				"active_member_uids": uid,
			},
			"$push": bson.M{"member_meta": meta},
			"$set": bson.M{
				"needs_supplementation": false,
				"supplemented_at":       now,
				"updated_at":            now,
			},
		},
	)
	if err := res.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// RemoveActiveMember drops a member from the active list only. MemberUids
// keeps the full historical membership.
func (s *Store) RemoveActiveMember(ctx context.Context, id primitive.ObjectID, uid string) (models.PartnerGroup, error) {
	now := time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.GroupStatusActive},
		bson.M{
			"$pull": bson.M{"active_member_uids": uid},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err := res.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.PartnerGroup{}, ErrNotFound
		}
		return models.PartnerGroup{}, err
	}

	// Re-read for the post-removal state the shrink trigger needs.
	return s.GetByID(ctx, id)
}

// SetNeedsSupplementation flags (or clears) the deferred top-up marker.
func (s *Store) SetNeedsSupplementation(ctx context.Context, id primitive.ObjectID, needs bool) error {
	now := time.Now().UTC()
	set := bson.M{
		"needs_supplementation": needs,
		"updated_at":            now,
	}
	if needs {
		set["supplementation_marked_at"] = now
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}
