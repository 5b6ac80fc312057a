// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/chikahq/partnerhub/internal/app/system/career"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no user document exists for a uid.
var ErrNotFound = errors.New("user not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByUID loads one profile.
func (s *Store) GetByUID(ctx context.Context, uid string) (models.UserProfile, error) {
	var u models.UserProfile
	err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return models.UserProfile{}, err
	}
	return u, nil
}

// PartnerProfileUpdate carries the user-editable matching fields. Engine-owned
// fields (group reference, pool projection) are not settable through it.
type PartnerProfileUpdate struct {
	Nickname          string
	Region            string
	CareerGroup       string
	WorkplaceType     string
	MainConcerns      []string
	PartnerStatus     string
	WillMatchNextWeek *bool
	Preferences       *models.PartnerPreferences
}

// UpsertPartnerProfile merge-writes the user-editable fields, deriving the
// career bucket from the tenure label. Absent fields are left untouched.
func (s *Store) UpsertPartnerProfile(ctx context.Context, uid string, upd PartnerProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Nickname != "" {
		set["nickname"] = upd.Nickname
		set["nickname_ci"] = text.Fold(upd.Nickname)
	}
	if upd.Region != "" {
		set["region"] = upd.Region
	}
	if upd.CareerGroup != "" {
		set["career_group"] = upd.CareerGroup
		set["career_bucket"] = career.BucketFor(upd.CareerGroup)
	}
	if upd.WorkplaceType != "" {
		set["workplace_type"] = upd.WorkplaceType
	}
	if len(upd.MainConcerns) > 0 {
		set["main_concerns"] = upd.MainConcerns
	}
	if upd.PartnerStatus != "" {
		set["partner_status"] = upd.PartnerStatus
	}
	if upd.WillMatchNextWeek != nil {
		set["will_match_next_week"] = *upd.WillMatchNextWeek
	}
	if upd.Preferences != nil {
		set["partner_preferences"] = *upd.Preferences
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateByID(ctx, uid, bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}, opts)
	return err
}

// SetGroupRef points a member at their new group, resets their partner
// status to active, and clears any stale continue-with selection.
func (s *Store) SetGroupRef(ctx context.Context, uid, groupID string, endsAt time.Time) error {
	_, err := s.c.UpdateByID(ctx, uid, bson.M{
		"$set": bson.M{
			"partner_group_id":      groupID,
			"partner_group_ends_at": endsAt,
			"partner_status":        models.PartnerStatusActive,
			"updated_at":            time.Now().UTC(),
		},
		"$unset": bson.M{"continue_with": ""},
	})
	return err
}

// ClearGroupRef drops the group reference, but only while it still points at
// groupID. A member can be re-placed between a sweep's read and its write;
// the guard keeps the sweep from wiping the newer reference. The
// continue-with selection is preserved so the expiry sweep's pair extraction
// can still read it.
func (s *Store) ClearGroupRef(ctx context.Context, uid, groupID string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": uid, "partner_group_id": groupID},
		bson.M{
			"$unset": bson.M{
				"partner_group_id":      "",
				"partner_group_ends_at": "",
			},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		})
	return err
}

// SetContinueWith records which group member this user wants to keep.
func (s *Store) SetContinueWith(ctx context.Context, uid, partnerUID string) error {
	_, err := s.c.UpdateByID(ctx, uid, bson.M{
		"$set": bson.M{
			"continue_with": partnerUID,
			"updated_at":    time.Now().UTC(),
		},
	})
	return err
}

// ListMatchable returns users eligible for allocation this cycle:
// active users always qualify, paused users only when they opted into the
// next week, and nobody with a still-running group or an incomplete profile.
func (s *Store) ListMatchable(ctx context.Context, now time.Time) ([]models.UserProfile, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"partner_status": models.PartnerStatusActive},
		bson.M{"partner_status": models.PartnerStatusPaused, "will_match_next_week": true},
	}}

	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.UserProfile
	for cur.Next(ctx) {
		var u models.UserProfile
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		if u.HasActiveGroup(now) {
			continue
		}
		if !u.ProfileComplete() {
			continue
		}
		users = append(users, u)
	}
	return users, cur.Err()
}

// IncrementStat accumulates one gamification counter under stats.*.
// Merge semantics: the field is created on first use.
func (s *Store) IncrementStat(ctx context.Context, uid, field string, delta int64) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateByID(ctx, uid, bson.M{
		"$inc": bson.M{"stats." + field: delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}, opts)
	return err
}
