package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/chikahq/partnerhub/internal/app/system/career"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// ProfileOpt mutates a profile fixture before insertion.
type ProfileOpt func(*models.UserProfile)

// WithRegion sets the profile's region.
func WithRegion(region string) ProfileOpt {
	return func(u *models.UserProfile) { u.Region = region }
}

// WithCareerGroup sets the tenure label and its derived bucket.
func WithCareerGroup(group string) ProfileOpt {
	return func(u *models.UserProfile) {
		u.CareerGroup = group
		u.CareerBucket = career.BucketFor(group)
	}
}

// WithConcerns sets the profile's concern tags.
func WithConcerns(tags ...string) ProfileOpt {
	return func(u *models.UserProfile) { u.MainConcerns = tags }
}

// WithPreferences sets explicit matching preferences.
func WithPreferences(p models.PartnerPreferences) ProfileOpt {
	return func(u *models.UserProfile) { u.Preferences = &p }
}

// WithPartnerStatus sets the participation state.
func WithPartnerStatus(status string) ProfileOpt {
	return func(u *models.UserProfile) { u.PartnerStatus = status }
}

// WithGroupRef points the profile at a group ending at the given time.
func WithGroupRef(groupID string, endsAt time.Time) ProfileOpt {
	return func(u *models.UserProfile) {
		u.PartnerGroupID = groupID
		u.PartnerGroupEndsAt = &endsAt
	}
}

// CreateProfile inserts a complete, matchable user profile. Defaults:
// active, Seoul, three years in, concerned about burnout.
func (f *Fixtures) CreateProfile(ctx context.Context, uid string, opts ...ProfileOpt) models.UserProfile {
	f.t.Helper()

	now := time.Now().UTC()
	nickname := "nick-" + uid
	u := models.UserProfile{
		UID:           uid,
		Nickname:      nickname,
		NicknameCI:    text.Fold(nickname),
		Region:        "seoul",
		CareerGroup:   career.GroupYear3,
		CareerBucket:  career.BucketFor(career.GroupYear3),
		MainConcerns:  []string{"burnout"},
		PartnerStatus: models.PartnerStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(&u)
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return u
}

// CreatePoolEntry inserts a waiting pool entry projected from the profile.
func (f *Fixtures) CreatePoolEntry(ctx context.Context, u models.UserProfile) models.PoolEntry {
	f.t.Helper()

	entry := models.PoolEntry{
		UID:           u.UID,
		Region:        u.Region,
		CareerBucket:  u.CareerBucket,
		WorkplaceType: u.WorkplaceType,
		MainConcerns:  u.MainConcerns,
		Status:        models.PoolStatusWaiting,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := f.db.Collection("partner_pool").InsertOne(ctx, entry); err != nil {
		f.t.Fatalf("failed to create test pool entry: %v", err)
	}
	return entry
}

// CreateGroup inserts an active group with the given members and points
// each member's profile at it.
func (f *Fixtures) CreateGroup(ctx context.Context, endsAt time.Time, members ...models.UserProfile) models.PartnerGroup {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.PartnerGroup{
		ID:         primitive.NewObjectID(),
		Status:     models.GroupStatusActive,
		CreatedAt:  now,
		StartedAt:  now,
		EndsAt:     endsAt,
		WeekNumber: 1,
		UpdatedAt:  now,
	}
	for _, m := range members {
		g.MemberUids = append(g.MemberUids, m.UID)
		g.ActiveMemberUids = append(g.ActiveMemberUids, m.UID)
		g.MemberMeta = append(g.MemberMeta, models.MemberMeta{
			UID:          m.UID,
			Region:       m.Region,
			CareerBucket: m.CareerBucket,
			CareerGroup:  m.CareerGroup,
			JoinedAt:     now,
		})
	}

	if _, err := f.db.Collection("partner_groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}

	for _, m := range members {
		_, err := f.db.Collection("users").UpdateByID(ctx, m.UID, map[string]any{
			"$set": map[string]any{
				"partner_group_id":      g.ID.Hex(),
				"partner_group_ends_at": endsAt,
			},
		})
		if err != nil {
			f.t.Fatalf("failed to point member %s at group: %v", m.UID, err)
		}
	}
	return g
}

// CreateContinuationPair inserts an unconsumed continuation pair.
func (f *Fixtures) CreateContinuationPair(ctx context.Context, weekNumber int, uidA, uidB string) models.ContinuationPair {
	f.t.Helper()

	pair := models.ContinuationPair{
		ID:         primitive.NewObjectID(),
		MemberUids: []string{uidA, uidB},
		WeekNumber: weekNumber,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("continuation_pairs").InsertOne(ctx, pair); err != nil {
		f.t.Fatalf("failed to create test continuation pair: %v", err)
	}
	return pair
}

// UID returns a unique uid for a test actor.
func UID(label string) string {
	return fmt.Sprintf("%s-%s", label, primitive.NewObjectID().Hex()[:8])
}
