package partner_test

import (
	"context"
	"testing"
	"time"

	"github.com/chikahq/partnerhub/internal/app/system/partner"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"github.com/chikahq/partnerhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// newTestService builds an engine against a throwaway test database.
func newTestService(t *testing.T) (*partner.Service, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := partner.NewService(db.Client(), db, zap.NewNop(), partner.Config{})
	return svc, testutil.NewFixtures(t, db), db
}

// futureEndsAt gives a group end time comfortably in the future.
func futureEndsAt() time.Time {
	return time.Now().UTC().Add(72 * time.Hour)
}

// groupOf loads the group a user currently belongs to, failing the test when
// the reference is missing or broken.
func groupOf(t *testing.T, ctx context.Context, svc *partner.Service, uid string) models.PartnerGroup {
	t.Helper()
	u, err := svc.Users().GetByUID(ctx, uid)
	if err != nil {
		t.Fatalf("GetByUID(%s): %v", uid, err)
	}
	if u.PartnerGroupID == "" {
		t.Fatalf("user %s has no group reference", uid)
	}
	g, err := svc.Groups().GetByHexID(ctx, u.PartnerGroupID)
	if err != nil {
		t.Fatalf("GetByHexID(%s): %v", u.PartnerGroupID, err)
	}
	return g
}
