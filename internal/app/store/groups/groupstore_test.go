package groupstore_test

import (
	"testing"
	"time"

	groupstore "github.com/chikahq/partnerhub/internal/app/store/groups"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"github.com/chikahq/partnerhub/internal/testutil"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := groupstore.New(db)
	g, err := store.Create(ctx, models.PartnerGroup{
		MemberUids:       []string{"a", "b"},
		ActiveMemberUids: []string{"a", "b"},
		EndsAt:           time.Now().UTC().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.ID.IsZero() {
		t.Fatal("expected assigned id")
	}
	if g.Status != models.GroupStatusActive {
		t.Errorf("status = %q; want active default", g.Status)
	}
	if g.WeekNumber != 1 {
		t.Errorf("week_number = %d; want 1 default", g.WeekNumber)
	}

	got, err := store.GetByHexID(ctx, g.ID.Hex())
	if err != nil {
		t.Fatalf("GetByHexID: %v", err)
	}
	if !got.IsMember("a") || !got.IsMember("b") {
		t.Errorf("membership lost on round trip: %v", got.MemberUids)
	}

	if _, err := store.GetByHexID(ctx, "not-a-hex-id"); err != groupstore.ErrNotFound {
		t.Fatalf("expected ErrNotFound for malformed hex, got %v", err)
	}
}

func TestListExpiredActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := groupstore.New(db)
	now := time.Now().UTC()

	past, _ := store.Create(ctx, models.PartnerGroup{EndsAt: now.Add(-time.Hour)})
	if _, err := store.Create(ctx, models.PartnerGroup{EndsAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("create future group: %v", err)
	}
	alreadyExpired, _ := store.Create(ctx, models.PartnerGroup{EndsAt: now.Add(-2 * time.Hour)})
	if err := store.MarkExpired(ctx, alreadyExpired.ID, now); err != nil {
		t.Fatalf("MarkExpired: %v", err)
	}

	due, err := store.ListExpiredActive(ctx, now)
	if err != nil {
		t.Fatalf("ListExpiredActive: %v", err)
	}
	if len(due) != 1 || due[0].ID != past.ID {
		t.Fatalf("expected only the past-due active group, got %d groups", len(due))
	}
}

func TestAddMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := groupstore.New(db)
	now := time.Now().UTC()
	g, _ := store.Create(ctx, models.PartnerGroup{
		MemberUids:       []string{"a", "b"},
		ActiveMemberUids: []string{"a", "b"},
		EndsAt:           now.Add(24 * time.Hour),
	})
	if err := store.SetNeedsSupplementation(ctx, g.ID, true); err != nil {
		t.Fatalf("flag: %v", err)
	}

	meta := models.MemberMeta{UID: "c", Region: "seoul", JoinedAt: now, IsSupplemented: true}
	if err := store.AddMember(ctx, g.ID, "c", meta); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	got, _ := store.GetByID(ctx, g.ID)
	if got.ActiveCount() != 3 {
		t.Errorf("active count = %d; want 3", got.ActiveCount())
	}
	if got.NeedsSupplementation {
		t.Error("expected needs_supplementation cleared by AddMember")
	}
	if got.SupplementedAt == nil {
		t.Error("expected supplemented_at stamped")
	}

	// An expired group cannot gain members.
	if err := store.MarkExpired(ctx, g.ID, now); err != nil {
		t.Fatalf("MarkExpired: %v", err)
	}
	if err := store.AddMember(ctx, g.ID, "d", models.MemberMeta{UID: "d"}); err != groupstore.ErrNotFound {
		t.Fatalf("expected ErrNotFound for expired group, got %v", err)
	}
}

func TestRemoveActiveMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := groupstore.New(db)
	g, _ := store.Create(ctx, models.PartnerGroup{
		MemberUids:       []string{"a", "b", "c"},
		ActiveMemberUids: []string{"a", "b", "c"},
		EndsAt:           time.Now().UTC().Add(24 * time.Hour),
	})

	after, err := store.RemoveActiveMember(ctx, g.ID, "b")
	if err != nil {
		t.Fatalf("RemoveActiveMember: %v", err)
	}
	if after.ActiveCount() != 2 {
		t.Errorf("active count = %d; want 2", after.ActiveCount())
	}
	// Historical membership is preserved.
	if !after.IsMember("b") {
		t.Error("expected b to remain in member_uids")
	}
}

func TestListNeedingSupplementation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := groupstore.New(db)
	now := time.Now().UTC()

	flagged, _ := store.Create(ctx, models.PartnerGroup{EndsAt: now.Add(24 * time.Hour)})
	if err := store.SetNeedsSupplementation(ctx, flagged.ID, true); err != nil {
		t.Fatalf("flag: %v", err)
	}
	if _, err := store.Create(ctx, models.PartnerGroup{EndsAt: now.Add(24 * time.Hour)}); err != nil {
		t.Fatalf("create plain group: %v", err)
	}

	got, err := store.ListNeedingSupplementation(ctx)
	if err != nil {
		t.Fatalf("ListNeedingSupplementation: %v", err)
	}
	if len(got) != 1 || got[0].ID != flagged.ID {
		t.Fatalf("expected only the flagged group, got %d", len(got))
	}
	if got[0].SupplementationAt == nil {
		t.Error("expected supplementation_marked_at stamped when flagging")
	}

	// Clearing the flag removes it from the sweep.
	if err := store.SetNeedsSupplementation(ctx, flagged.ID, false); err != nil {
		t.Fatalf("clear flag: %v", err)
	}
	got, err = store.ListNeedingSupplementation(ctx)
	if err != nil {
		t.Fatalf("ListNeedingSupplementation: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty sweep after clear, got %d", len(got))
	}
}
