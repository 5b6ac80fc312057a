package partner_test

import (
	"testing"

	pairstore "github.com/chikahq/partnerhub/internal/app/store/pairs"
	poolstore "github.com/chikahq/partnerhub/internal/app/store/pool"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"github.com/chikahq/partnerhub/internal/testutil"
)

func TestRunWeeklyMatching_ContinuationPairGetsThird(t *testing.T) {
	svc, fx, db := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateProfile(ctx, testutil.UID("a"))
	b := fx.CreateProfile(ctx, testutil.UID("b"))
	fx.CreateProfile(ctx, testutil.UID("c"))
	fx.CreateContinuationPair(ctx, 2, a.UID, b.UID)

	result, err := svc.RunWeeklyMatching(ctx)
	if err != nil {
		t.Fatalf("RunWeeklyMatching: %v", err)
	}
	if result.ContinuationGroups != 1 {
		t.Fatalf("continuation groups = %d; want 1", result.ContinuationGroups)
	}
	if result.TrioGroups != 0 || result.PairGroups != 0 || result.Stragglers != 0 {
		t.Errorf("unexpected extra placements: %+v", result)
	}

	g := groupOf(t, ctx, svc, a.UID)
	if len(g.MemberUids) != 3 {
		t.Fatalf("expected the pair plus a third, got %v", g.MemberUids)
	}
	if !g.IsPairContinued || g.WeekNumber != 2 {
		t.Errorf("continuation metadata wrong: pair_continued=%v week=%d", g.IsPairContinued, g.WeekNumber)
	}
	if g.NeedsSupplementation {
		t.Error("full continuation group should not be flagged")
	}

	// The pair is spent this cycle.
	unconsumed, err := pairstore.New(db).ListUnconsumed(ctx)
	if err != nil {
		t.Fatalf("ListUnconsumed: %v", err)
	}
	if len(unconsumed) != 0 {
		t.Errorf("expected pair consumed, got %d unconsumed", len(unconsumed))
	}
}

func TestRunWeeklyCycle_SweepsBeforeAllocating(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// A mutual pair in a group that ended after the last expiry tick: the
	// cycle must sweep it so the pair is allocated this week, not next.
	a := fx.CreateProfile(ctx, testutil.UID("a"))
	b := fx.CreateProfile(ctx, testutil.UID("b"))
	fx.CreateGroup(ctx, pastEndsAt(), a, b)
	_ = svc.Users().SetContinueWith(ctx, a.UID, b.UID)
	_ = svc.Users().SetContinueWith(ctx, b.UID, a.UID)

	fx.CreateProfile(ctx, testutil.UID("c"))

	result, err := svc.RunWeeklyCycle(ctx)
	if err != nil {
		t.Fatalf("RunWeeklyCycle: %v", err)
	}
	if result.ContinuationGroups != 1 {
		t.Fatalf("continuation groups = %d; want 1", result.ContinuationGroups)
	}

	g := groupOf(t, ctx, svc, a.UID)
	if !g.IsPairContinued || g.WeekNumber != 2 {
		t.Errorf("continuation metadata wrong: pair_continued=%v week=%d", g.IsPairContinued, g.WeekNumber)
	}
	if len(g.MemberUids) != 3 {
		t.Errorf("expected the pair plus a third, got %v", g.MemberUids)
	}
	if !g.IsMember(b.UID) {
		t.Errorf("expected %s carried with %s", b.UID, a.UID)
	}
}

func TestRunWeeklyMatching_ContinuationPairStartsShort(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateProfile(ctx, testutil.UID("a"))
	b := fx.CreateProfile(ctx, testutil.UID("b"))
	fx.CreateContinuationPair(ctx, 3, a.UID, b.UID)

	result, err := svc.RunWeeklyMatching(ctx)
	if err != nil {
		t.Fatalf("RunWeeklyMatching: %v", err)
	}
	if result.ContinuationGroups != 1 {
		t.Fatalf("continuation groups = %d; want 1", result.ContinuationGroups)
	}

	g := groupOf(t, ctx, svc, a.UID)
	if len(g.MemberUids) != 2 {
		t.Fatalf("expected a two-person start, got %v", g.MemberUids)
	}
	if !g.NeedsSupplementation {
		t.Error("short continuation group must be flagged for supplementation")
	}
	if !g.IsMember(b.UID) {
		t.Errorf("expected %s in group", b.UID)
	}
}

func TestRunWeeklyMatching_PairConsumedWhenMemberGone(t *testing.T) {
	svc, fx, db := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateProfile(ctx, testutil.UID("a"))
	gone := testutil.UID("gone")
	fx.CreateContinuationPair(ctx, 2, a.UID, gone)

	result, err := svc.RunWeeklyMatching(ctx)
	if err != nil {
		t.Fatalf("RunWeeklyMatching: %v", err)
	}
	if result.ContinuationGroups != 0 {
		t.Errorf("continuation groups = %d; want 0", result.ContinuationGroups)
	}

	// One-shot contract: the pair must not be retried next cycle.
	unconsumed, err := pairstore.New(db).ListUnconsumed(ctx)
	if err != nil {
		t.Fatalf("ListUnconsumed: %v", err)
	}
	if len(unconsumed) != 0 {
		t.Errorf("expected pair consumed, got %d unconsumed", len(unconsumed))
	}

	// The remaining member stays available as a straggler.
	if result.Stragglers != 1 {
		t.Errorf("stragglers = %d; want 1", result.Stragglers)
	}
}

func TestRunWeeklyMatching_TriosThenPairs(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uids := make([]string, 5)
	for i := range uids {
		uids[i] = testutil.UID("u")
		fx.CreateProfile(ctx, uids[i])
	}

	result, err := svc.RunWeeklyMatching(ctx)
	if err != nil {
		t.Fatalf("RunWeeklyMatching: %v", err)
	}
	if result.TrioGroups != 1 || result.PairGroups != 1 || result.Stragglers != 0 {
		t.Fatalf("expected one trio and one pair from five users, got %+v", result)
	}

	// Every user landed in exactly one group.
	seen := map[string]int{}
	for _, uid := range uids {
		g := groupOf(t, ctx, svc, uid)
		seen[g.ID.Hex()]++
		if len(g.MemberUids) == 2 && !g.NeedsSupplementation {
			t.Errorf("pair group %s must be flagged for supplementation", g.ID.Hex())
		}
	}
	if len(seen) != 2 {
		t.Errorf("expected 2 distinct groups, got %d", len(seen))
	}
}

func TestRunWeeklyMatching_StragglerReturnsToPool(t *testing.T) {
	svc, fx, db := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uids := make([]string, 4)
	for i := range uids {
		uids[i] = testutil.UID("u")
		fx.CreateProfile(ctx, uids[i])
	}

	result, err := svc.RunWeeklyMatching(ctx)
	if err != nil {
		t.Fatalf("RunWeeklyMatching: %v", err)
	}
	if result.TrioGroups != 1 || result.Stragglers != 1 {
		t.Fatalf("expected one trio and one straggler from four users, got %+v", result)
	}

	pool := poolstore.New(db)
	waiting := 0
	for _, uid := range uids {
		entry, err := pool.GetByUID(ctx, uid)
		if err == nil && entry.Status == models.PoolStatusWaiting {
			waiting++
		}
	}
	if waiting != 1 {
		t.Errorf("waiting pool entries = %d; want 1", waiting)
	}
}

func TestRunWeeklyMatching_SkipsAlreadyGroupedUsers(t *testing.T) {
	svc, fx, _ := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Three users already placed in a live group: an idempotent re-run of
	// the pass must leave them alone.
	a := fx.CreateProfile(ctx, testutil.UID("a"))
	b := fx.CreateProfile(ctx, testutil.UID("b"))
	c := fx.CreateProfile(ctx, testutil.UID("c"))
	existing := fx.CreateGroup(ctx, futureEndsAt(), a, b, c)

	result, err := svc.RunWeeklyMatching(ctx)
	if err != nil {
		t.Fatalf("RunWeeklyMatching: %v", err)
	}
	if result.TrioGroups != 0 || result.PairGroups != 0 || result.ContinuationGroups != 0 {
		t.Fatalf("expected no placements, got %+v", result)
	}

	g := groupOf(t, ctx, svc, a.UID)
	if g.ID != existing.ID {
		t.Errorf("user was moved out of their live group")
	}
}
