package pairstore_test

import (
	"testing"
	"time"

	pairstore "github.com/chikahq/partnerhub/internal/app/store/pairs"
	"github.com/chikahq/partnerhub/internal/testutil"
)

func TestPairLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := pairstore.New(db)

	first, err := store.Create(ctx, "a", "b", 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	second, err := store.Create(ctx, "c", "d", 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	pairs, err := store.ListUnconsumed(ctx)
	if err != nil {
		t.Fatalf("ListUnconsumed: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d unconsumed pairs; want 2", len(pairs))
	}
	if pairs[0].ID != first.ID || pairs[1].ID != second.ID {
		t.Error("expected oldest-first ordering")
	}
	if pairs[0].WeekNumber != 2 {
		t.Errorf("week_number = %d; want 2", pairs[0].WeekNumber)
	}

	if err := store.MarkConsumed(ctx, first.ID); err != nil {
		t.Fatalf("MarkConsumed: %v", err)
	}
	pairs, err = store.ListUnconsumed(ctx)
	if err != nil {
		t.Fatalf("ListUnconsumed: %v", err)
	}
	if len(pairs) != 1 || pairs[0].ID != second.ID {
		t.Fatalf("expected only the second pair to remain, got %d", len(pairs))
	}
}
