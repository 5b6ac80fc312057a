package lock_test

import (
	"testing"
	"time"

	lockstore "github.com/chikahq/partnerhub/internal/app/store/locks"
	"github.com/chikahq/partnerhub/internal/app/system/apperr"
	"github.com/chikahq/partnerhub/internal/app/system/lock"
	"github.com/chikahq/partnerhub/internal/testutil"
	"go.uber.org/zap"
)

func TestAcquireRelease(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	l := lock.New(lockstore.New(db), zap.NewNop(), 15*time.Second)

	release, err := l.Acquire(ctx, lock.MatchingLockID)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// Held lock surfaces as retryable contention.
	if _, err := l.Acquire(ctx, lock.MatchingLockID); apperr.KindOf(err) != apperr.ResourceExhausted {
		t.Fatalf("expected resource-exhausted while held, got %v", err)
	}

	release()

	release2, err := l.Acquire(ctx, lock.MatchingLockID)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	release2()
}

func TestAcquire_IndependentLockIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	l := lock.New(lockstore.New(db), zap.NewNop(), 15*time.Second)

	releaseA, err := l.Acquire(ctx, "lock-a")
	if err != nil {
		t.Fatalf("Acquire lock-a: %v", err)
	}
	defer releaseA()

	releaseB, err := l.Acquire(ctx, "lock-b")
	if err != nil {
		t.Fatalf("Acquire lock-b: %v", err)
	}
	defer releaseB()
}

func TestAcquire_ExpiredHolderReclaimed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := lockstore.New(db)
	short := lock.New(store, zap.NewNop(), 50*time.Millisecond)
	normal := lock.New(store, zap.NewNop(), 15*time.Second)

	// The short holder never releases, simulating a crash.
	if _, err := short.Acquire(ctx, lock.MatchingLockID); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	release, err := normal.Acquire(ctx, lock.MatchingLockID)
	if err != nil {
		t.Fatalf("expected reclaim after TTL, got %v", err)
	}
	release()
}
