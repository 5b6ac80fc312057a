// internal/app/system/lock/lock.go

// Package lock provides the TTL-bound advisory lock that serializes the
// interactive matching critical section (read waiting pool → pick candidates
// → mutate pool and create group) across concurrent requests.
//
// The TTL bounds worst-case unavailability after a crashed holder; it is not
// renewed mid-operation. The critical section must therefore finish well
// under the TTL — a section that cannot is a correctness bug, not a reason
// to raise the TTL. The rare post-TTL double run is fenced by the pool
// re-verification inside the group-creation transaction, which fails closed
// when pool state already moved.
package lock

import (
	"context"
	"errors"
	"time"

	lockstore "github.com/chikahq/partnerhub/internal/app/store/locks"
	"github.com/chikahq/partnerhub/internal/app/system/apperr"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MatchingLockID is the singleton lock guarding the global waiting pool.
const MatchingLockID = "partner_matching"

// DefaultTTL bounds how long a crashed holder can block everyone else.
const DefaultTTL = 15 * time.Second

// Lock acquires and releases one named global lock.
type Lock struct {
	store *lockstore.Store
	log   *zap.Logger
	ttl   time.Duration
}

func New(store *lockstore.Store, logger *zap.Logger, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Lock{store: store, log: logger, ttl: ttl}
}

// Acquire takes the lock with a fresh owner token and returns a release
// function. The release function is safe to call on every path (defer it):
// it only deletes the record while this owner still holds it.
//
// A held lock surfaces as a resource-exhausted error: matching is in
// progress elsewhere and the caller should retry shortly.
func (l *Lock) Acquire(ctx context.Context, lockID string) (release func(), err error) {
	owner := uuid.NewString()

	if err := l.store.TryAcquire(ctx, lockID, owner, l.ttl); err != nil {
		if errors.Is(err, lockstore.ErrHeld) {
			return nil, apperr.Wrap(apperr.ResourceExhausted,
				"matching in progress, retry shortly", err)
		}
		return nil, err
	}

	l.log.Debug("lock acquired",
		zap.String("lock_id", lockID),
		zap.String("owner", owner),
		zap.Duration("ttl", l.ttl))

	return func() {
		// Release must not inherit a canceled request context.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.store.Release(rctx, lockID, owner); err != nil {
			l.log.Error("lock release failed; record will expire by TTL",
				zap.String("lock_id", lockID),
				zap.String("owner", owner),
				zap.Error(err))
		}
	}, nil
}
