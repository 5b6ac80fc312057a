// internal/app/system/partner/interactive.go
package partner

import (
	"context"
	"errors"
	"sort"
	"time"

	poolstore "github.com/chikahq/partnerhub/internal/app/store/pool"
	userstore "github.com/chikahq/partnerhub/internal/app/store/users"
	"github.com/chikahq/partnerhub/internal/app/system/apperr"
	"github.com/chikahq/partnerhub/internal/app/system/lock"
	"github.com/chikahq/partnerhub/internal/app/system/matching"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.uber.org/zap"
)

// Outcome statuses of a matching request. These are the only two terminal
// states: a caller observing "waiting" can retry later with no risk of
// duplicate membership.
const (
	OutcomeMatched = "matched"
	OutcomeWaiting = "waiting"
)

// MatchOutcome is the determinate result of one interactive request.
type MatchOutcome struct {
	Status  string `json:"status"`
	GroupID string `json:"group_id,omitempty"`
	Message string `json:"message"`
}

// RequestMatching serves one user's on-demand "find a group" request.
//
// The global lock serializes the read-pool→pick→mutate sequence across
// concurrent requests; the pool re-verification inside the group-creation
// transaction fences the rare double-run after a TTL-reclaimed lock. Every
// failure path either mutates nothing or leaves the requester as a plain
// waiting pool entry.
func (s *Service) RequestMatching(ctx context.Context, uid string) (MatchOutcome, error) {
	now := time.Now().UTC()

	// Profile must exist and carry the fields matching needs.
	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return MatchOutcome{}, apperr.New(apperr.NotFound, "user profile not found")
		}
		return MatchOutcome{}, err
	}
	if msg, ok := missingProfileField(&user); !ok {
		return MatchOutcome{}, apperr.New(apperr.FailedPrecondition, msg)
	}

	// Idempotency: a consumed pool entry or a live group reference means
	// the user is already placed; report it without taking the lock.
	if entry, err := s.pool.GetByUID(ctx, uid); err == nil &&
		entry.Status == models.PoolStatusMatched && entry.MatchedGroupID != "" {
		return MatchOutcome{
			Status:  OutcomeMatched,
			GroupID: entry.MatchedGroupID,
			Message: "you already have an active partner group",
		}, nil
	}
	if user.PartnerGroupID != "" {
		if user.HasActiveGroup(now) {
			if _, err := s.groups.GetByHexID(ctx, user.PartnerGroupID); err == nil {
				return MatchOutcome{
					Status:  OutcomeMatched,
					GroupID: user.PartnerGroupID,
					Message: "you already have an active partner group",
				}, nil
			}
		}
		// Stale or broken reference: clear it and keep matching.
		if err := s.users.ClearGroupRef(ctx, uid, user.PartnerGroupID); err != nil {
			return MatchOutcome{}, err
		}
	}

	// Join the pool first so a failed attempt still leaves the user
	// queryable as waiting.
	if err := s.pool.Upsert(ctx, models.PoolEntry{
		UID:           uid,
		Region:        user.Region,
		CareerBucket:  user.CareerBucket,
		WorkplaceType: user.WorkplaceType,
		MainConcerns:  user.MainConcerns,
	}); err != nil {
		return MatchOutcome{}, err
	}

	release, err := s.lock.Acquire(ctx, lock.MatchingLockID)
	if err != nil {
		return MatchOutcome{}, err
	}
	defer release()

	waiting, err := s.pool.ListWaiting(ctx, uid, s.cfg.PoolReadLimit)
	if err != nil {
		return MatchOutcome{}, err
	}

	requesterEntry := &models.PoolEntry{
		UID:           uid,
		Region:        user.Region,
		CareerBucket:  user.CareerBucket,
		WorkplaceType: user.WorkplaceType,
		MainConcerns:  user.MainConcerns,
	}
	candidates := matching.FilterCandidates(requesterEntry, waiting)
	if len(candidates) < 2 {
		s.log.Info("matching request queued",
			zap.String("uid", uid),
			zap.Int("pool_size", len(waiting)))
		return MatchOutcome{
			Status:  OutcomeWaiting,
			Message: "not enough partners yet; we will let you know soon",
		}, nil
	}

	picked := rankCandidates(requesterEntry, candidates)[:2]

	members := []models.UserProfile{user}
	for _, p := range picked {
		candidate, err := s.users.GetByUID(ctx, p.UID)
		if err != nil {
			// A pool entry without a profile should not exist; treat the
			// attempt as lost contention rather than failing hard.
			return MatchOutcome{}, apperr.Wrap(apperr.Aborted,
				"a selected partner became unavailable, please retry", err)
		}
		members = append(members, candidate)
	}

	group, err := s.createGroup(ctx, members, groupMeta{}, true)
	if err != nil {
		if errors.Is(err, poolstore.ErrNotWaiting) {
			return MatchOutcome{}, apperr.Wrap(apperr.Aborted,
				"a selected partner was just matched elsewhere, please retry", err)
		}
		return MatchOutcome{}, err
	}

	return MatchOutcome{
		Status:  OutcomeMatched,
		GroupID: group.ID.Hex(),
		Message: "we found your partners",
	}, nil
}

// rankCandidates orders the filtered set by interactive affinity: same
// region weighs 1, same workplace type 0.2. The sort is stable, so ties
// keep filter order — which is pool insertion order — and stay
// deterministic.
func rankCandidates(requester *models.PoolEntry, candidates []*models.PoolEntry) []*models.PoolEntry {
	ranked := make([]*models.PoolEntry, len(candidates))
	copy(ranked, candidates)
	affinity := func(c *models.PoolEntry) float64 {
		score := 0.0
		if c.Region == requester.Region {
			score += 1
		}
		if c.WorkplaceType != "" && c.WorkplaceType == requester.WorkplaceType {
			score += 0.2
		}
		return score
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return affinity(ranked[i]) > affinity(ranked[j])
	})
	return ranked
}

// missingProfileField names the first required field the profile lacks.
func missingProfileField(u *models.UserProfile) (string, bool) {
	switch {
	case u.Nickname == "":
		return "profile is missing a nickname", false
	case u.Region == "":
		return "profile is missing a region", false
	case u.CareerBucket == "":
		return "profile is missing a career bucket", false
	case len(u.MainConcerns) == 0:
		return "profile is missing main concerns", false
	}
	return "", true
}
