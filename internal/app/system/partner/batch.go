// internal/app/system/partner/batch.go
package partner

import (
	"context"
	"time"

	"github.com/chikahq/partnerhub/internal/app/system/grouping"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.uber.org/zap"
)

// BatchResult summarizes one weekly allocation pass.
type BatchResult struct {
	ContinuationGroups int
	TrioGroups         int
	PairGroups         int
	Stragglers         int
}

// RunWeeklyCycle runs one full weekly cycle: the expiry sweep first, so
// groups that ended since the last sweep tick release their members and
// record continuation pairs, then the allocation pass that consumes them.
func (s *Service) RunWeeklyCycle(ctx context.Context) (BatchResult, error) {
	if _, err := s.ExpireGroups(ctx); err != nil {
		return BatchResult{}, err
	}
	return s.RunWeeklyMatching(ctx)
}

// RunWeeklyMatching is the scheduled whole-pool allocation pass. It holds no
// lock: the scheduler guarantees a single batch writer per cycle, and each
// group creation is individually transactional.
//
// Order matters: continuation pairs are honored first, then the exhaustive
// trio search, then leftover pairs, and any lone straggler goes back to the
// waiting pool for the next cycle.
func (s *Service) RunWeeklyMatching(ctx context.Context) (BatchResult, error) {
	var result BatchResult
	now := time.Now().UTC()

	eligible, err := s.users.ListMatchable(ctx, now)
	if err != nil {
		return result, err
	}
	byUID := make(map[string]*models.UserProfile, len(eligible))
	for i := range eligible {
		byUID[eligible[i].UID] = &eligible[i]
	}
	placed := make(map[string]bool)

	// 1. Continuation pairs. Each pair is consumed exactly once this cycle,
	// whatever happens: placed as a trio, started as a two-person group
	// waiting for supplementation, or skipped because a member is gone.
	pairs, err := s.pairs.ListUnconsumed(ctx)
	if err != nil {
		return result, err
	}
	for _, pair := range pairs {
		if len(pair.MemberUids) != 2 {
			s.consumePair(ctx, pair)
			continue
		}
		uidA, uidB := pair.MemberUids[0], pair.MemberUids[1]
		if placed[uidA] || placed[uidB] {
			s.consumePair(ctx, pair)
			continue
		}
		userA, okA := byUID[uidA]
		userB, okB := byUID[uidB]
		if !okA || !okB {
			s.log.Info("continuation pair member no longer matchable",
				zap.String("uid_a", uidA), zap.String("uid_b", uidB))
			s.consumePair(ctx, pair)
			continue
		}

		third := grouping.BestThird(userA, userB, remaining(eligible, placed, uidA, uidB))
		meta := groupMeta{
			isPairContinued: true,
			previousPair:    []string{uidA, uidB},
			weekNumber:      pair.WeekNumber,
		}
		members := []models.UserProfile{*userA, *userB}
		if third != nil {
			members = append(members, *third)
		} else {
			meta.needsSupplementation = true
		}

		if _, err := s.createGroup(ctx, members, meta, false); err != nil {
			s.log.Error("continuation group creation failed",
				zap.String("uid_a", uidA), zap.String("uid_b", uidB), zap.Error(err))
			s.consumePair(ctx, pair)
			continue
		}
		for _, m := range members {
			placed[m.UID] = true
		}
		result.ContinuationGroups++
		s.consumePair(ctx, pair)
	}

	// 2. Exhaustive trio search over everyone still unplaced, capped as the
	// pool-size safety valve for the O(n³) enumeration.
	pool := remaining(eligible, placed)
	if len(pool) > s.cfg.BatchCandidateCap {
		s.log.Warn("batch pool exceeds candidate cap",
			zap.Int("pool", len(pool)),
			zap.Int("cap", s.cfg.BatchCandidateCap))
		pool = pool[:s.cfg.BatchCandidateCap]
	}
	for _, trio := range grouping.BestTrios(pool, 0) {
		members := []models.UserProfile{*trio[0], *trio[1], *trio[2]}
		if _, err := s.createGroup(ctx, members, groupMeta{}, false); err != nil {
			s.log.Error("trio group creation failed", zap.Error(err))
			continue
		}
		for _, m := range trio {
			placed[m.UID] = true
		}
		result.TrioGroups++
	}

	// 3. Leftover pairs start at two and get supplemented mid-week.
	for _, pair := range grouping.BestPairs(remaining(eligible, placed), 0) {
		members := []models.UserProfile{*pair[0], *pair[1]}
		meta := groupMeta{needsSupplementation: true}
		if _, err := s.createGroup(ctx, members, meta, false); err != nil {
			s.log.Error("pair group creation failed", zap.Error(err))
			continue
		}
		for _, m := range pair {
			placed[m.UID] = true
		}
		result.PairGroups++
	}

	// 4. Stragglers wait in the pool, not in limbo.
	for _, u := range remaining(eligible, placed) {
		if err := s.pool.Upsert(ctx, models.PoolEntry{
			UID:           u.UID,
			Region:        u.Region,
			CareerBucket:  u.CareerBucket,
			WorkplaceType: u.WorkplaceType,
			MainConcerns:  u.MainConcerns,
		}); err != nil {
			s.log.Error("straggler pool upsert failed",
				zap.String("uid", u.UID), zap.Error(err))
			continue
		}
		result.Stragglers++
	}

	s.log.Info("weekly matching pass finished",
		zap.Int("continuation_groups", result.ContinuationGroups),
		zap.Int("trio_groups", result.TrioGroups),
		zap.Int("pair_groups", result.PairGroups),
		zap.Int("stragglers", result.Stragglers))
	return result, nil
}

// consumePair spends a continuation pair; failures are logged because an
// unconsumed pair would be retried next cycle, which the one-shot contract
// forbids.
func (s *Service) consumePair(ctx context.Context, pair models.ContinuationPair) {
	if err := s.pairs.MarkConsumed(ctx, pair.ID); err != nil {
		s.log.Error("continuation pair consume failed",
			zap.String("pair_id", pair.ID.Hex()), zap.Error(err))
	}
}

// remaining returns pointers to the eligible users not yet placed and not
// in the explicit exclusion list, preserving input order.
func remaining(eligible []models.UserProfile, placed map[string]bool, exclude ...string) []*models.UserProfile {
	skip := make(map[string]bool, len(exclude))
	for _, uid := range exclude {
		skip[uid] = true
	}
	var out []*models.UserProfile
	for i := range eligible {
		uid := eligible[i].UID
		if placed[uid] || skip[uid] {
			continue
		}
		out = append(out, &eligible[i])
	}
	return out
}
