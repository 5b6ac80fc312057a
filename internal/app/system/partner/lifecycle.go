// internal/app/system/partner/lifecycle.go
package partner

import (
	"context"
	"errors"
	"time"

	groupstore "github.com/chikahq/partnerhub/internal/app/store/groups"
	userstore "github.com/chikahq/partnerhub/internal/app/store/users"
	"github.com/chikahq/partnerhub/internal/app/system/apperr"
	"github.com/chikahq/partnerhub/internal/app/system/txn"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.uber.org/zap"
)

// ExpireResult summarizes one expiry sweep.
type ExpireResult struct {
	Expired           int
	ContinuationPairs int
}

// ExpireGroups is the scheduled expiry sweep, run just before the weekly
// matching pass. For every active group past its end time it extracts at
// most one mutual continuation pair, then expires the group and clears each
// member's group reference. The continue-with selections themselves are
// preserved: the pair extraction is the only consumer and has already run.
func (s *Service) ExpireGroups(ctx context.Context) (ExpireResult, error) {
	var result ExpireResult
	now := time.Now().UTC()

	groups, err := s.groups.ListExpiredActive(ctx, now)
	if err != nil {
		return result, err
	}

	for _, g := range groups {
		if uidA, uidB, ok := s.mutualContinuePair(ctx, &g); ok {
			if _, err := s.pairs.Create(ctx, uidA, uidB, g.WeekNumber+1); err != nil {
				s.log.Error("continuation pair create failed",
					zap.String("group_id", g.ID.Hex()), zap.Error(err))
			} else {
				result.ContinuationPairs++
				s.log.Info("continuation pair recorded",
					zap.String("group_id", g.ID.Hex()),
					zap.String("uid_a", uidA),
					zap.String("uid_b", uidB),
					zap.Int("week_number", g.WeekNumber+1))
			}
		}

		// Expire the group and release its members atomically.
		g := g
		err := txn.WithTransaction(ctx, s.client, func(tc context.Context) error {
			if err := s.groups.MarkExpired(tc, g.ID, now); err != nil {
				return err
			}
			for _, uid := range g.MemberUids {
				if err := s.users.ClearGroupRef(tc, uid, g.ID.Hex()); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			s.log.Error("group expiry failed",
				zap.String("group_id", g.ID.Hex()), zap.Error(err))
			continue
		}
		result.Expired++
	}

	s.log.Info("expiry sweep finished",
		zap.Int("expired", result.Expired),
		zap.Int("continuation_pairs", result.ContinuationPairs))
	return result, nil
}

// mutualContinuePair finds the group's first mutual continue-with selection
// (A picked B and B picked A), restricted to group members. At most one
// pair per group is honored.
func (s *Service) mutualContinuePair(ctx context.Context, g *models.PartnerGroup) (string, string, bool) {
	selections := make(map[string]string, len(g.MemberUids))
	for _, uid := range g.MemberUids {
		u, err := s.users.GetByUID(ctx, uid)
		if err != nil {
			continue
		}
		if u.ContinueWith != "" && g.IsMember(u.ContinueWith) {
			selections[uid] = u.ContinueWith
		}
	}
	for _, uid := range g.MemberUids {
		chosen, ok := selections[uid]
		if ok && selections[chosen] == uid {
			return uid, chosen, true
		}
	}
	return "", "", false
}

// SetContinueWith records which current group member the caller wants to
// keep after expiry. The choice must point at a fellow member.
func (s *Service) SetContinueWith(ctx context.Context, uid, partnerUID string) error {
	if partnerUID == uid {
		return apperr.New(apperr.FailedPrecondition, "cannot continue with yourself")
	}

	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user profile not found")
		}
		return err
	}
	if user.PartnerGroupID == "" {
		return apperr.New(apperr.FailedPrecondition, "no partner group to continue from")
	}

	g, err := s.groups.GetByHexID(ctx, user.PartnerGroupID)
	if err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			return apperr.New(apperr.NotFound, "partner group not found")
		}
		return err
	}
	if !g.IsMember(partnerUID) {
		return apperr.New(apperr.FailedPrecondition, "chosen partner is not in your group")
	}

	return s.users.SetContinueWith(ctx, uid, partnerUID)
}

// LeaveGroup removes the caller from their active group and triggers the
// membership-shrink handling: one member left means an immediate
// supplementation attempt, two means a deferred flag.
func (s *Service) LeaveGroup(ctx context.Context, uid string) error {
	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user profile not found")
		}
		return err
	}
	if user.PartnerGroupID == "" {
		return apperr.New(apperr.FailedPrecondition, "not in a partner group")
	}

	g, err := s.groups.GetByHexID(ctx, user.PartnerGroupID)
	if err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			// Broken reference; clearing it is the whole fix.
			return s.users.ClearGroupRef(ctx, uid, user.PartnerGroupID)
		}
		return err
	}

	var after models.PartnerGroup
	err = txn.WithTransaction(ctx, s.client, func(tc context.Context) error {
		g2, err := s.groups.RemoveActiveMember(tc, g.ID, uid)
		if err != nil {
			return err
		}
		after = g2
		return s.users.ClearGroupRef(tc, uid, g.ID.Hex())
	})
	if err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			// Group already expired; just drop the reference.
			return s.users.ClearGroupRef(ctx, uid, g.ID.Hex())
		}
		return err
	}

	s.log.Info("member left group",
		zap.String("uid", uid),
		zap.String("group_id", g.ID.Hex()),
		zap.Int("active_members", after.ActiveCount()))

	return s.NoteMembershipChange(ctx, &after)
}
