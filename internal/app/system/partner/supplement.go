// internal/app/system/partner/supplement.go
package partner

import (
	"context"
	"time"

	"github.com/chikahq/partnerhub/internal/app/system/txn"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.uber.org/zap"
)

// NoteMembershipChange reacts to a shrink of a group's active membership
// while the group is still active. Urgency is proportional to how broken
// the group is: one member left is a near-dead group and gets a synchronous
// supplementation attempt; two members still function and merely get the
// deferred flag for the next sweep.
func (s *Service) NoteMembershipChange(ctx context.Context, g *models.PartnerGroup) error {
	if g.Status != models.GroupStatusActive {
		return nil
	}

	switch {
	case g.ActiveCount() <= 1:
		s.log.Warn("group critically short, supplementing immediately",
			zap.String("group_id", g.ID.Hex()),
			zap.Int("active_members", g.ActiveCount()))
		return s.supplementGroup(ctx, g)
	case g.ActiveCount() == 2:
		return s.groups.SetNeedsSupplementation(ctx, g.ID, true)
	default:
		return nil
	}
}

// SupplementResult summarizes one deferred supplementation sweep.
type SupplementResult struct {
	Supplemented int
	Cleared      int
	StillWaiting int
}

// RunSupplementation is the scheduled deferred sweep (several times a day):
// every active group flagged needs_supplementation and under three active
// members gets one available matchable user; a flagged group already at
// three just has its flag cleared; with nobody available the flag stays for
// the next run.
func (s *Service) RunSupplementation(ctx context.Context) (SupplementResult, error) {
	var result SupplementResult

	groups, err := s.groups.ListNeedingSupplementation(ctx)
	if err != nil {
		return result, err
	}

	for _, g := range groups {
		if g.ActiveCount() >= models.GroupMaxMembers {
			if err := s.groups.SetNeedsSupplementation(ctx, g.ID, false); err != nil {
				s.log.Error("flag clear failed",
					zap.String("group_id", g.ID.Hex()), zap.Error(err))
				continue
			}
			result.Cleared++
			continue
		}

		g := g
		if err := s.supplementGroup(ctx, &g); err != nil {
			s.log.Error("supplementation failed",
				zap.String("group_id", g.ID.Hex()), zap.Error(err))
			continue
		}
		// supplementGroup leaves the flag set when nobody was available.
		fresh, err := s.groups.GetByID(ctx, g.ID)
		if err == nil && fresh.NeedsSupplementation {
			result.StillWaiting++
		} else {
			result.Supplemented++
		}
	}

	s.log.Info("supplementation sweep finished",
		zap.Int("supplemented", result.Supplemented),
		zap.Int("cleared", result.Cleared),
		zap.Int("still_waiting", result.StillWaiting))
	return result, nil
}

// supplementGroup adds the first available matchable user to the group.
// With no one available the group keeps (or gains) its flag so the next
// sweep retries.
func (s *Service) supplementGroup(ctx context.Context, g *models.PartnerGroup) error {
	now := time.Now().UTC()

	candidates, err := s.users.ListMatchable(ctx, now)
	if err != nil {
		return err
	}

	var pick *models.UserProfile
	for i := range candidates {
		if !g.IsMember(candidates[i].UID) {
			pick = &candidates[i]
			break
		}
	}
	if pick == nil {
		s.log.Info("no matchable user available for supplementation",
			zap.String("group_id", g.ID.Hex()))
		return s.groups.SetNeedsSupplementation(ctx, g.ID, true)
	}

	return s.AddMemberToGroup(ctx, g, pick)
}

// AddMemberToGroup appends one member to an active group: membership lists
// and meta on the group, the member's group reference pointed at the
// group's existing end time (supplementation never extends a group's
// life), and their pool entry removed — all in one transaction. Adding a
// current member is a no-op.
func (s *Service) AddMemberToGroup(ctx context.Context, g *models.PartnerGroup, u *models.UserProfile) error {
	if g.IsMember(u.UID) {
		return nil
	}

	now := time.Now().UTC()
	meta := memberMetaFor(u, now, true)

	err := txn.WithTransaction(ctx, s.client, func(tc context.Context) error {
		if err := s.groups.AddMember(tc, g.ID, u.UID, meta); err != nil {
			return err
		}
		if err := s.users.SetGroupRef(tc, u.UID, g.ID.Hex(), g.EndsAt); err != nil {
			return err
		}
		return s.pool.Delete(tc, u.UID)
	})
	if err != nil {
		return err
	}

	s.log.Info("member supplemented into group",
		zap.String("group_id", g.ID.Hex()),
		zap.String("uid", u.UID))
	return nil
}
