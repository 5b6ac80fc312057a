// internal/app/system/partner/service.go

// Package partner is the matching and group-lifecycle engine: the
// interactive "find me a group" flow, the weekly batch allocation, the
// expiry sweep with continuation-pair carry-over, and mid-cycle
// supplementation of shrunken groups.
package partner

import (
	"context"
	"strings"
	"time"

	groupstore "github.com/chikahq/partnerhub/internal/app/store/groups"
	lockstore "github.com/chikahq/partnerhub/internal/app/store/locks"
	pairstore "github.com/chikahq/partnerhub/internal/app/store/pairs"
	poolstore "github.com/chikahq/partnerhub/internal/app/store/pool"
	userstore "github.com/chikahq/partnerhub/internal/app/store/users"
	"github.com/chikahq/partnerhub/internal/app/system/lock"
	"github.com/chikahq/partnerhub/internal/app/system/txn"
	"github.com/chikahq/partnerhub/internal/app/system/weekkey"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config tunes the engine. Zero values fall back to the defaults below.
type Config struct {
	// GroupDuration is how long a group lives after creation.
	GroupDuration time.Duration
	// PoolReadLimit caps how many waiting entries one interactive request
	// considers (oldest first).
	PoolReadLimit int64
	// BatchCandidateCap bounds the trio enumeration of the weekly pass.
	// The enumeration is O(n³) by contract; the cap is the safety valve
	// for unexpectedly large pools.
	BatchCandidateCap int
	// LockTTL bounds the interactive critical section.
	LockTTL time.Duration
}

const (
	defaultGroupDuration     = 7 * 24 * time.Hour
	defaultPoolReadLimit     = 30
	defaultBatchCandidateCap = 200
)

func (c Config) withDefaults() Config {
	if c.GroupDuration <= 0 {
		c.GroupDuration = defaultGroupDuration
	}
	if c.PoolReadLimit <= 0 {
		c.PoolReadLimit = defaultPoolReadLimit
	}
	if c.BatchCandidateCap <= 0 {
		c.BatchCandidateCap = defaultBatchCandidateCap
	}
	if c.LockTTL <= 0 {
		c.LockTTL = lock.DefaultTTL
	}
	return c
}

// Service wires the engine's stores together. Handlers and scheduled jobs
// share one instance; the service itself keeps no request state.
type Service struct {
	client *mongo.Client
	users  *userstore.Store
	pool   *poolstore.Store
	groups *groupstore.Store
	pairs  *pairstore.Store
	lock   *lock.Lock
	log    *zap.Logger
	cfg    Config
}

func NewService(
	client *mongo.Client,
	db *mongo.Database,
	logger *zap.Logger,
	cfg Config,
) *Service {
	cfg = cfg.withDefaults()
	locks := lockstore.New(db)
	return &Service{
		client: client,
		users:  userstore.New(db),
		pool:   poolstore.New(db),
		groups: groupstore.New(db),
		pairs:  pairstore.New(db),
		lock:   lock.New(locks, logger, cfg.LockTTL),
		log:    logger,
		cfg:    cfg,
	}
}

// Users exposes the user store for features that edit profile fields.
func (s *Service) Users() *userstore.Store { return s.users }

// Groups exposes the group store for read-only feature access.
func (s *Service) Groups() *groupstore.Store { return s.groups }

// groupMeta carries optional creation metadata for a new group.
type groupMeta struct {
	isPairContinued      bool
	previousPair         []string
	weekNumber           int
	needsSupplementation bool
}

// createGroup creates a 2-3 person group from member profiles inside one
// transaction: the group document, each member's meta snapshot, each user's
// group reference, and the pool consumption. When requireWaiting is set
// (the interactive path), every member's pool entry must still be waiting
// or the whole transaction aborts — this is the re-verification fence that
// makes a post-TTL lock double-run fail closed.
func (s *Service) createGroup(ctx context.Context, members []models.UserProfile, meta groupMeta, requireWaiting bool) (models.PartnerGroup, error) {
	now := time.Now().UTC()

	g := models.PartnerGroup{
		Status:               models.GroupStatusActive,
		CreatedAt:            now,
		StartedAt:            now,
		EndsAt:               now.Add(s.cfg.GroupDuration),
		WeekKey:              weekkey.ForTime(now),
		WeekNumber:           meta.weekNumber,
		IsPairContinued:      meta.isPairContinued,
		PreviousPair:         meta.previousPair,
		NeedsSupplementation: meta.needsSupplementation,
	}
	for _, m := range members {
		g.MemberUids = append(g.MemberUids, m.UID)
		g.ActiveMemberUids = append(g.ActiveMemberUids, m.UID)
		g.MemberMeta = append(g.MemberMeta, memberMetaFor(&m, now, false))
	}
	g.MainConcern = sharedConcern(members)
	g.RegionMix = mixOf(members, func(u *models.UserProfile) string { return u.Region })
	g.CareerMix = mixOf(members, func(u *models.UserProfile) string { return u.CareerBucket })

	var created models.PartnerGroup
	err := txn.WithTransaction(ctx, s.client, func(tc context.Context) error {
		// Re-verify before any write, so an aborted attempt mutates nothing.
		if requireWaiting {
			for _, m := range members {
				entry, err := s.pool.GetByUID(tc, m.UID)
				if err != nil || entry.Status != models.PoolStatusWaiting {
					return poolstore.ErrNotWaiting
				}
			}
		}

		g2, err := s.groups.Create(tc, g)
		if err != nil {
			return err
		}
		created = g2

		for _, m := range members {
			if err := s.users.SetGroupRef(tc, m.UID, g2.ID.Hex(), g2.EndsAt); err != nil {
				return err
			}
			if requireWaiting {
				if err := s.pool.MarkMatched(tc, m.UID, g2.ID.Hex()); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return models.PartnerGroup{}, err
	}

	// Placement is durable; drop the consumed pool entries. Best effort:
	// a leftover matched entry is harmless and superseded on re-upsert.
	uids := make([]string, len(members))
	for i, m := range members {
		uids[i] = m.UID
	}
	if err := s.pool.DeleteMany(ctx, uids); err != nil {
		s.log.Warn("pool cleanup after group creation failed", zap.Error(err))
	}

	s.log.Info("partner group created",
		zap.String("group_id", created.ID.Hex()),
		zap.Int("members", len(members)),
		zap.Bool("pair_continued", meta.isPairContinued),
		zap.Bool("needs_supplementation", meta.needsSupplementation))
	return created, nil
}

func memberMetaFor(u *models.UserProfile, joinedAt time.Time, supplemented bool) models.MemberMeta {
	meta := models.MemberMeta{
		UID:            u.UID,
		Region:         u.Region,
		CareerBucket:   u.CareerBucket,
		CareerGroup:    u.CareerGroup,
		WorkplaceType:  u.WorkplaceType,
		JoinedAt:       joinedAt,
		IsSupplemented: supplemented,
	}
	if len(u.MainConcerns) > 0 {
		meta.MainConcern = u.MainConcerns[0]
	}
	return meta
}

// sharedConcern picks a concern every member has, if one exists, else the
// first member's first concern. Informational only.
func sharedConcern(members []models.UserProfile) string {
	if len(members) == 0 {
		return ""
	}
	for _, tag := range members[0].MainConcerns {
		shared := true
		for _, m := range members[1:] {
			found := false
			for _, t := range m.MainConcerns {
				if t == tag {
					found = true
					break
				}
			}
			if !found {
				shared = false
				break
			}
		}
		if shared {
			return tag
		}
	}
	if len(members[0].MainConcerns) > 0 {
		return members[0].MainConcerns[0]
	}
	return ""
}

// mixOf summarizes a member attribute as either the common value or "mixed".
func mixOf(members []models.UserProfile, get func(*models.UserProfile) string) string {
	if len(members) == 0 {
		return ""
	}
	first := get(&members[0])
	for i := range members[1:] {
		if get(&members[i+1]) != first {
			values := make([]string, len(members))
			for j := range members {
				values[j] = get(&members[j])
			}
			return "mixed:" + strings.Join(values, ",")
		}
	}
	return first
}
