// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/chikahq/partnerhub/internal/app/system/partner"
	"github.com/chikahq/partnerhub/internal/app/system/weekkey"
	"go.uber.org/zap"
)

// Job is one recurring background task. The runner invokes Run every
// Interval; a returned error is logged and the job keeps its schedule.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// GroupExpiryJob sweeps active groups past their end time, releasing member
// references and extracting continuation pairs between matching passes. The
// weekly job runs its own sweep right before allocating, so a group ending
// inside this job's tick window still feeds pairs into the same cycle.
func GroupExpiryJob(svc *partner.Service, logger *zap.Logger) Job {
	return Job{
		Name:     "group-expiry",
		Interval: 10 * time.Minute,
		Run: func(ctx context.Context) error {
			res, err := svc.ExpireGroups(ctx)
			if err != nil {
				return err
			}
			if res.Expired > 0 {
				logger.Info("expired partner groups",
					zap.Int("expired", res.Expired),
					zap.Int("continuation_pairs", res.ContinuationPairs))
			}
			return nil
		},
	}
}

// WeeklyMatchingJob runs the weekly cycle (expiry sweep, then the whole-pool
// allocation pass) once per week, on Monday in the service's local week. The
// tick interval is hourly and the job gates itself, so a restart mid-Monday
// still runs at most once: the
// pass excludes already-grouped users, which makes a duplicate run across
// processes harmless, just wasteful.
func WeeklyMatchingJob(svc *partner.Service, logger *zap.Logger) Job {
	var lastWeek string
	return Job{
		Name:     "weekly-matching",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			now := time.Now()
			if weekkey.Weekday(now) != time.Monday {
				return nil
			}
			wk := weekkey.ForTime(now)
			if wk == lastWeek {
				return nil
			}
			res, err := svc.RunWeeklyCycle(ctx)
			if err != nil {
				return err
			}
			lastWeek = wk
			logger.Info("weekly matching pass complete",
				zap.String("week", wk),
				zap.Int("continuation_groups", res.ContinuationGroups),
				zap.Int("trio_groups", res.TrioGroups),
				zap.Int("pair_groups", res.PairGroups),
				zap.Int("stragglers", res.Stragglers))
			return nil
		},
	}
}

// SupplementationJob retries deferred supplementation for two-member groups
// that lost a member.
func SupplementationJob(svc *partner.Service, interval time.Duration, logger *zap.Logger) Job {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return Job{
		Name:     "group-supplementation",
		Interval: interval,
		Run: func(ctx context.Context) error {
			res, err := svc.RunSupplementation(ctx)
			if err != nil {
				return err
			}
			if res.Supplemented > 0 || res.Cleared > 0 {
				logger.Info("supplementation sweep complete",
					zap.Int("supplemented", res.Supplemented),
					zap.Int("cleared", res.Cleared),
					zap.Int("still_waiting", res.StillWaiting))
			}
			return nil
		},
	}
}
