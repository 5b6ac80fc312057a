// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensurePool(ctx, db); err != nil {
		problems = append(problems, "partner_pool: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "partner_groups: "+err.Error())
	}
	if err := ensureContinuationPairs(ctx, db); err != nil {
		problems = append(problems, "continuation_pairs: "+err.Error())
	}
	if err := ensureStamps(ctx, db); err != nil {
		problems = append(problems, "weekly_stamps: "+err.Error())
	}
	if err := ensureDailyLogs(ctx, db); err != nil {
		problems = append(problems, "daily_logs: "+err.Error())
	}
	if err := ensureGrowthEvents(ctx, db); err != nil {
		problems = append(problems, "growth_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) && (desiredName == "" || ex.Name == desiredName) {
				continue // already in the desired shape
			}
			// Name or options mismatch: drop and recreate under the desired spec.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isOptionsConflictErr(err) {
				// Raced with another instance creating the same keys; treat
				// the surviving index as good enough.
				zap.L().Info("reusing existing index after conflict",
					zap.String("collection", coll.Name()),
					zap.String("keys", desiredSig))
				continue
			}
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
				continue
			}
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Weekly eligibility scan: active users plus paused users who opted
		// into the next cycle.
		{
			Keys: bson.D{
				{Key: "partner_status", Value: 1},
				{Key: "will_match_next_week", Value: 1},
			},
			Options: options.Index().SetName("idx_users_status_willmatch"),
		},
		// Group membership back-reference, used when dissolving groups.
		{
			Keys:    bson.D{{Key: "partner_group_id", Value: 1}},
			Options: options.Index().SetName("idx_users_group"),
		},
		// Case-folded nickname lookups.
		{
			Keys:    bson.D{{Key: "nickname_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_nickname_ci"),
		},
	})
}

func ensurePool(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("partner_pool")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Waiting-line reads: oldest waiting entries first.
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("idx_pool_status_created"),
		},
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("partner_groups")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Expiry sweep: active groups past their end time.
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "ends_at", Value: 1},
			},
			Options: options.Index().SetName("idx_groups_status_ends"),
		},
		// Supplementation sweep: active groups flagged for a third member.
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "needs_supplementation", Value: 1},
			},
			Options: options.Index().SetName("idx_groups_status_supplement"),
		},
		{
			Keys:    bson.D{{Key: "week_key", Value: 1}},
			Options: options.Index().SetName("idx_groups_week"),
		},
	})
}

func ensureContinuationPairs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("continuation_pairs")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "used_for_matching", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("idx_pairs_unused_created"),
		},
	})
}

func ensureStamps(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("weekly_stamps")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "group_id", Value: 1},
				{Key: "week_key", Value: 1},
			},
			Options: options.Index().SetName("idx_stamps_group_week"),
		},
	})
}

func ensureDailyLogs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("daily_logs")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "group_id", Value: 1},
				{Key: "day_key", Value: 1},
			},
			Options: options.Index().SetName("idx_daily_group_day"),
		},
	})
}

func ensureGrowthEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("growth_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_growth_user_created"),
		},
	})
}
