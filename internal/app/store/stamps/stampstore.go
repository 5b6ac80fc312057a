// internal/app/store/stamps/stampstore.go
package stampstore

import (
	"context"
	"fmt"
	"time"

	"github.com/chikahq/partnerhub/internal/app/system/txn"
	"github.com/chikahq/partnerhub/internal/app/system/weekkey"
	"github.com/chikahq/partnerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	client *mongo.Client
	days   *mongo.Collection
	weeks  *mongo.Collection
}

func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client: client,
		days:   db.Collection("daily_logs"),
		weeks:  db.Collection("weekly_stamps"),
	}
}

func dayDocID(groupID, dayKey string) string   { return groupID + "_" + dayKey }
func weekDocID(groupID, weekKey string) string { return groupID + "_" + weekKey }

// ReportResult describes the day's state after one activity report.
type ReportResult struct {
	MeetsCondition bool
	StampFilled    bool
	JustFilled     bool
	FilledCount    int
}

// ReportActivity records that uid performed one activity kind for the group
// today, and fills the day's stamp the first time the group-level condition
// becomes true. The read-modify-write of the daily log and the weekly
// recount run inside one transaction keyed by (group, week, day) so
// concurrent reports from several members cannot lose updates.
//
// The weekly filled count is recomputed by scanning all seven day slots,
// never incremented, so duplicate and out-of-order reports cannot drift it.
func (s *Store) ReportActivity(ctx context.Context, groupID, uid, kind string, at time.Time) (ReportResult, error) {
	field, err := uidsFieldFor(kind)
	if err != nil {
		return ReportResult{}, err
	}

	dayKey := weekkey.DayKey(at)
	wk := weekkey.ForTime(at)
	dayIdx := weekkey.DayIndex(at)

	var result ReportResult
	err = txn.WithTransaction(ctx, s.client, func(tc context.Context) error {
		now := time.Now().UTC()

		// Upsert today's log with this report.
		upOpts := options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After)
		var day models.DailyLog
		err := s.days.FindOneAndUpdate(tc,
			bson.M{"_id": dayDocID(groupID, dayKey)},
			bson.M{
				"$addToSet": bson.M{field: uid},
				"$set":      bson.M{"updated_at": now},
				"$setOnInsert": bson.M{
					"group_id":     groupID,
					"week_key":     wk,
					"day_key":      dayKey,
					"stamp_filled": false,
				},
			},
			upOpts,
		).Decode(&day)
		if err != nil {
			return err
		}

		result.MeetsCondition = day.MeetsCondition()
		result.StampFilled = day.StampFilled

		// Fill exactly once, on the first unmet→met transition.
		if !day.StampFilled && result.MeetsCondition {
			_, err = s.days.UpdateByID(tc, day.ID, bson.M{
				"$set": bson.M{
					"stamp_filled": true,
					"filled_at":    now,
					"updated_at":   now,
				},
			})
			if err != nil {
				return err
			}
			result.StampFilled = true
			result.JustFilled = true

			if err := s.fillWeekDay(tc, groupID, wk, dayIdx, now); err != nil {
				return err
			}
		}

		// Report the week's current count either way.
		var week models.WeeklyStamp
		err = s.weeks.FindOne(tc, bson.M{"_id": weekDocID(groupID, wk)}).Decode(&week)
		if err != nil && err != mongo.ErrNoDocuments {
			return err
		}
		week.RecountFilled()
		result.FilledCount = week.FilledCount
		return nil
	})
	if err != nil {
		return ReportResult{}, err
	}
	return result, nil
}

// fillWeekDay marks one day slot on the weekly record and recounts.
func (s *Store) fillWeekDay(ctx context.Context, groupID, wk string, dayIdx int, now time.Time) error {
	id := weekDocID(groupID, wk)
	upOpts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var week models.WeeklyStamp
	err := s.weeks.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{
				fmt.Sprintf("filled_days.%d", dayIdx): true,
				"updated_at":                          now,
			},
			"$setOnInsert": bson.M{
				"group_id": groupID,
				"week_key": wk,
			},
		},
		upOpts,
	).Decode(&week)
	if err != nil {
		return err
	}

	week.RecountFilled()
	_, err = s.weeks.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"filled_count": week.FilledCount},
	})
	return err
}

// GetWeek loads a group's weekly record; a zero record when none exists yet.
func (s *Store) GetWeek(ctx context.Context, groupID, wk string) (models.WeeklyStamp, error) {
	var week models.WeeklyStamp
	err := s.weeks.FindOne(ctx, bson.M{"_id": weekDocID(groupID, wk)}).Decode(&week)
	if err == mongo.ErrNoDocuments {
		return models.WeeklyStamp{
			ID:         weekDocID(groupID, wk),
			GroupID:    groupID,
			WeekKey:    wk,
			FilledDays: map[string]bool{},
		}, nil
	}
	return week, err
}

// GetDay loads a group's daily log; a zero record when none exists yet.
func (s *Store) GetDay(ctx context.Context, groupID string, at time.Time) (models.DailyLog, error) {
	dayKey := weekkey.DayKey(at)
	var day models.DailyLog
	err := s.days.FindOne(ctx, bson.M{"_id": dayDocID(groupID, dayKey)}).Decode(&day)
	if err == mongo.ErrNoDocuments {
		return models.DailyLog{
			ID:      dayDocID(groupID, dayKey),
			GroupID: groupID,
			WeekKey: weekkey.ForTime(at),
			DayKey:  dayKey,
		}, nil
	}
	return day, err
}

func uidsFieldFor(kind string) (string, error) {
	switch kind {
	case models.ActivityGoalCheck:
		return "goal_check_uids", nil
	case models.ActivityPollVote:
		return "poll_vote_uids", nil
	case models.ActivitySentenceWrite:
		return "sentence_write_uids", nil
	case models.ActivitySentenceReaction:
		return "sentence_reaction_uids", nil
	default:
		return "", fmt.Errorf("unknown activity kind %q", kind)
	}
}
