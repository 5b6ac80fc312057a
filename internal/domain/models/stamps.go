// internal/domain/models/stamps.go
package models

import "time"

// Activity kinds reported against a group's daily log.
const (
	ActivityGoalCheck        = "goal_check"
	ActivityPollVote         = "poll_vote"
	ActivitySentenceWrite    = "sentence_write"
	ActivitySentenceReaction = "sentence_reaction"
)

// ActivityKinds lists every valid activity kind.
var ActivityKinds = []string{
	ActivityGoalCheck,
	ActivityPollVote,
	ActivitySentenceWrite,
	ActivitySentenceReaction,
}

// DailyLog tracks who reported each activity kind for one group on one day.
// Keyed by groupID + "_" + dayKey (dayKey is YYYY-MM-DD in Asia/Seoul).
//
// The stamp fills the first time the day meets the group-level condition
// (goal_check or sentence_write reported by anyone) AND (poll_vote or
// sentence_reaction reported by anyone); once filled it stays filled.
type DailyLog struct {
	ID      string `bson:"_id" json:"id"`
	GroupID string `bson:"group_id" json:"group_id"`
	WeekKey string `bson:"week_key" json:"week_key"`
	DayKey  string `bson:"day_key" json:"day_key"`

	GoalCheckUids        []string `bson:"goal_check_uids,omitempty" json:"goal_check_uids,omitempty"`
	PollVoteUids         []string `bson:"poll_vote_uids,omitempty" json:"poll_vote_uids,omitempty"`
	SentenceWriteUids    []string `bson:"sentence_write_uids,omitempty" json:"sentence_write_uids,omitempty"`
	SentenceReactionUids []string `bson:"sentence_reaction_uids,omitempty" json:"sentence_reaction_uids,omitempty"`

	StampFilled bool       `bson:"stamp_filled" json:"stamp_filled"`
	FilledAt    *time.Time `bson:"filled_at,omitempty" json:"filled_at,omitempty"`

	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MeetsCondition evaluates the group-level OR/AND stamp condition.
func (d *DailyLog) MeetsCondition() bool {
	initiated := len(d.GoalCheckUids) > 0 || len(d.SentenceWriteUids) > 0
	responded := len(d.PollVoteUids) > 0 || len(d.SentenceReactionUids) > 0
	return initiated && responded
}

// WeeklyStamp aggregates a group's filled days for one week.
// Keyed by groupID + "_" + weekKey. FilledCount is always recomputed from
// FilledDays, never incremented, so duplicate or out-of-order reports
// cannot drift it.
type WeeklyStamp struct {
	ID      string `bson:"_id" json:"id"`
	GroupID string `bson:"group_id" json:"group_id"`
	WeekKey string `bson:"week_key" json:"week_key"`

	// FilledDays maps day index 0..6 (Monday-start) to filled.
	FilledDays  map[string]bool `bson:"filled_days" json:"filled_days"`
	FilledCount int             `bson:"filled_count" json:"filled_count"`

	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RecountFilled recomputes FilledCount by scanning all seven day slots.
func (w *WeeklyStamp) RecountFilled() {
	n := 0
	for _, filled := range w.FilledDays {
		if filled {
			n++
		}
	}
	w.FilledCount = n
}
