// internal/app/system/weekkey/weekkey.go

// Package weekkey computes the week and day keys the partner engine uses to
// bucket groups, stamps, and daily logs.
//
// Weeks are anchored to Asia/Seoul, where every matching cycle runs. The week
// number is day-of-year based (ceil((doy+1)/7)), which is what the production
// data was written with; it is deliberately not ISO-8601 week numbering, and
// changing it would orphan existing week-keyed documents.
package weekkey

import (
	"fmt"
	"time"
)

var seoul = mustLoad("Asia/Seoul")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// Fixed offset fallback: KST has no DST.
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// ForTime returns the week key, e.g. "2026-W08", for the given instant.
func ForTime(t time.Time) string {
	kst := t.In(seoul)
	year := kst.Year()
	days := kst.YearDay() - 1
	week := (days+1+6) / 7 // ceil((days+1)/7)
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Current returns the week key for now.
func Current() string {
	return ForTime(time.Now())
}

// DayKey returns the per-day key, e.g. "2026-02-23", for the given instant.
func DayKey(t time.Time) string {
	return t.In(seoul).Format("2006-01-02")
}

// Weekday returns the weekday of the given instant in the matching zone.
func Weekday(t time.Time) time.Weekday {
	return t.In(seoul).Weekday()
}

// DayIndex returns the Monday-start day index 0..6 for the given instant.
func DayIndex(t time.Time) int {
	wd := int(t.In(seoul).Weekday()) // Sunday = 0
	return (wd + 6) % 7
}
