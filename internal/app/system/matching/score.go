// internal/app/system/matching/score.go

// Package matching implements the compatibility scoring model and the tiered
// candidate filter used by both the interactive and the weekly matching paths.
package matching

import (
	"github.com/chikahq/partnerhub/internal/app/system/career"
	"github.com/chikahq/partnerhub/internal/domain/models"
)

// Preference slot weights: priority1 counts three times as much as priority3.
var slotWeights = [3]int{3, 2, 1}

// Score evaluates candidate b against user a's preferences. The result is
// directional: a scored against b with a's preferences generally differs from
// b scored against a with b's. Scoring never fails; profiles without stored
// preferences are evaluated with the default set.
func Score(a, b *models.UserProfile) int {
	prefs := a.EffectivePreferences()
	slots := [3]models.PreferenceItem{prefs.Priority1, prefs.Priority2, prefs.Priority3}

	total := 0
	for i, pref := range slots {
		total += scoreSlot(a, b, pref, slotWeights[i])
	}
	return total
}

func scoreSlot(a, b *models.UserProfile, pref models.PreferenceItem, weight int) int {
	switch pref.Type {
	case "region":
		// Region comparison stays at administrative-area granularity.
		// Finer geolocation is never stored or scored.
		switch {
		case pref.Value == "nearby" && a.Region == b.Region:
			return 10 * weight
		case pref.Value == "far" && a.Region != b.Region:
			return 10 * weight
		case pref.Value == "any":
			return 5 * weight
		}
	case "career":
		switch {
		case pref.Value == "similar" && a.CareerBucket == b.CareerBucket:
			return 10 * weight
		case pref.Value == "senior" && career.BucketRank(b.CareerBucket) > career.BucketRank(a.CareerBucket):
			return 10 * weight
		case pref.Value == "any":
			return 5 * weight
		}
	case "tags":
		switch pref.Value {
		case "similar":
			return 5 * weight * commonConcerns(a.MainConcerns, b.MainConcerns)
		case "any":
			return 5 * weight
		}
	}
	return 0
}

func commonConcerns(a, b []string) int {
	n := 0
	for _, ta := range a {
		for _, tb := range b {
			if ta == tb {
				n++
				break
			}
		}
	}
	return n
}

// PairScore averages the two directional scores of a pair.
func PairScore(a, b *models.UserProfile) float64 {
	return float64(Score(a, b)+Score(b, a)) / 2
}

// TrioScore averages all six directional scores among three members.
func TrioScore(a, b, c *models.UserProfile) float64 {
	sum := Score(a, b) + Score(b, a) +
		Score(b, c) + Score(c, b) +
		Score(a, c) + Score(c, a)
	return float64(sum) / 6
}
