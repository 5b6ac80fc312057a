// internal/app/system/career/career.go

// Package career maps the fine-grained tenure label users pick during
// onboarding onto the coarse bucket matching actually uses.
package career

import "github.com/chikahq/partnerhub/internal/domain/models"

// Tenure labels as stored on the profile.
const (
	GroupStudent   = "student"
	GroupYear1     = "year_1"
	GroupYear2     = "year_2"
	GroupYear3     = "year_3"
	GroupYear4     = "year_4"
	GroupYear5     = "year_5"
	GroupYear6To10 = "year_6_10"
	GroupYear10Up  = "year_10_up"
)

// ValidGroup reports whether the tenure label is one we store.
func ValidGroup(careerGroup string) bool {
	switch careerGroup {
	case GroupStudent, GroupYear1, GroupYear2, GroupYear3, GroupYear4,
		GroupYear5, GroupYear6To10, GroupYear10Up:
		return true
	}
	return false
}

// BucketFor maps a tenure label to its career bucket. Unknown labels fall
// into the senior bucket, matching how the original data model treated
// everything past year five.
func BucketFor(careerGroup string) string {
	switch careerGroup {
	case GroupStudent, GroupYear1, GroupYear2:
		return models.CareerBucket0to2
	case GroupYear3, GroupYear4, GroupYear5:
		return models.CareerBucket3to5
	default:
		return models.CareerBucket6Plus
	}
}

// BucketRank orders buckets on the junior→senior scale for "senior"
// preference comparisons. Unknown buckets rank as most junior.
func BucketRank(bucket string) int {
	switch bucket {
	case models.CareerBucket0to2:
		return 1
	case models.CareerBucket3to5:
		return 2
	case models.CareerBucket6Plus:
		return 3
	default:
		return 1
	}
}
