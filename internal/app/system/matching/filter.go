// internal/app/system/matching/filter.go
package matching

import "github.com/chikahq/partnerhub/internal/domain/models"

// FilterCandidates narrows candidates for a requester by descending
// specificity:
//
//	tier 1: shares ≥1 concern tag and the same career bucket
//	tier 2: shares ≥1 concern tag
//	tier 3: same career bucket
//	tier 4: everyone
//
// The first tier holding at least two candidates wins. When no tier reaches
// two the full list is returned as-is and the caller decides whether a match
// is still possible. Strict filtering on a small pool would starve matching,
// so precision degrades instead of failing.
//
// Candidate order is preserved within each tier, which keeps downstream
// ranking deterministic.
func FilterCandidates(requester *models.PoolEntry, candidates []*models.PoolEntry) []*models.PoolEntry {
	var tier1, tier2, tier3 []*models.PoolEntry

	for _, c := range candidates {
		shared := requester.SharesConcern(c)
		sameBucket := c.CareerBucket == requester.CareerBucket
		if shared && sameBucket {
			tier1 = append(tier1, c)
		}
		if shared {
			tier2 = append(tier2, c)
		}
		if sameBucket {
			tier3 = append(tier3, c)
		}
	}

	for _, tier := range [][]*models.PoolEntry{tier1, tier2, tier3} {
		if len(tier) >= 2 {
			return tier
		}
	}
	return candidates
}
