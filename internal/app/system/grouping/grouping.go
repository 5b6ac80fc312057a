// internal/app/system/grouping/grouping.go

// Package grouping holds the combinatorial selection used by the weekly
// matching pass: enumerate every candidate trio (or pair), sort by averaged
// compatibility score, then greedily keep combinations whose members are all
// still unused.
//
// Greedy-by-global-score is a maximal matching under a fixed ordering, not a
// true assignment optimum. That tradeoff is deliberate: determinism and O(n³)
// tractability matter more than squeezing out the last few points at the
// expected pool sizes. The caller caps the candidate list before handing it
// here, which bounds enumeration cost on unexpectedly large pools.
package grouping

import (
	"sort"

	"github.com/chikahq/partnerhub/internal/app/system/matching"
	"github.com/chikahq/partnerhub/internal/domain/models"
)

type scored struct {
	members []*models.UserProfile
	score   float64
}

// BestTrios returns up to maxGroups non-overlapping trios in descending
// score order. With fewer than three users it returns nothing.
func BestTrios(users []*models.UserProfile, maxGroups int) [][]*models.UserProfile {
	if len(users) < 3 {
		return nil
	}

	combos := make([]scored, 0, len(users)*(len(users)-1)*(len(users)-2)/6)
	for i := 0; i < len(users)-2; i++ {
		for j := i + 1; j < len(users)-1; j++ {
			for k := j + 1; k < len(users); k++ {
				combos = append(combos, scored{
					members: []*models.UserProfile{users[i], users[j], users[k]},
					score:   matching.TrioScore(users[i], users[j], users[k]),
				})
			}
		}
	}
	return selectDisjoint(combos, maxGroups)
}

// BestPairs returns up to maxGroups non-overlapping pairs in descending
// score order.
func BestPairs(users []*models.UserProfile, maxGroups int) [][]*models.UserProfile {
	if len(users) < 2 {
		return nil
	}

	combos := make([]scored, 0, len(users)*(len(users)-1)/2)
	for i := 0; i < len(users)-1; i++ {
		for j := i + 1; j < len(users); j++ {
			combos = append(combos, scored{
				members: []*models.UserProfile{users[i], users[j]},
				score:   matching.PairScore(users[i], users[j]),
			})
		}
	}
	return selectDisjoint(combos, maxGroups)
}

// BestThird returns the candidate that scores best against both members of
// an existing pair, averaging each member's directional score toward the
// candidate. Returns nil when candidates is empty.
func BestThird(a, b *models.UserProfile, candidates []*models.UserProfile) *models.UserProfile {
	var best *models.UserProfile
	bestScore := -1.0
	for _, c := range candidates {
		if c.UID == a.UID || c.UID == b.UID {
			continue
		}
		score := (float64(matching.Score(a, c)) + float64(matching.Score(b, c))) / 2
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

// selectDisjoint keeps combinations greedily by descending score, skipping
// any whose member was already taken. The sort is stable so equal-score
// combinations keep enumeration order and the result stays deterministic.
func selectDisjoint(combos []scored, maxGroups int) [][]*models.UserProfile {
	sort.SliceStable(combos, func(i, j int) bool {
		return combos[i].score > combos[j].score
	})

	used := make(map[string]bool)
	var selected [][]*models.UserProfile

	for _, combo := range combos {
		conflict := false
		for _, m := range combo.members {
			if used[m.UID] {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		selected = append(selected, combo.members)
		for _, m := range combo.members {
			used[m.UID] = true
		}
		if maxGroups > 0 && len(selected) >= maxGroups {
			break
		}
	}
	return selected
}
