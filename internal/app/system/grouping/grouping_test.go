package grouping

import (
	"testing"

	"github.com/chikahq/partnerhub/internal/domain/models"
)

func user(uid, region, bucket string, concerns ...string) *models.UserProfile {
	return &models.UserProfile{
		UID:          uid,
		Nickname:     uid,
		Region:       region,
		CareerBucket: bucket,
		MainConcerns: concerns,
	}
}

func TestBestTrios_PicksHighestScoringDisjointGroups(t *testing.T) {
	// Three users share bucket and a concern (a strong trio); three others
	// share nothing with anyone.
	users := []*models.UserProfile{
		user("a", "seoul", "3-5", "burnout"),
		user("b", "seoul", "3-5", "burnout"),
		user("c", "seoul", "3-5", "burnout"),
		user("x", "jeju", "0-2", "claims"),
		user("y", "busan", "6+", "patient_care"),
		user("z", "daegu", "0-2", "colleagues"),
	}

	groups := BestTrios(users, 0)
	if len(groups) != 2 {
		t.Fatalf("expected 2 trios from 6 users, got %d", len(groups))
	}

	first := map[string]bool{}
	for _, m := range groups[0] {
		first[m.UID] = true
	}
	if !(first["a"] && first["b"] && first["c"]) {
		t.Errorf("expected the strong trio first, got %v", groups[0])
	}

	// Disjointness.
	seen := map[string]bool{}
	for _, g := range groups {
		for _, m := range g {
			if seen[m.UID] {
				t.Fatalf("user %s appears in two trios", m.UID)
			}
			seen[m.UID] = true
		}
	}
}

func TestBestTrios_TooFewUsers(t *testing.T) {
	if got := BestTrios([]*models.UserProfile{user("a", "seoul", "3-5")}, 0); got != nil {
		t.Errorf("expected nil for <3 users, got %v", got)
	}
}

func TestBestTrios_MaxGroupsCap(t *testing.T) {
	var users []*models.UserProfile
	for _, uid := range []string{"a", "b", "c", "d", "e", "f"} {
		users = append(users, user(uid, "seoul", "3-5", "burnout"))
	}
	if got := BestTrios(users, 1); len(got) != 1 {
		t.Errorf("expected cap of 1 trio, got %d", len(got))
	}
}

func TestBestPairs_LeftoversPairUp(t *testing.T) {
	users := []*models.UserProfile{
		user("a", "seoul", "3-5", "burnout"),
		user("b", "seoul", "3-5", "burnout"),
		user("c", "jeju", "0-2", "claims"),
	}

	pairs := BestPairs(users, 0)
	if len(pairs) != 1 {
		t.Fatalf("expected exactly one pair from 3 users, got %d", len(pairs))
	}
	got := map[string]bool{pairs[0][0].UID: true, pairs[0][1].UID: true}
	if !(got["a"] && got["b"]) {
		t.Errorf("expected the compatible pair (a,b), got %v", got)
	}
}

func TestBestThird_ScoresAgainstBothPairMembers(t *testing.T) {
	a := user("a", "seoul", "3-5", "burnout")
	b := user("b", "seoul", "3-5", "burnout")
	good := user("good", "seoul", "3-5", "burnout")
	bad := user("bad", "jeju", "0-2", "claims")

	got := BestThird(a, b, []*models.UserProfile{bad, good})
	if got == nil || got.UID != "good" {
		t.Errorf("expected best third 'good', got %v", got)
	}
}

func TestBestThird_ExcludesPairMembers(t *testing.T) {
	a := user("a", "seoul", "3-5", "burnout")
	b := user("b", "seoul", "3-5", "burnout")

	if got := BestThird(a, b, []*models.UserProfile{a, b}); got != nil {
		t.Errorf("expected nil when only the pair itself is offered, got %v", got)
	}
}

func TestBestThird_EmptyCandidates(t *testing.T) {
	a := user("a", "seoul", "3-5", "burnout")
	b := user("b", "seoul", "3-5", "burnout")
	if got := BestThird(a, b, nil); got != nil {
		t.Errorf("expected nil for no candidates, got %v", got)
	}
}

func TestBestTrios_Deterministic(t *testing.T) {
	users := []*models.UserProfile{
		user("a", "seoul", "3-5"),
		user("b", "seoul", "3-5"),
		user("c", "seoul", "3-5"),
		user("d", "seoul", "3-5"),
	}
	first := BestTrios(users, 0)
	for i := 0; i < 5; i++ {
		again := BestTrios(users, 0)
		if len(again) != len(first) {
			t.Fatal("selection count changed between runs")
		}
		for gi := range again {
			for mi := range again[gi] {
				if again[gi][mi].UID != first[gi][mi].UID {
					t.Fatal("selection order changed between runs")
				}
			}
		}
	}
}
