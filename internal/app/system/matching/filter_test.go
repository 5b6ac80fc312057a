package matching

import (
	"testing"

	"github.com/chikahq/partnerhub/internal/domain/models"
)

func entry(uid, bucket string, concerns ...string) *models.PoolEntry {
	return &models.PoolEntry{
		UID:          uid,
		Region:       "seoul",
		CareerBucket: bucket,
		MainConcerns: concerns,
		Status:       models.PoolStatusWaiting,
	}
}

func uids(entries []*models.PoolEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.UID
	}
	return out
}

func TestFilterCandidates_Tier1(t *testing.T) {
	// Requester shares concern A and bucket 3-5 with exactly two candidates;
	// eight others share nothing. Tier 1 returns exactly those two.
	req := entry("req", "3-5", "patient_care", "burnout")
	candidates := []*models.PoolEntry{
		entry("t1a", "3-5", "patient_care"),
		entry("t1b", "3-5", "patient_care"),
	}
	for i := 0; i < 8; i++ {
		candidates = append(candidates, entry(string(rune('a'+i)), "6+", "claims"))
	}

	got := FilterCandidates(req, candidates)
	if len(got) != 2 || got[0].UID != "t1a" || got[1].UID != "t1b" {
		t.Errorf("expected tier1 [t1a t1b], got %v", uids(got))
	}
}

func TestFilterCandidates_FallsBackToTier2(t *testing.T) {
	// Only one candidate matches concern+career; two match concern alone.
	req := entry("req", "3-5", "patient_care")
	candidates := []*models.PoolEntry{
		entry("c1", "3-5", "patient_care"),
		entry("c2", "0-2", "patient_care"),
		entry("c3", "6+", "patient_care"),
		entry("c4", "6+", "claims"),
	}

	got := FilterCandidates(req, candidates)
	want := []string{"c1", "c2", "c3"}
	if len(got) != 3 {
		t.Fatalf("expected tier2 of 3, got %v", uids(got))
	}
	for i, w := range want {
		if got[i].UID != w {
			t.Errorf("tier2[%d] = %s, want %s", i, got[i].UID, w)
		}
	}
}

func TestFilterCandidates_FallsBackToTier3(t *testing.T) {
	req := entry("req", "3-5", "patient_care")
	candidates := []*models.PoolEntry{
		entry("c1", "3-5", "claims"),
		entry("c2", "3-5", "burnout"),
		entry("c3", "6+", "colleagues"),
	}

	got := FilterCandidates(req, candidates)
	if len(got) != 2 || got[0].UID != "c1" || got[1].UID != "c2" {
		t.Errorf("expected tier3 [c1 c2], got %v", uids(got))
	}
}

func TestFilterCandidates_Tier4ReturnsAll(t *testing.T) {
	req := entry("req", "3-5", "patient_care")
	candidates := []*models.PoolEntry{
		entry("c1", "0-2", "claims"),
		entry("c2", "6+", "burnout"),
		entry("c3", "0-2", "colleagues"),
	}

	got := FilterCandidates(req, candidates)
	if len(got) != 3 {
		t.Errorf("expected full list of 3, got %v", uids(got))
	}
}

func TestFilterCandidates_NeverStarvesWhenPoolHasTwo(t *testing.T) {
	// The filter never returns fewer than 2 when the full list has ≥2,
	// even if every specific tier holds at most one candidate.
	req := entry("req", "3-5", "patient_care")
	candidates := []*models.PoolEntry{
		entry("c1", "3-5", "patient_care"), // tier1 of exactly one
		entry("c2", "0-2", "claims"),
	}

	got := FilterCandidates(req, candidates)
	if len(got) != 2 {
		t.Errorf("expected fallback to full list of 2, got %v", uids(got))
	}
}

func TestFilterCandidates_SingleCandidateReturnsAsIs(t *testing.T) {
	req := entry("req", "3-5", "patient_care")
	candidates := []*models.PoolEntry{entry("c1", "0-2", "claims")}

	got := FilterCandidates(req, candidates)
	if len(got) != 1 {
		t.Errorf("expected the lone candidate back, got %v", uids(got))
	}
}
