package match

import (
	"testing"

	"github.com/medishare/medlabel/internal/common"
	"github.com/medishare/medlabel/internal/entity"
)

func newTestMatcher() *Matcher {
	return NewMatcher(common.MatchConfig{MinSimilarity: 70, MaxSimilarity: 80})
}

func TestSimilarityIdentical(t *testing.T) {
	m := newTestMatcher()
	if got := m.Similarity("Nimesulide BP 100 mg, Paracetamol IP 325 mg", "Nimesulide BP 100 mg, Paracetamol IP 325 mg"); got != 100 {
		t.Errorf("Similarity = %d, want 100", got)
	}
}

func TestSimilaritySubstringContainment(t *testing.T) {
	m := newTestMatcher()
	if got := m.Similarity("Paracetamol IP 500 mg", "paracetamol"); got != 100 {
		t.Errorf("Similarity = %d, want 100 via containment", got)
	}
}

func TestSimilarityPartialOverlap(t *testing.T) {
	m := newTestMatcher()
	// 1 shared of union 3 -> 33
	got := m.Similarity("Nimesulide, Paracetamol", "Paracetamol, Caffeine")
	if got != 33 {
		t.Errorf("Similarity = %d, want 33", got)
	}
}

func TestSimilarityDisjointAndEmpty(t *testing.T) {
	m := newTestMatcher()
	if got := m.Similarity("Itraconazole", "Roxithromycin"); got != 0 {
		t.Errorf("disjoint Similarity = %d, want 0", got)
	}
	if got := m.Similarity("", "Paracetamol"); got != 0 {
		t.Errorf("empty Similarity = %d, want 0", got)
	}
}

func strp(s string) *string { return &s }

func TestFindSimilarBandAndOrder(t *testing.T) {
	m := newTestMatcher()
	target := &entity.DonatedMedicine{ID: 1, Ingredients: strp("Nimesulide, Paracetamol, Caffeine, Phenylephrine, Chlorpheniramine")}
	pool := []*entity.DonatedMedicine{
		{ID: 1, Ingredients: strp("Nimesulide, Paracetamol, Caffeine, Phenylephrine, Chlorpheniramine")}, // self, skipped
		{ID: 2, Ingredients: strp("Nimesulide, Paracetamol, Caffeine, Phenylephrine")},                   // 4/5 = 80
		{ID: 3, Ingredients: strp("Nimesulide, Paracetamol, Caffeine, Phenylephrine, Dextromethorphan")}, // 4/6 = 66
		{ID: 4, Ingredients: strp("Nimesulide, Paracetamol, Caffeine, Phenylephrine, Chlorpheniramine")}, // 100, above band
		{ID: 5, Ingredients: nil}, // no data, skipped
	}
	got := m.FindSimilar(target, pool)
	if len(got) != 1 {
		t.Fatalf("FindSimilar returned %d matches, want 1", len(got))
	}
	if got[0].Medicine.ID != 2 || got[0].Similarity != 80 {
		t.Errorf("match = id %d sim %d, want id 2 sim 80", got[0].Medicine.ID, got[0].Similarity)
	}
}

func TestFindSimilarSortsDescending(t *testing.T) {
	m := NewMatcher(common.MatchConfig{MinSimilarity: 0, MaxSimilarity: 100})
	target := &entity.DonatedMedicine{ID: 10, Ingredients: strp("Nimesulide, Paracetamol")}
	pool := []*entity.DonatedMedicine{
		{ID: 11, Ingredients: strp("Paracetamol, Caffeine")},    // 33
		{ID: 12, Ingredients: strp("Nimesulide, Paracetamol")},  // 100
		{ID: 13, Ingredients: strp("Aspirin")},                  // 0
	}
	got := m.FindSimilar(target, pool)
	if len(got) != 3 {
		t.Fatalf("matches = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Similarity > got[i-1].Similarity {
			t.Errorf("not sorted descending: %v", got)
		}
	}
}
