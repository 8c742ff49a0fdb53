// Package match scores donated medicines against each other by active
// ingredient overlap. The product rule is a band, not a floor: near-identical
// listings (above the band) are presumed duplicates of the same donation and
// excluded, as are weak overlaps below it.
package match

import (
	"sort"
	"strings"

	"github.com/medishare/medlabel/internal/common"
	"github.com/medishare/medlabel/internal/entity"
)

// Match is one candidate inside the similarity band.
type Match struct {
	Medicine   *entity.DonatedMedicine `json:"medicine"`
	Similarity int                     `json:"similarity"`
}

type Matcher struct {
	min int
	max int
}

func NewMatcher(cfg common.MatchConfig) *Matcher {
	min, max := cfg.MinSimilarity, cfg.MaxSimilarity
	if min <= 0 && max <= 0 {
		min, max = 70, 80
	}
	return &Matcher{min: min, max: max}
}

// Similarity returns the percentage ingredient overlap between two
// comma-separated ingredient lists. An ingredient counts as shared when
// either side's token contains the other, so "Paracetamol IP 500 mg" and
// "Paracetamol" still match.
func (m *Matcher) Similarity(a, b string) int {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0
	used := make([]bool, len(tb))
	for _, x := range ta {
		for j, y := range tb {
			if used[j] {
				continue
			}
			if strings.Contains(x, y) || strings.Contains(y, x) {
				shared++
				used[j] = true
				break
			}
		}
	}

	union := len(ta) + len(tb) - shared
	if union == 0 {
		return 0
	}
	return shared * 100 / union
}

// InBand reports whether a score falls inside the configured band,
// inclusive.
func (m *Matcher) InBand(score int) bool {
	return score >= m.min && score <= m.max
}

// FindSimilar scores the target's ingredients against every candidate and
// returns those inside the band, highest similarity first. Candidates with
// no ingredient data and the target's own row are skipped.
func (m *Matcher) FindSimilar(target *entity.DonatedMedicine, pool []*entity.DonatedMedicine) []Match {
	if target == nil || target.Ingredients == nil {
		return nil
	}
	var out []Match
	for _, cand := range pool {
		if cand == nil || cand.Ingredients == nil || cand.ID == target.ID {
			continue
		}
		score := m.Similarity(*target.Ingredients, *cand.Ingredients)
		if m.InBand(score) {
			out = append(out, Match{Medicine: cand, Similarity: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	return out
}

// tokenize splits a comma-separated ingredient list into case-folded,
// deduplicated tokens.
func tokenize(s string) []string {
	parts := strings.Split(s, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.ToLower(strings.TrimSpace(p))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
