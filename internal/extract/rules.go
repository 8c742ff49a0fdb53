package extract

import (
	"regexp"
	"strings"
)

// rule is one step of a field cascade: a pattern plus an optional veto.
// group selects the submatch to capture; 0 takes the whole match.
type rule struct {
	re     *regexp.Regexp
	group  int
	accept func(string) bool
}

// ruleSet is an ordered cascade. Order encodes precedence: specific branded
// forms before generic regexes before fallback heuristics.
type ruleSet []rule

// apply evaluates the cascade as a short-circuiting fold: the first rule
// producing a non-empty, accepted capture wins.
func (rs ruleSet) apply(text string) string {
	for _, r := range rs {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		g := r.group
		if g >= len(m) {
			continue
		}
		v := strings.TrimSpace(m[g])
		if v == "" {
			continue
		}
		if r.accept != nil && !r.accept(v) {
			continue
		}
		return v
	}
	return ""
}
