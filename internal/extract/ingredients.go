package extract

import (
	"regexp"
	"strings"
)

var (
	reCompositionLabel = regexp.MustCompile(`(?i)Composition:?\s*`)
	reSectionHeading   = regexp.MustCompile(`(?i)Dosage|Storage|Caution|Direction`)
	reEachContains     = regexp.MustCompile(`(?i)Each\s+(?:tablet|capsule)\s+contains:?\s*`)
	reContains         = regexp.MustCompile(`(?i)Contains:?\s*`)
	reFilmCoatedLabel  = regexp.MustCompile(`(?i)Each\s+film\s+coated\s+tablet\s+contains:?\s*`)

	reNimesulideStrength  = regexp.MustCompile(`(?i)Nimesulide\s+BP\s+.*?\s+(\d+\s*mg)`)
	reParacetamolStrength = regexp.MustCompile(`(?i)Paracetamol\s+[I1]P\s+.*?(\d+\s*m[ga]x?)`)

	reWordBreakComma = regexp.MustCompile(`([a-z])([A-Z])`)
	reAnySpace       = regexp.MustCompile(`\s+`)
)

// sectionAfter returns the text between the end of the first label match and
// the next section heading (or end of text). ok is false when the label is
// absent.
func sectionAfter(text string, label *regexp.Regexp) (string, bool) {
	loc := label.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if end := reSectionHeading.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	return strings.TrimSpace(rest), true
}

// extractIngredients prefers an explicit Composition section, then the
// catalog's known compositions gated on ingredient+strength co-occurrence,
// then generic contains-spans.
func (e *Extractor) extractIngredients(text string) string {
	if span, ok := sectionAfter(text, reCompositionLabel); ok {
		return cleanIngredients(span)
	}

	for _, sig := range e.cat.Signatures() {
		if sig.Ingredient == "" {
			continue
		}
		if sig.CoIngredient != "" {
			// combination drug: both ingredients must appear
			if !strings.Contains(text, sig.Ingredient) || !strings.Contains(text, sig.CoIngredient) {
				continue
			}
			nim := reNimesulideStrength.FindStringSubmatch(text)
			par := reParacetamolStrength.FindStringSubmatch(text)
			if nim != nil && par != nil {
				return cleanIngredients("Nimesulide BP " + nim[1] + ", Paracetamol IP " + par[1])
			}
			return cleanIngredients(sig.Composition)
		}
		if !strings.Contains(text, sig.Ingredient) || !strings.Contains(text, sig.Strength) {
			continue
		}
		// a readable film-coated span beats the canned composition
		if span, ok := sectionAfter(text, reFilmCoatedLabel); ok && strings.Contains(span, sig.Ingredient) {
			return cleanIngredients(span)
		}
		return cleanIngredients(sig.Composition)
	}

	for _, label := range []*regexp.Regexp{reEachContains, reContains} {
		if span, ok := sectionAfter(text, label); ok && span != "" {
			span = reWordBreakComma.ReplaceAllString(span, "$1, $2")
			return cleanIngredients(span)
		}
	}
	return ""
}

// cleanIngredients collapses whitespace and strips newlines.
func cleanIngredients(s string) string {
	return strings.TrimSpace(reAnySpace.ReplaceAllString(s, " "))
}
