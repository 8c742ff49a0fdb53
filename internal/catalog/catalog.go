// Package catalog holds the curated knowledge the extraction pipeline leans
// on: known medicine signatures, location indicators that regularly leak into
// OCR output from manufacturer addresses, and common OCR misreads. The
// catalog is immutable once built and is injected into the extractor and the
// LLM bridge at construction time, so tests can substitute synthetic entries.
package catalog

import (
	"regexp"
	"strings"
)

// Signature links detection patterns and indicator keywords to a canonical
// medicine display name.
type Signature struct {
	// Name is the branded name, e.g. "PARACIP-500".
	Name string
	// Generic is the generic-name suffix, e.g. "Paracetamol Tablet 500 mg".
	Generic string
	// Patterns are tried against the full text in order; any full match
	// short-circuits generic name extraction.
	Patterns []*regexp.Regexp
	// Indicators are plain substrings counted by the candidate detector that
	// biases the LLM prompt.
	Indicators []string
	// Ingredient and Strength gate the known-composition fallback: both must
	// co-occur in the text for Composition to apply.
	Ingredient string
	// CoIngredient is set for combination drugs (both ingredients must
	// appear).
	CoIngredient string
	Strength     string
	// Composition is the known active-ingredient line for this medicine.
	Composition string
	// ConfusionNote describes the known OCR failure mode, embedded in the
	// LLM prompt guidance.
	ConfusionNote string
}

// Display returns the canonical "Brand (Generic)" form.
func (s Signature) Display() string {
	if s.Generic == "" {
		return s.Name
	}
	return s.Name + " (" + s.Generic + ")"
}

// Confusion is a known OCR misread and its correction. The misread is
// matched on a word boundary, so a correction never rewrites text that is
// already in the corrected form ("ARACIP" inside "PARACIP" does not match).
type Confusion struct {
	Wrong, Right string
}

type confusionRule struct {
	re    *regexp.Regexp
	right string
}

// Catalog is the full static knowledge set.
type Catalog struct {
	signatures []Signature
	locations  []*regexp.Regexp
	confusions []confusionRule
}

// New builds a catalog from explicit tables. The slices are copied; callers
// cannot mutate the catalog afterwards.
func New(sigs []Signature, locations []*regexp.Regexp, confusions []Confusion) *Catalog {
	c := &Catalog{
		signatures: make([]Signature, len(sigs)),
		locations:  make([]*regexp.Regexp, len(locations)),
		confusions: make([]confusionRule, 0, len(confusions)),
	}
	copy(c.signatures, sigs)
	copy(c.locations, locations)
	for _, sub := range confusions {
		c.confusions = append(c.confusions, confusionRule{
			re:    regexp.MustCompile(`\b` + regexp.QuoteMeta(sub.Wrong)),
			right: sub.Right,
		})
	}
	return c
}

// Signatures returns the catalog entries in priority order.
func (c *Catalog) Signatures() []Signature {
	out := make([]Signature, len(c.signatures))
	copy(out, c.signatures)
	return out
}

// ByName looks a signature up by its branded name.
func (c *Catalog) ByName(name string) (Signature, bool) {
	for _, s := range c.signatures {
		if s.Name == name {
			return s, true
		}
	}
	return Signature{}, false
}

// MatchName returns the display name of the first signature whose pattern
// matches the text. Catalog order encodes precedence.
func (c *Catalog) MatchName(text string) (string, bool) {
	for _, s := range c.signatures {
		for _, p := range s.Patterns {
			if p.MatchString(text) {
				return s.Display(), true
			}
		}
	}
	return "", false
}

// IsLocation reports whether a candidate medicine name is actually a location
// string (city, area, directional, or a 6-digit pincode).
func (c *Catalog) IsLocation(name string) bool {
	if name == "" {
		return false
	}
	for _, p := range c.locations {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// FixConfusions applies the known OCR misread substitutions. Idempotent:
// corrected text passes through unchanged.
func (c *Catalog) FixConfusions(s string) string {
	for _, sub := range c.confusions {
		s = sub.re.ReplaceAllString(s, sub.right)
	}
	return s
}

// Candidate is a signature scored by how many of its indicator keywords
// appear in a text.
type Candidate struct {
	Signature Signature
	Matches   int
}

// DetectCandidates scores every signature against the text and returns those
// with at least one indicator hit, most matches first. Ties keep catalog
// order.
func (c *Catalog) DetectCandidates(text string) []Candidate {
	var out []Candidate
	for _, s := range c.signatures {
		n := 0
		for _, ind := range s.Indicators {
			if strings.Contains(text, ind) {
				n++
			}
		}
		if n > 0 {
			out = append(out, Candidate{Signature: s, Matches: n})
		}
	}
	// insertion sort keeps the catalog order stable for equal scores
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Matches > out[j-1].Matches; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
