// Package extract implements the deterministic half of the hybrid pipeline:
// OCR text normalization, the per-field pattern cascades, the tri-state
// confidence classifier, the cross-field disambiguator and date
// normalization. Everything in this package is a pure function of its input
// plus the injected catalog, so concurrent runs on different inputs need no
// coordination.
package extract

import (
	"regexp"
	"strconv"

	"github.com/medishare/medlabel/internal/catalog"
	"github.com/medishare/medlabel/internal/entity"
)

// Extractor runs the rule cascades against cleaned OCR text.
type Extractor struct {
	cat *catalog.Catalog

	nameRules  ruleSet
	batchRules ruleSet
	mfgRules   ruleSet
	expRules   ruleSet
}

// NewExtractor builds an extractor around the given catalog. A nil catalog
// falls back to the production default.
func NewExtractor(cat *catalog.Catalog) *Extractor {
	if cat == nil {
		cat = catalog.Default()
	}
	e := &Extractor{cat: cat}
	e.nameRules = buildNameRules(cat)
	e.batchRules = batchRules
	e.mfgRules = mfgRules
	e.expRules = expRules
	return e
}

// Extract produces a best-effort value per field. Same text in, same five
// fields out, run any number of times.
func (e *Extractor) Extract(text string) entity.Record {
	rec := entity.Record{
		MedicineName:      e.extractName(text),
		BatchNumber:       e.batchRules.apply(text),
		ManufacturingDate: e.mfgRules.apply(text),
		ExpiryDate:        e.expRules.apply(text),
		Ingredients:       e.extractIngredients(text),
		Quantity:          extractQuantity(text),
	}
	return rec
}

var reQuantity = regexp.MustCompile(`(?i)(\d+)\s*(?:tablets?|capsules?|TAB)`)

func extractQuantity(text string) int {
	m := reQuantity.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
