package extract

import (
	"strings"

	"github.com/medishare/medlabel/constants"
	"github.com/medishare/medlabel/internal/entity"
)

// Confidence is the per-field extraction verdict. An explicit tri-state
// replaces the old convention of embedding an "uncertain" marker inside the
// field payload, which made "the text literally says uncertain" and "the
// extractor is unsure" indistinguishable.
type Confidence int8

const (
	// Certain: the cascade produced a value it stands behind.
	Certain Confidence = iota
	// Absent: no rule matched; the field is empty.
	Absent
	// LowConfidence: a value exists but carries the legacy uncertainty
	// marker emitted by an upstream heuristic.
	LowConfidence
)

func (c Confidence) String() string {
	switch c {
	case Certain:
		return "certain"
	case Absent:
		return "absent"
	case LowConfidence:
		return "low-confidence"
	}
	return "unknown"
}

// Classify grades each of the five fields.
func Classify(rec entity.Record) map[constants.Field]Confidence {
	out := make(map[constants.Field]Confidence, 5)
	for _, f := range constants.AllFields() {
		out[f] = classifyValue(fieldValue(rec, f))
	}
	return out
}

// UncertainFields returns the fields eligible for LLM-assisted re-extraction,
// in canonical field order. An empty result means the rule extractor's output
// stands as-is.
func UncertainFields(rec entity.Record) []constants.Field {
	var out []constants.Field
	for _, f := range constants.AllFields() {
		if classifyValue(fieldValue(rec, f)) != Certain {
			out = append(out, f)
		}
	}
	return out
}

func classifyValue(v string) Confidence {
	if strings.TrimSpace(v) == "" {
		return Absent
	}
	if strings.Contains(v, constants.UncertainMarker) {
		return LowConfidence
	}
	return Certain
}

func fieldValue(rec entity.Record, f constants.Field) string {
	switch f {
	case constants.FieldMedicineName:
		return rec.MedicineName
	case constants.FieldBatchNumber:
		return rec.BatchNumber
	case constants.FieldManufacturingDate:
		return rec.ManufacturingDate
	case constants.FieldExpiryDate:
		return rec.ExpiryDate
	case constants.FieldIngredients:
		return rec.Ingredients
	}
	return ""
}

// SetField writes a value into the record by field name. Used by the LLM
// merge step, which must only ever touch fields in the uncertain set.
func SetField(rec *entity.Record, f constants.Field, v string) {
	switch f {
	case constants.FieldMedicineName:
		rec.MedicineName = v
	case constants.FieldBatchNumber:
		rec.BatchNumber = v
	case constants.FieldManufacturingDate:
		rec.ManufacturingDate = v
	case constants.FieldExpiryDate:
		rec.ExpiryDate = v
	case constants.FieldIngredients:
		rec.Ingredients = v
	}
}
