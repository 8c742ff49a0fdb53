package constants

// Field is the canonical name of an extractable medicine field.
type Field string

// Stable values (these exact strings appear in LLM prompts and responses).
const (
	FieldMedicineName      Field = "medicineName"
	FieldBatchNumber       Field = "batchNumber"
	FieldManufacturingDate Field = "manufacturingDate"
	FieldExpiryDate        Field = "expiryDate"
	FieldIngredients       Field = "ingredients"
)

var allFields = []Field{
	FieldMedicineName,
	FieldBatchNumber,
	FieldManufacturingDate,
	FieldExpiryDate,
	FieldIngredients,
}

// AllFields returns the five extractable fields in display order.
func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// UncertainMarker is a reserved sentinel some upstream heuristics emit inside
// a field payload. It is only ever read (to classify a field as low
// confidence); this codebase never writes it.
const UncertainMarker = "uncertain"
