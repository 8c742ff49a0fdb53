package llm

import (
	"strings"

	"github.com/medishare/medlabel/constants"
)

const maxPromptText = 3000

// BuildSystemPrompt composes the system message: JSON-only contract, the
// exact field subset wanted, and catalog guidance for the candidate
// medicines with their known OCR failure modes.
func BuildSystemPrompt(req ExtractRequest) string {
	names := make([]string, 0, len(req.Fields))
	for _, f := range req.Fields {
		names = append(names, string(f))
	}

	parts := []string{
		"You are a medicine label parser. Return ONLY a JSON object, no prose.",
		"Extract ONLY these fields from the label text: " + strings.Join(names, ", ") + ".",
		"Omit any field you cannot read; never output null or placeholder text.",
	}

	set := FieldSet(req.Fields)

	if _, ok := set[constants.FieldMedicineName]; ok {
		parts = append(parts,
			"The medicineName is a brand or generic drug name, NEVER a city, area, or address fragment.")
		if len(req.Candidates) == 0 {
			parts = append(parts,
				"Look for a branded name (usually capitalized) followed by a generic name and dosage form, e.g. \"BRAND-123 (Generic Name Tablets IP)\" or \"Generic Tablets IP 150 mg\"; dosage forms include Tablets, Capsules, Syrup, Injection.")
		}
	}
	if _, ok := set[constants.FieldBatchNumber]; ok {
		parts = append(parts,
			"The batchNumber follows markers like \"B.NO.\", \"Batch No.\" or \"LOT\" and is an alphanumeric code, e.g. \"CP10964\" or \"10A/X004\".")
	}
	_, wantMfg := set[constants.FieldManufacturingDate]
	_, wantExp := set[constants.FieldExpiryDate]
	if wantMfg || wantExp {
		parts = append(parts,
			"Dates appear as printed, e.g. \"MFG.MM/YYYY\" or \"MFG.MMM.YY\" (\"AUG.21\" means August 2021) and \"EXP.MM/YYYY\" or \"EXP.MMM.YY\" (\"JUL.24\" means July 2024).")
	}
	if _, ok := set[constants.FieldIngredients]; ok {
		parts = append(parts,
			"The ingredients follow sections starting with \"Each tablet contains:\" or \"Composition:\"; give the active ingredient with its strength, e.g. \"Paracetamol IP 500 mg\".")
	}

	if len(req.Candidates) > 0 {
		var b strings.Builder
		b.WriteString("Likely medicines, most likely first: ")
		for i, c := range req.Candidates {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(c.Signature.Display())
			if note := c.Signature.ConfusionNote; note != "" {
				b.WriteString(" (")
				b.WriteString(note)
				b.WriteString(")")
			}
		}
		b.WriteString(".")
		parts = append(parts, b.String())
	}

	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the OCR text, truncated to keep small local
// models inside their context window.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	b.WriteString("Label text:\n")
	text := strings.TrimSpace(req.OCRText)
	if len(text) > maxPromptText {
		b.WriteString(text[:maxPromptText])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n\nReturn ONLY JSON with the requested fields.")
	return b.String()
}

// FieldSet gives O(1) membership checks for the requested subset.
func FieldSet(fields []constants.Field) map[constants.Field]struct{} {
	set := make(map[constants.Field]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
