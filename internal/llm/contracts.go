package llm

import (
	"context"

	"github.com/medishare/medlabel/constants"
	"github.com/medishare/medlabel/internal/catalog"
)

// ExtractRequest asks the model for a subset of label fields. Fields lists
// exactly the fields the rule cascades could not settle; the model is never
// asked about fields already extracted with certainty, and its answers for
// anything else are discarded.
type ExtractRequest struct {
	OCRText string
	Fields  []constants.Field

	// Candidates biases the prompt toward medicines the indicator scan
	// already suspects, most likely first.
	Candidates []catalog.Candidate
}

// FieldExtractor is the interface the pipeline depends on. Implementations
// return the subset of requested fields the model answered, plus the raw
// model output for audit logging.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (map[constants.Field]string, []byte, error)
}
