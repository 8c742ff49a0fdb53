package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/medishare/medlabel/constants"
)

// ExtractJSONObject pulls the first balanced {...} object out of a model
// reply. Small instruction-tuned models routinely wrap the JSON in prose or
// markdown fences; anything outside the braces is ignored.
func ExtractJSONObject(raw []byte) ([]byte, bool) {
	s := string(raw)
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return []byte(s[start : i+1]), true
			}
		}
	}
	return nil, false
}

// SanitizeFields decodes the model's JSON and keeps only requested fields
// with usable string values. Numbers are coerced to strings; null, empty and
// unknown keys are dropped.
func SanitizeFields(doc []byte, fields []constants.Field) (map[constants.Field]string, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	allowed := FieldSet(fields)
	out := make(map[constants.Field]string, len(fields))
	var dropped []string

	for k, v := range m {
		f := constants.Field(k)
		if _, ok := allowed[f]; !ok {
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
				dropped = append(dropped, k+"(empty)")
				continue
			}
			out[f] = s
		case float64:
			out[f] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
		case nil:
			dropped = append(dropped, k+"(null)")
		default:
			dropped = append(dropped, k+"(type)")
		}
	}
	return out, dropped, nil
}

// fieldLinePatterns matches "fieldName: value" style replies, one pattern per
// label field, for models that ignore the JSON instruction entirely.
var fieldLinePatterns = map[constants.Field]*regexp.Regexp{
	constants.FieldMedicineName:      regexp.MustCompile(`(?i)medicine\s*name["']?\s*[:=]\s*["']?([^"'\n,}]+)`),
	constants.FieldBatchNumber:       regexp.MustCompile(`(?i)batch\s*number["']?\s*[:=]\s*["']?([^"'\n,}]+)`),
	constants.FieldManufacturingDate: regexp.MustCompile(`(?i)manufacturing\s*date["']?\s*[:=]\s*["']?([^"'\n,}]+)`),
	constants.FieldExpiryDate:        regexp.MustCompile(`(?i)expiry\s*date["']?\s*[:=]\s*["']?([^"'\n,}]+)`),
	constants.FieldIngredients:       regexp.MustCompile(`(?i)ingredients["']?\s*[:=]\s*["']?([^"'\n}]+)`),
}

// FallbackFieldScan is the last-ditch parse: a per-field line scan over the
// raw reply. Only the requested fields are looked for.
func FallbackFieldScan(raw []byte, fields []constants.Field) map[constants.Field]string {
	text := string(raw)
	out := make(map[constants.Field]string)
	for _, f := range fields {
		p, ok := fieldLinePatterns[f]
		if !ok {
			continue
		}
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := strings.TrimSpace(m[1])
		if v == "" || strings.EqualFold(v, "null") {
			continue
		}
		out[f] = v
	}
	return out
}
