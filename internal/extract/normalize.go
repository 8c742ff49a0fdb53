package extract

import (
	"regexp"
	"strings"

	"github.com/medishare/medlabel/internal/catalog"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses noisy whitespace and fixes known OCR misreads so the
// pattern cascades see a predictable shape. Conservative: keeps line breaks;
// collapses >2 newlines into a single blank line. The caller preserves the
// untouched text separately as the record's RawText.
//
// Normalize is idempotent: normalizing already-normalized text is a no-op.
func Normalize(s string, cat *catalog.Catalog) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	if cat != nil {
		s = cat.FixConfusions(s)
	}
	return strings.TrimSpace(s)
}
