package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Manufacturing date cascade. Captured values are trimmed but NOT
// year-expanded here; ExpandYear runs as the pipeline's last stage.
var mfgRules = ruleSet{
	{re: regexp.MustCompile(`(?i)MFG\.?\s*(\d{2}/\d{4})`), group: 1},
	{re: regexp.MustCompile(`(?i)MFG\.?\s*([A-Z]{3}\.?\s*\d{2})`), group: 1},
	{re: regexp.MustCompile(`(?i)Mfg\.?(?:Date)?:?\s*(\d{2}[-./]\d{2}[-./]\d{4})`), group: 1},
	{re: regexp.MustCompile(`(?i)Manufacturing\s*Date:?\s*(\d{2}[-./]\d{2}[-./]\d{4})`), group: 1},
	{re: regexp.MustCompile(`(?i)MFG\.?\s*([A-Z]{3}[-./]\d{4})`), group: 1},
	{re: regexp.MustCompile(`Mfg(?:\s*Date)?:?\s*([A-Z][a-z]{2}[\s.]?\d{2,4})`), group: 1},
}

// Expiry date cascade, mirroring the manufacturing forms.
var expRules = ruleSet{
	{re: regexp.MustCompile(`(?i)EXP\.?\s*(\d{2}/\d{4})`), group: 1},
	{re: regexp.MustCompile(`(?i)EXP\.?\s*([A-Z]{3}\.?\s*\d{2})`), group: 1},
	{re: regexp.MustCompile(`(?i)Exp\.?(?:Date)?:?\s*(\d{2}[-./]\d{2}[-./]\d{4})`), group: 1},
	{re: regexp.MustCompile(`(?i)Expiry\s*Date:?\s*(\d{2}[-./]\d{2}[-./]\d{4})`), group: 1},
	{re: regexp.MustCompile(`(?i)EXP\.?\s*([A-Z]{3}[-./]\d{4})`), group: 1},
	{re: regexp.MustCompile(`Exp(?:\s*Date)?:?\s*([A-Z][a-z]{2}[\s.]?\d{2,4})`), group: 1},
}

var (
	reMonDotYY  = regexp.MustCompile(`(?i)\b([A-Z]{3})\.\s*(\d{2})\b`)
	reMonYY     = regexp.MustCompile(`(?i)\b([A-Z]{3})(\d{2})\b`)
	reNumSlash2 = regexp.MustCompile(`\b(\d{2})/(\d{2})\b`)
)

// ExpandYear rewrites abbreviated two-digit years to full years:
// "AUG.21" -> "AUG 2021", "AUG21" -> "AUG 2021", "07/24" -> "07/2024".
// Values that already carry a four-digit year pass through unchanged.
func ExpandYear(s string) string {
	if s == "" {
		return s
	}
	if reMonDotYY.MatchString(s) {
		return reMonDotYY.ReplaceAllString(s, "$1 20$2")
	}
	if reMonYY.MatchString(s) {
		return reMonYY.ReplaceAllString(s, "$1 20$2")
	}
	if reNumSlash2.MatchString(s) {
		return reNumSlash2.ReplaceAllString(s, "$1/20$2")
	}
	return s
}

var expiryLayouts = []string{"Jan 2006", "Jan. 2006", "01/2006", "Jan-2006", "02-01-2006", "02/01/2006", "02.01.2006"}

// ParseExpiry turns a normalized expiry string into the first day of its
// calendar month. ok is false when no recognized layout applied.
func ParseExpiry(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// month names come out of OCR fully upper-cased; time.Parse wants "Jul"
	cased := s
	if len(cased) >= 3 {
		cased = strings.ToUpper(cased[:1]) + strings.ToLower(cased[1:])
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, cased); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// TimeUntilExpiry reports the whole-month distance from now to the expiry
// date as "N month(s) left", or "EXPIRED" when the month has passed. ok is
// false when the expiry string could not be parsed; the derived field is then
// simply omitted.
func TimeUntilExpiry(expiry string, now time.Time) (string, bool) {
	exp, ok := ParseExpiry(expiry)
	if !ok {
		return "", false
	}
	months := (exp.Year()-now.Year())*12 + int(exp.Month()) - int(now.Month())
	if months <= 0 {
		return "EXPIRED", true
	}
	plural := "s"
	if months == 1 {
		plural = ""
	}
	return fmt.Sprintf("%d month%s left", months, plural), true
}
