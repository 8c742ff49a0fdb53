package catalog

import "regexp"

// Default returns the production catalog. Entry order matters: it is the
// precedence used by direct matching, candidate detection and disambiguation.
func Default() *Catalog {
	return New(defaultSignatures, defaultLocations, defaultConfusions)
}

var defaultSignatures = []Signature{
	{
		Name:    "Itragreat-100",
		Generic: "Itraconazole Capsules IP",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Itragreat[-\s]?100`),
			regexp.MustCompile(`(?i)Itraconazole\s+Capsules\s+IP`),
		},
		Indicators:    []string{"Itraconazole", "Itragreat", "100 mg", "HPMC capsule"},
		Ingredient:    "Itraconazole",
		Strength:      "100",
		Composition:   "Itraconazole Pellets equivalent to Itraconazole IP 100 mg",
		ConfusionNote: "Sometimes misread with 'Not to be sold' as part of the name",
	},
	{
		Name:    "PARACIP-500",
		Generic: "Paracetamol Tablet 500 mg",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)PARACIP[-\s]?500`),
			regexp.MustCompile(`(?i)Paracetamol\s+Tablets?\s+(?:IP|BP|USP)?\s*500\s*mg`),
		},
		Indicators:    []string{"Paracetamol", "PARACIP", "ARACIP", "500 mg"},
		Ingredient:    "Paracetamol",
		Strength:      "500",
		Composition:   "Paracetamol IP 500 mg",
		ConfusionNote: "ARACIP is often an OCR error for PARACIP",
	},
	{
		Name:    "RAXITID-150",
		Generic: "Roxithromycin Tablets IP",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)RAXITID:?\s*150`),
			regexp.MustCompile(`(?i)Roxithromycin\s+Tablets?\s+IP`),
		},
		Indicators:    []string{"Roxithromycin", "RAXITID", "RANBAXY", "150 mg"},
		Ingredient:    "Roxithromycin",
		Strength:      "150",
		Composition:   "Roxithromycin IP 150 mg",
		ConfusionNote: "Location like 'Andheri' or 'Mumbai' might be misidentified as the name",
	},
	{
		Name:    "Nicip Plus",
		Generic: "Nimesulide & Paracetamol Tablets",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Nicip\s*Plus`),
			regexp.MustCompile(`(?i)Nimesulide[\s\S]*?Paracetamol`),
		},
		Indicators:    []string{"Nicip", "Nimesulide", "Paracetamol", "uncoated tablet"},
		Ingredient:    "Nimesulide",
		CoIngredient:  "Paracetamol",
		Strength:      "100",
		Composition:   "Nimesulide BP 100 mg, Paracetamol IP 325 mg",
		ConfusionNote: "'Each uncoated tablet' might be incorrectly identified as the medicine name",
	},
}

// Manufacturer addresses printed on Indian packaging routinely out-score the
// brand name in OCR output, so any candidate matching one of these is
// rejected.
var defaultLocations = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Mumbai|Delhi|Chennai|Kolkata|Hyderabad|Bengaluru|Ahmedabad`),
	regexp.MustCompile(`(?i)Maharashtra|Tamil Nadu|Kerala|Gujarat|Rajasthan|Punjab`),
	regexp.MustCompile(`(?i)Andheri|Bandra|Powai|Malad|Goregaon|Borivali`),
	regexp.MustCompile(`(?i)\b(?:East|West|North|South)\b`),
	regexp.MustCompile(`\d{6}`), // pincode
}

var defaultConfusions = []Confusion{
	{Wrong: "ARACIP", Right: "PARACIP"},
}
