package extract

import "regexp"

// Batch number cascade. The B.00/B.OO variants cover OCR misreads of "B.NO";
// CP/GP are manufacturer code prefixes seen on Cipla/Glenmark strips.
var batchRules = ruleSet{
	{re: regexp.MustCompile(`(?i)B\.NO\.([A-Z0-9]{2,}(?:/[A-Z0-9]+)?)`), group: 1},
	{re: regexp.MustCompile(`(?i)B\.(?:No|00|OO)\s*([A-Z0-9]{2,})`), group: 1},
	{re: regexp.MustCompile(`(?i)(?:CP|GP)(\d{5,})`), group: 1},
	{re: regexp.MustCompile(`(?i)Batch\s*No\.?\s*([A-Z0-9]{2,}(?:/[A-Z0-9]+)?)`), group: 1},
	{re: regexp.MustCompile(`(?i)LOT\s*(?:NO\.?)?\s*([A-Z0-9]{2,}(?:/[A-Z0-9]+)?)`), group: 1},
	{re: regexp.MustCompile(`(?i)Batch:?\s*([A-Z0-9]{2,})`), group: 1},
}
