package anonymize

import (
	"regexp"
	"strings"
)

// highRiskKeywords are the stems that raise a text's risk score on substring
// containment. Each counts once regardless of occurrence count.
var highRiskKeywords = []string{
	"売上", "利益", "顧客", "契約", "解約", "買収",
	"提携", "訴訟", "人事", "給与", "機密", "社外秘",
}

var (
	riskAmountPattern  = regexp.MustCompile(`\d{4,}万円|\d+億円`)
	riskPercentPattern = regexp.MustCompile(`\d{1,3}(?:\.\d+)?%`)
	riskDatePattern    = regexp.MustCompile(`\d{4}年\d{1,2}月\d{1,2}日`)
	quotedSpanPattern  = regexp.MustCompile(`「[^」]+」`)
)

// DetermineLevel computes the risk level of a text from keyword hits, numeric
// density, and proper-noun density. It always scores the text as given;
// callers audit the original, pre-redaction content.
func DetermineLevel(text string) Level {
	score := 0

	for _, kw := range highRiskKeywords {
		if strings.Contains(text, kw) {
			score += 10
		}
	}

	if riskAmountPattern.MatchString(text) {
		score += 20
	}
	if riskPercentPattern.MatchString(text) {
		score += 10
	}
	if riskDatePattern.MatchString(text) {
		score += 5
	}

	score += 5 * len(quotedSpanPattern.FindAllStringIndex(text, -1))

	switch {
	case score >= 50:
		return LevelHigh
	case score >= 20:
		return LevelMedium
	default:
		return LevelLow
	}
}
