package anonymize

import "regexp"

// Replacement is the strategy applied to text matched by a rule. It is either
// a fixed Literal or a Transform that inspects the matched substring.
type Replacement interface {
	apply(pattern *regexp.Regexp, text string) string
}

// Literal replaces every match with the same fixed string.
type Literal string

func (l Literal) apply(pattern *regexp.Regexp, text string) string {
	return pattern.ReplaceAllLiteralString(text, string(l))
}

// Transform picks the replacement from the matched substring itself.
type Transform func(match string) string

func (t Transform) apply(pattern *regexp.Regexp, text string) string {
	return pattern.ReplaceAllStringFunc(text, t)
}

// Rule pairs a detection pattern with its replacement strategy for one
// sensitive-entity class. Rules are applied in table order and replacement
// text must not re-match other rules' patterns.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace Replacement
}

// ConfidentialRecord is one internal knowledge-base entry available for
// content generation. The engine treats it as read-only input: a record is
// purged from text only when IsConfidential is set and IsPublic is not.
type ConfidentialRecord struct {
	Title          string `json:"title" db:"title"`
	Category       string `json:"category" db:"category"`
	IsConfidential bool   `json:"isConfidential" db:"is_confidential"`
	IsPublic       bool   `json:"isPublic" db:"is_public"`
}

// Level classifies how much sensitive material a text likely contains.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Report summarizes what the standing rules would remove from a text.
type Report struct {
	ChangedCount       int      `json:"changedCount"`
	RemovedInfo        []string `json:"removedInfo"`
	AnonymizationLevel Level    `json:"anonymizationLevel"`
}
