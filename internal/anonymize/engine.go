package anonymize

import (
	"strings"
	"time"

	"github.com/ykamio/contentops/internal/logger"
	"go.uber.org/zap"
)

// Engine applies confidential-record purging and the standing redaction rules
// to free-form text. It holds no mutable state after construction and is safe
// for concurrent use.
type Engine struct {
	rules  []Rule
	logger *logger.Logger
	now    func() time.Time
}

// New creates an anonymization engine.
func New(log *logger.Logger) *Engine {
	e := &Engine{
		rules:  defaultRules(),
		logger: log,
		now:    time.Now,
	}

	log.Info("Anonymization engine initialized",
		zap.Int("rules", len(e.rules)),
	)

	return e
}

// Anonymize rewrites sensitive content into safe generic placeholders.
//
// The stage order is fixed and load-bearing: confidential-record purging runs
// before the standing rules, numeric obscuring before date generalization.
// Callers must not invoke the stages individually.
func (e *Engine) Anonymize(content string, records []ConfidentialRecord) string {
	out := e.purgeRecords(content, records)

	for _, rule := range e.rules {
		out = rule.Replace.apply(rule.Pattern, out)
	}

	out = ObscureNumbers(out)
	out = e.GeneralizeDates(out)

	if out != content {
		e.logger.Debug("Content anonymized",
			zap.Int("input_len", len(content)),
			zap.Int("output_len", len(out)),
			zap.Int("records", len(records)),
		)
	}

	return out
}

// purgeRecords replaces every verbatim occurrence of a redaction-eligible
// record title with a label derived from its category. Records are applied in
// the given order; matching is exact-substring and case-sensitive.
func (e *Engine) purgeRecords(content string, records []ConfidentialRecord) string {
	out := content
	for _, rec := range records {
		if !rec.IsConfidential || rec.IsPublic || rec.Title == "" {
			continue
		}

		label, ok := categoryLabels[rec.Category]
		if !ok {
			label = fallbackLabel
		}
		out = strings.ReplaceAll(out, rec.Title, label)
	}
	return out
}

// Rules returns the standing rule table in application order.
func (e *Engine) Rules() []Rule {
	return e.rules
}
