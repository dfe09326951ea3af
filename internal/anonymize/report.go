package anonymize

import "fmt"

// GenerateReport counts what the standing rules match in the original text
// and pairs the counts with the risk level.
//
// The anonymized argument is part of the call contract but does not influence
// the result: counts and level are derived from the original only. Keep it
// that way unless the intended diff semantics are confirmed.
func (e *Engine) GenerateReport(original, anonymized string) Report {
	report := Report{
		RemovedInfo:        []string{},
		AnonymizationLevel: DetermineLevel(original),
	}

	for _, rule := range e.rules {
		n := len(rule.Pattern.FindAllStringIndex(original, -1))
		if n == 0 {
			continue
		}
		report.ChangedCount += n
		report.RemovedInfo = append(report.RemovedInfo, fmt.Sprintf("%s: %d件", rule.Name, n))
	}

	return report
}
