package anonymize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	amountPattern  = regexp.MustCompile(`\d{4,}万円`)
	percentPattern = regexp.MustCompile(`\d{1,3}(?:\.\d+)?%`)
)

// ObscureNumbers coarsens remaining large monetary figures and percentages
// into banded qualitative text. Both transforms are single-pass; replaced
// spans are never rescanned.
func ObscureNumbers(text string) string {
	out := amountPattern.ReplaceAllStringFunc(text, func(match string) string {
		n, err := strconv.Atoi(strings.TrimSuffix(match, "万円"))
		if err != nil {
			return match
		}
		if n >= 10000 {
			return "数億円"
		}
		return "数千万円"
	})

	return obscurePercentages(out)
}

// obscurePercentages bands N% expressions into five coarse ranges using the
// integer part only. Matches that already carry a band suffix (以上/未満) or
// sit inside a range expression are left alone so the transform is a fixed
// point on its own output.
func obscurePercentages(text string) string {
	locs := percentPattern.FindAllStringIndex(text, -1)
	if locs == nil {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0

	for _, loc := range locs {
		start, end := loc[0], loc[1]

		if start > 0 {
			prev := text[start-1]
			if prev == '-' || prev == '~' {
				continue
			}
		}
		if strings.HasPrefix(text[end:], "以上") || strings.HasPrefix(text[end:], "未満") {
			continue
		}

		b.WriteString(text[last:start])
		b.WriteString(percentBand(text[start:end]))
		last = end
	}

	b.WriteString(text[last:])
	return b.String()
}

func percentBand(match string) string {
	intPart := strings.TrimSuffix(match, "%")
	if i := strings.IndexByte(intPart, '.'); i >= 0 {
		intPart = intPart[:i]
	}

	n, err := strconv.Atoi(intPart)
	if err != nil {
		return match
	}

	switch {
	case n >= 80:
		return "80%以上"
	case n >= 50:
		return "50%以上"
	case n >= 30:
		return "約30-50%"
	case n >= 10:
		return "10%以上"
	default:
		return "10%未満"
	}
}
