package anonymize

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	fullDatePattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月\d{1,2}日`)
	bareYearPattern = regexp.MustCompile(`\d{4}年`)
)

// GeneralizeDates converts absolute dates into relative or month-granularity
// expressions. Full dates are truncated to year+month before bare years are
// generalized; running the steps in the opposite order would destroy the
// month component.
func (e *Engine) GeneralizeDates(text string) string {
	out := fullDatePattern.ReplaceAllString(text, "${1}年${2}月")
	return e.generalizeYears(out)
}

// generalizeYears rewrites bare YYYY年 tokens relative to the current
// calendar year. A year immediately followed by a month digit is part of a
// truncated date and is kept as-is.
func (e *Engine) generalizeYears(text string) string {
	locs := bareYearPattern.FindAllStringIndex(text, -1)
	if locs == nil {
		return text
	}

	current := e.now().Year()

	var out []byte
	last := 0

	for _, loc := range locs {
		start, end := loc[0], loc[1]

		if end < len(text) && text[end] >= '0' && text[end] <= '9' {
			continue
		}

		year, err := strconv.Atoi(text[start : end-len("年")])
		if err != nil {
			continue
		}

		replacement, ok := relativeYear(current - year)
		if !ok {
			continue
		}

		out = append(out, text[last:start]...)
		out = append(out, replacement...)
		last = end
	}

	out = append(out, text[last:]...)
	return string(out)
}

func relativeYear(diff int) (string, bool) {
	switch {
	case diff < 0:
		// Future years stay untouched.
		return "", false
	case diff == 0:
		return "今年", true
	case diff == 1:
		return "昨年", true
	case diff <= 5:
		return fmt.Sprintf("%d年前", diff), true
	default:
		return "数年前", true
	}
}
