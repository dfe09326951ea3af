package anonymize

import (
	"strings"
	"testing"
)

func TestGeneralizeDates(t *testing.T) {
	e := newTestEngine(2025)

	t.Run("FullDateTruncatedToMonth", func(t *testing.T) {
		got := e.GeneralizeDates("発表は2024年3月15日でした。")
		if !strings.Contains(got, "2024年3月") {
			t.Errorf("expected year+month to survive, got %q", got)
		}
		if strings.Contains(got, "15日") {
			t.Errorf("day component should be dropped, got %q", got)
		}
	})

	t.Run("TruncationRunsBeforeYearGeneralization", func(t *testing.T) {
		// A full date's year must not be generalized away before the month
		// is captured.
		got := e.GeneralizeDates("2023年12月31日に締結。")
		if got != "2023年12月に締結。" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("BareYears", func(t *testing.T) {
		cases := []struct {
			in   string
			want string
		}{
			{"2025年", "今年"},
			{"2024年", "昨年"},
			{"2023年", "2年前"},
			{"2021年", "4年前"},
			{"2020年", "5年前"},
			{"2019年", "数年前"},
			{"2010年", "数年前"},
			{"2026年", "2026年"}, // future years untouched
		}
		for _, tc := range cases {
			if got := e.GeneralizeDates(tc.in); got != tc.want {
				t.Errorf("GeneralizeDates(%q) = %q, want %q", tc.in, got, tc.want)
			}
		}
	})

	t.Run("YearFollowedByMonthKept", func(t *testing.T) {
		got := e.GeneralizeDates("2024年3月の集計")
		if got != "2024年3月の集計" {
			t.Errorf("year+month expression should stay intact, got %q", got)
		}
	})

	t.Run("MultipleDates", func(t *testing.T) {
		got := e.GeneralizeDates("2023年に開始し、2025年4月1日に完了。")
		if got != "2年前に開始し、2025年4月に完了。" {
			t.Errorf("got %q", got)
		}
	})
}
