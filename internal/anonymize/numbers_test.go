package anonymize

import (
	"strings"
	"testing"
)

func TestObscureNumbers(t *testing.T) {
	t.Run("PercentageBands", func(t *testing.T) {
		cases := []struct {
			in   string
			want string
		}{
			{"85%", "80%以上"},
			{"80%", "80%以上"},
			{"79%", "50%以上"},
			{"55%", "50%以上"},
			{"50%", "50%以上"},
			{"49%", "約30-50%"},
			{"35%", "約30-50%"},
			{"30%", "約30-50%"},
			{"29%", "10%以上"},
			{"15%", "10%以上"},
			{"10%", "10%以上"},
			{"9%", "10%未満"},
			{"5%", "10%未満"},
		}
		for _, tc := range cases {
			if got := ObscureNumbers(tc.in); got != tc.want {
				t.Errorf("ObscureNumbers(%q) = %q, want %q", tc.in, got, tc.want)
			}
		}
	})

	t.Run("DecimalUsesIntegerPart", func(t *testing.T) {
		if got := ObscureNumbers("35.9%"); got != "約30-50%" {
			t.Errorf("35.9%% should band on the integer part, got %q", got)
		}
		if got := ObscureNumbers("79.9%"); got != "50%以上" {
			t.Errorf("79.9%% should band on the integer part, got %q", got)
		}
	})

	t.Run("MonetaryBands", func(t *testing.T) {
		cases := []struct {
			in   string
			want string
		}{
			{"999万円", "999万円"}, // below the 4-digit threshold, untouched
			{"1000万円", "数千万円"},
			{"9999万円", "数千万円"},
			{"10000万円", "数億円"},
			{"25000万円", "数億円"},
		}
		for _, tc := range cases {
			if got := ObscureNumbers(tc.in); got != tc.want {
				t.Errorf("ObscureNumbers(%q) = %q, want %q", tc.in, got, tc.want)
			}
		}
	})

	t.Run("MonetaryBandingMonotonic", func(t *testing.T) {
		// Band rank must never decrease as the amount grows.
		rank := func(s string) int {
			switch {
			case strings.Contains(s, "数億円"):
				return 2
			case strings.Contains(s, "数千万円"):
				return 1
			default:
				return 0
			}
		}

		amounts := []string{"500万円", "1000万円", "5000万円", "9999万円", "10000万円", "80000万円"}
		prev := -1
		for _, a := range amounts {
			r := rank(ObscureNumbers(a))
			if r < prev {
				t.Errorf("banding not monotonic at %q: rank %d after %d", a, r, prev)
			}
			prev = r
		}
	})

	t.Run("FixedPoint", func(t *testing.T) {
		in := "利益率は85%、コストは3000万円、達成率92.5%、移行率35%、残り8%。"
		once := ObscureNumbers(in)
		twice := ObscureNumbers(once)
		if once != twice {
			t.Errorf("not a fixed point:\nonce:  %s\ntwice: %s", once, twice)
		}
	})

	t.Run("MixedText", func(t *testing.T) {
		in := "予算12000万円のうち消化率は64%。"
		got := ObscureNumbers(in)
		if !strings.Contains(got, "数億円") || !strings.Contains(got, "50%以上") {
			t.Errorf("unexpected result: %s", got)
		}
	})
}
