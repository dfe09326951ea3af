package anonymize

import (
	"strings"
	"testing"
)

func applyRule(t *testing.T, name, text string) string {
	t.Helper()
	for _, rule := range defaultRules() {
		if rule.Name == name {
			return rule.Replace.apply(rule.Pattern, text)
		}
	}
	t.Fatalf("unknown rule %q", name)
	return ""
}

func TestRules(t *testing.T) {
	t.Run("CompanyNameForms", func(t *testing.T) {
		cases := []string{
			"大和運輸株式会社に依頼した。",
			"株式会社テックワンが開発した。",
			"Contracted with Acme Inc. last week.",
			"Partnered with Global Trade Corp. in Q3.",
			"A deal with Nippon Systems Co., Ltd. was signed.",
		}
		for _, in := range cases {
			got := applyRule(t, "companyName", in)
			if got == in {
				t.Errorf("companyName did not match %q", in)
			}
			if !strings.Contains(got, "某大手企業") {
				t.Errorf("companyName replacement missing in %q", got)
			}
		}
	})

	t.Run("PersonNameHonorifics", func(t *testing.T) {
		for _, in := range []string{"佐藤さん", "田中氏", "鈴木社長", "高橋部長", "伊藤代表"} {
			if got := applyRule(t, "personName", in); got != "代表者" {
				t.Errorf("personName(%q) = %q, want 代表者", in, got)
			}
		}
		// A surname without an honorific is not enough evidence.
		if got := applyRule(t, "personName", "佐藤製薬の製品"); got != "佐藤製薬の製品" {
			t.Errorf("personName should not match bare surnames, got %q", got)
		}
	})

	t.Run("BusinessFigureVariants", func(t *testing.T) {
		cases := []struct {
			in   string
			want string
		}{
			{"売上高120億円を記録", "数十億円規模の売上を記録"},
			{"年商8000万円の事業", "数千万円規模の売上の事業"},
			{"市場シェア34%を確保", "業界トップクラスのシェアを確保"},
			{"前年比150%増を達成", "前年比大幅増を達成"},
		}
		for _, tc := range cases {
			if got := applyRule(t, "specificNumbers", tc.in); got != tc.want {
				t.Errorf("specificNumbers(%q) = %q, want %q", tc.in, got, tc.want)
			}
		}
	})

	t.Run("AddressSpans", func(t *testing.T) {
		got := applyRule(t, "address", "本社: 〒150-0002東京都渋谷区渋谷2-21-1に移転。")
		if strings.Contains(got, "渋谷区") {
			t.Errorf("address span survived: %q", got)
		}
		if !strings.Contains(got, "本社所在地") {
			t.Errorf("address label missing: %q", got)
		}
	})

	t.Run("ProductNameCategories", func(t *testing.T) {
		cases := []struct {
			in   string
			want string
		}{
			{"「顧客管理システム」", "「独自システム」"},
			{"「会計ソフトPro」", "「独自システム」"},
			{"「宅配サービス」", "「自社サービス」"},
			{"「ロボット掃除機X」", "「自社製品」"},
		}
		for _, tc := range cases {
			if got := applyRule(t, "productName", tc.in); got != tc.want {
				t.Errorf("productName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		}
	})

	t.Run("PhoneForms", func(t *testing.T) {
		for _, in := range []string{"03-1234-5678", "090-1234-5678", "0120-444-444", "03(1234)5678"} {
			if got := applyRule(t, "phone", in); got != "0X-XXXX-XXXX" {
				t.Errorf("phone(%q) = %q", in, got)
			}
		}
	})

	t.Run("RuleOrderFixed", func(t *testing.T) {
		want := []string{"companyName", "personName", "email", "phone", "specificNumbers", "address", "productName"}
		rules := defaultRules()
		if len(rules) != len(want) {
			t.Fatalf("rule count = %d, want %d", len(rules), len(want))
		}
		for i, rule := range rules {
			if rule.Name != want[i] {
				t.Errorf("rule[%d] = %s, want %s", i, rule.Name, want[i])
			}
		}
	})
}
