package anonymize

import (
	"regexp"
	"strings"
)

// Script-specific character classes, kept in one place so the detection
// grammar can be extended without touching the rules themselves.
const (
	kanji    = `一-龯`
	hiragana = `ぁ-ん`
	katakana = `ァ-ヶー`
	alnum    = `A-Za-z0-9０-９`
)

// defaultRules returns the standing redaction rules in application order.
// The table is built once at startup and never mutated afterwards.
func defaultRules() []Rule {
	return []Rule{
		{
			// Hiragana is deliberately absent from the name classes so the
			// match stops at sentence particles.
			Name: "companyName",
			Pattern: regexp.MustCompile(
				`[` + kanji + katakana + alnum + `]+株式会社` +
					`|株式会社[` + kanji + katakana + alnum + `]+` +
					`|[A-Z][A-Za-z]+(?: [A-Z][A-Za-z]+)* (?:Inc\.|Corp\.|Co\., ?Ltd\.)`),
			Replace: Literal("某大手企業"),
		},
		{
			Name: "personName",
			Pattern: regexp.MustCompile(
				`(?:佐藤|鈴木|高橋|田中|伊藤|渡辺|山本|中村|小林|加藤)` +
					`(?:さん|様|氏|社長|副社長|専務|常務|部長|課長|係長|主任|代表)`),
			Replace: Literal("代表者"),
		},
		{
			Name:    "email",
			Pattern: regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
			Replace: Literal("contact@example.com"),
		},
		{
			Name:    "phone",
			Pattern: regexp.MustCompile(`0\d{1,4}-\d{1,4}-\d{3,4}|0\d{1,4}\(\d{1,4}\)\d{3,4}`),
			Replace: Literal("0X-XXXX-XXXX"),
		},
		{
			Name: "specificNumbers",
			Pattern: regexp.MustCompile(
				`(?:売上(?:高)?|年商|利益)(?:は|が|約)?[0-9０-９,，]+(?:億|万)円` +
					`|(?:市場)?シェア(?:は|約)?[0-9０-９]{1,3}(?:\.[0-9０-９]+)?[%％]` +
					`|前年(?:同期)?比[0-9０-９]{1,3}(?:\.[0-9０-９]+)?[%％](?:増|減|アップ|ダウン)?`),
			Replace: Transform(replaceBusinessFigure),
		},
		{
			Name: "address",
			Pattern: regexp.MustCompile(
				`〒?[0-9０-９]{3}-[0-9０-９]{4}\s*[` + kanji + `][` + kanji + katakana + `0-9０-９\-]*`),
			Replace: Literal("本社所在地"),
		},
		{
			Name:    "productName",
			Pattern: regexp.MustCompile(`「[^」]+」`),
			Replace: Transform(replaceProductName),
		},
	}
}

// replaceBusinessFigure maps a matched revenue/share/YoY phrase to a coarse
// qualitative phrase chosen from the matched substring.
func replaceBusinessFigure(match string) string {
	switch {
	case strings.Contains(match, "億円"):
		return "数十億円規模の売上"
	case strings.Contains(match, "万円"):
		return "数千万円規模の売上"
	case strings.Contains(match, "シェア"):
		return "業界トップクラスのシェア"
	case strings.Contains(match, "前年"):
		return "前年比大幅増"
	default:
		return "非公開"
	}
}

// replaceProductName guesses a generic category label for a bracket-quoted
// span, keeping the quoting brackets intact.
func replaceProductName(match string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(match, "「"), "」")
	switch {
	case strings.Contains(inner, "システム") || strings.Contains(inner, "ソフト"):
		return "「独自システム」"
	case strings.Contains(inner, "サービス"):
		return "「自社サービス」"
	default:
		return "「自社製品」"
	}
}

// categoryLabels maps a confidential record's category to the generic label
// its title is replaced with.
var categoryLabels = map[string]string{
	"financial": "財務関連情報",
	"strategic": "経営戦略情報",
	"personnel": "人事関連情報",
	"technical": "技術関連情報",
	"customer":  "顧客関連情報",
	"partner":   "取引先関連情報",
	"internal":  "社内情報",
}

// fallbackLabel is used when a record carries an unknown category.
const fallbackLabel = "非公開情報"
