// Package links appends internal links to rewritten content, pointing
// readers at related published articles.
package links

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ykamio/contentops/internal/articles"
	"github.com/ykamio/contentops/internal/logger"
	"go.uber.org/zap"
)

const sectionHeading = "## 関連記事"

// termSplitter breaks a title into searchable terms across Japanese and
// Latin punctuation.
var termSplitter = regexp.MustCompile(`[\s、。・：:【】\[\]（）()「」|｜\-]+`)

// Linker selects related articles and appends a link section.
type Linker struct {
	maxLinks int
	logger   *logger.Logger
}

// New creates a linker that adds at most maxLinks internal links.
func New(maxLinks int, log *logger.Logger) *Linker {
	if maxLinks <= 0 {
		maxLinks = 3
	}
	return &Linker{maxLinks: maxLinks, logger: log}
}

// Insert appends a related-articles section linking pool articles whose
// title terms appear in the content. The article's own URL and already-linked
// URLs are skipped. Returns the linked content and the number of links added.
func (l *Linker) Insert(content string, pool []articles.Article, selfURL string) (string, int) {
	type scored struct {
		article articles.Article
		score   int
	}

	var matches []scored
	for _, a := range pool {
		if a.URL == "" || a.URL == selfURL || strings.Contains(content, a.URL) {
			continue
		}
		if score := relevance(content, a.Title); score > 0 {
			matches = append(matches, scored{article: a, score: score})
		}
	}

	if len(matches) == 0 {
		return content, 0
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > l.maxLinks {
		matches = matches[:l.maxLinks]
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(content, "\n"))
	b.WriteString("\n\n")
	b.WriteString(sectionHeading)
	b.WriteString("\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "- [%s](%s)\n", m.article.Title, m.article.URL)
	}

	l.logger.Debug("Internal links inserted", zap.Int("links", len(matches)))
	return b.String(), len(matches)
}

// relevance counts how many terms of a title appear in the content. Terms
// shorter than two runes carry no signal and are ignored.
func relevance(content, title string) int {
	score := 0
	for _, term := range termSplitter.Split(title, -1) {
		if len([]rune(term)) < 2 {
			continue
		}
		if strings.Contains(content, term) {
			score++
		}
	}
	return score
}
