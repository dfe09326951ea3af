package pipeline

import (
	"context"
	"time"

	"github.com/ykamio/contentops/internal/anonymize"
	"github.com/ykamio/contentops/internal/articles"
	"github.com/ykamio/contentops/internal/llm"
	"github.com/ykamio/contentops/internal/telemetry"
	"github.com/ykamio/contentops/internal/websocket"
)

// MetricsSource supplies recent search telemetry rows.
type MetricsSource interface {
	Recent(ctx context.Context, window time.Duration) ([]telemetry.PageMetrics, error)
}

// ArticleStore is the article persistence surface the runner needs.
type ArticleStore interface {
	GetByURL(ctx context.Context, url string) (*articles.Article, error)
	ListPublished(ctx context.Context, limit int) ([]articles.Article, error)
	SaveRewrite(ctx context.Context, rec *articles.RewriteRecord) error
}

// KnowledgeSource supplies confidential records relevant to a set of queries.
type KnowledgeSource interface {
	Search(ctx context.Context, keywords []string) ([]anonymize.ConfidentialRecord, error)
}

// Writer is the generative-text surface the runner needs.
type Writer interface {
	RewriteArticle(ctx context.Context, title, content string, queries []string) (string, error)
	GenerateFAQ(ctx context.Context, content string, queries []string) (string, error)
	ReviewQuality(ctx context.Context, content string) (int, error)
	RefineTitle(ctx context.Context, title string, queries []string, rounds int) (string, []llm.TitleCandidate, error)
}

// Broadcaster pushes pipeline events to dashboard clients.
type Broadcaster interface {
	BroadcastEvent(event websocket.Event)
}

// ArticleResult is the outcome of processing one candidate.
type ArticleResult struct {
	URL          string        `json:"url"`
	TitleBefore  string        `json:"title_before"`
	TitleAfter   string        `json:"title_after"`
	QualityScore int           `json:"quality_score"`
	LinksAdded   int           `json:"links_added"`
	Redactions   int           `json:"redactions"`
	Level        string        `json:"anonymization_level"`
	Duration     time.Duration `json:"duration"`
	Err          error         `json:"-"`
}

// RunResult summarizes one batch run.
type RunResult struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	Duration   time.Duration   `json:"duration"`
	Candidates int             `json:"candidates"`
	Rewritten  int             `json:"rewritten"`
	Failed     int             `json:"failed"`
	AvgScore   float64         `json:"avg_score"`
	Articles   []ArticleResult `json:"articles"`
}
