// Package pipeline orchestrates one batch rewrite run: candidate selection
// from telemetry, LLM rewriting, anonymization, link insertion, title
// refinement, persistence, and reporting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ykamio/contentops/internal/anonymize"
	"github.com/ykamio/contentops/internal/articles"
	"github.com/ykamio/contentops/internal/config"
	"github.com/ykamio/contentops/internal/links"
	"github.com/ykamio/contentops/internal/logger"
	"github.com/ykamio/contentops/internal/notify"
	"github.com/ykamio/contentops/internal/telemetry"
	"github.com/ykamio/contentops/internal/websocket"
	"go.uber.org/zap"
)

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("a rewrite run is already in progress")

// Notifier posts run-level reports to the team channel.
type Notifier interface {
	PostRunSummary(ctx context.Context, summary notify.RunSummary) error
	PostError(ctx context.Context, runID string, err error) error
}

// Runner executes batch rewrite runs. Articles within a run are processed
// strictly sequentially; at most one run is active at a time.
type Runner struct {
	cfg       *config.Config
	metrics   MetricsSource
	articles  ArticleStore
	knowledge KnowledgeSource
	writer    Writer
	engine    *anonymize.Engine
	linker    *links.Linker
	notifier  Notifier
	hub       Broadcaster
	logger    *logger.Logger

	// sleep is swapped in tests to skip inter-article delays.
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	running bool
}

// NewRunner wires a batch runner from its collaborators. hub and notifier may
// be nil when the dashboard or chat reporting is disabled.
func NewRunner(
	cfg *config.Config,
	metrics MetricsSource,
	articleStore ArticleStore,
	knowledge KnowledgeSource,
	writer Writer,
	engine *anonymize.Engine,
	linker *links.Linker,
	notifier Notifier,
	hub Broadcaster,
	log *logger.Logger,
) *Runner {
	return &Runner{
		cfg:       cfg,
		metrics:   metrics,
		articles:  articleStore,
		knowledge: knowledge,
		writer:    writer,
		engine:    engine,
		linker:    linker,
		notifier:  notifier,
		hub:       hub,
		logger:    log.WithComponent("pipeline"),
		sleep:     sleepCtx,
	}
}

// Run executes one full batch run and returns its summary. Only one run may
// be active at a time; concurrent calls fail with ErrRunInProgress.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrRunInProgress
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := r.logger.With(zap.String("run_id", result.RunID))
	log.Info("Rewrite run started")

	candidates, err := r.selectCandidates(ctx)
	if err != nil {
		r.reportError(ctx, result.RunID, err)
		return nil, fmt.Errorf("candidate selection failed: %w", err)
	}
	result.Candidates = len(candidates)

	if len(candidates) == 0 {
		log.Info("No rewrite candidates found")
		result.Duration = time.Since(result.StartedAt)
		return result, nil
	}

	pool, err := r.articles.ListPublished(ctx, 200)
	if err != nil {
		r.reportError(ctx, result.RunID, err)
		return nil, fmt.Errorf("failed to load link pool: %w", err)
	}

	for i, candidate := range candidates {
		if i > 0 && r.cfg.Rewrite.ArticleDelay > 0 {
			if err := r.sleep(ctx, r.cfg.Rewrite.ArticleDelay); err != nil {
				r.reportError(ctx, result.RunID, err)
				return result, err
			}
		}

		articleResult := r.processArticle(ctx, result.RunID, candidate, pool)
		result.Articles = append(result.Articles, articleResult)

		if articleResult.Err != nil {
			result.Failed++
			log.Warn("Article rewrite failed",
				zap.String("url", candidate.Page),
				zap.Error(articleResult.Err),
			)
			continue
		}
		result.Rewritten++
	}

	result.Duration = time.Since(result.StartedAt)
	result.AvgScore = averageScore(result.Articles)

	log.Info("Rewrite run finished",
		zap.Int("candidates", result.Candidates),
		zap.Int("rewritten", result.Rewritten),
		zap.Int("failed", result.Failed),
		zap.Float64("avg_score", result.AvgScore),
		zap.Duration("duration", result.Duration),
	)

	r.broadcast(websocket.Event{
		Type:      websocket.EventTypeRunSummary,
		Timestamp: time.Now(),
		RunID:     result.RunID,
		Data: websocket.RunSummaryEvent{
			RunID:      result.RunID,
			Candidates: result.Candidates,
			Rewritten:  result.Rewritten,
			Failed:     result.Failed,
			AvgScore:   result.AvgScore,
			Duration:   result.Duration.Round(time.Second).String(),
		},
	})

	if r.notifier != nil {
		if err := r.notifier.PostRunSummary(ctx, toNotifySummary(result)); err != nil {
			log.Warn("Failed to post run summary", zap.Error(err))
		}
	}

	return result, nil
}

// Running reports whether a batch run is currently active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// SelectCandidates exposes candidate selection for the dashboard preview.
func (r *Runner) SelectCandidates(ctx context.Context) ([]telemetry.Candidate, error) {
	return r.selectCandidates(ctx)
}

func (r *Runner) selectCandidates(ctx context.Context) ([]telemetry.Candidate, error) {
	window := time.Duration(r.cfg.Telemetry.WindowDays) * 24 * time.Hour
	rows, err := r.metrics.Recent(ctx, window)
	if err != nil {
		return nil, err
	}

	candidates := telemetry.FindUnderperforming(rows, r.cfg.Telemetry)
	if max := r.cfg.Rewrite.BatchSize; max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}
	return candidates, nil
}

// processArticle runs the full per-article pipeline. Stage order is fixed:
// rewrite, FAQ, anonymize, links, title, review, persist.
func (r *Runner) processArticle(ctx context.Context, runID string, candidate telemetry.Candidate, pool []articles.Article) ArticleResult {
	started := time.Now()
	result := ArticleResult{URL: candidate.Page}
	log := r.logger.With(
		zap.String("run_id", runID),
		zap.String("url", candidate.Page),
	)

	article, err := r.articles.GetByURL(ctx, candidate.Page)
	if err != nil {
		result.Err = err
		return result
	}
	result.TitleBefore = article.Title

	rewritten, err := r.writer.RewriteArticle(ctx, article.Title, article.Content, candidate.Queries)
	if err != nil {
		result.Err = fmt.Errorf("rewrite failed: %w", err)
		return result
	}

	faq, err := r.writer.GenerateFAQ(ctx, rewritten, candidate.Queries)
	if err != nil {
		result.Err = fmt.Errorf("faq generation failed: %w", err)
		return result
	}
	draft := joinFAQ(rewritten, faq)

	records, err := r.knowledge.Search(ctx, candidate.Queries)
	if err != nil {
		result.Err = fmt.Errorf("knowledge search failed: %w", err)
		return result
	}

	sanitized := r.engine.Anonymize(draft, records)
	report := r.engine.GenerateReport(draft, sanitized)
	result.Redactions = report.ChangedCount
	result.Level = string(report.AnonymizationLevel)

	r.broadcast(websocket.Event{
		Type:      websocket.EventTypeAnonymization,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: websocket.AnonymizationEvent{
			RunID:          runID,
			ArticleURL:     article.URL,
			Level:          string(report.AnonymizationLevel),
			RedactionCount: report.ChangedCount,
			RemovedInfo:    report.RemovedInfo,
		},
	})

	linked, linksAdded := r.linker.Insert(sanitized, pool, article.URL)
	result.LinksAdded = linksAdded

	title, _, err := r.writer.RefineTitle(ctx, article.Title, candidate.Queries, r.cfg.Rewrite.TitleRounds)
	if err != nil {
		result.Err = fmt.Errorf("title refinement failed: %w", err)
		return result
	}
	// Titles pass through the same sanitizer as the body.
	title = r.engine.Anonymize(title, records)
	result.TitleAfter = title

	score, err := r.writer.ReviewQuality(ctx, linked)
	if err != nil {
		result.Err = fmt.Errorf("quality review failed: %w", err)
		return result
	}
	result.QualityScore = score

	rec := &articles.RewriteRecord{
		ArticleID:          article.ID,
		RunID:              runID,
		TitleBefore:        article.Title,
		TitleAfter:         title,
		ContentBefore:      article.Content,
		ContentAfter:       linked,
		FAQ:                faq,
		LinksAdded:         linksAdded,
		QualityScore:       score,
		AnonymizationLevel: string(report.AnonymizationLevel),
		RedactionCount:     report.ChangedCount,
	}
	if err := r.articles.SaveRewrite(ctx, rec); err != nil {
		result.Err = fmt.Errorf("failed to persist rewrite: %w", err)
		return result
	}

	result.Duration = time.Since(started)

	log.Info("Article rewritten",
		zap.String("title_after", title),
		zap.Int("quality_score", score),
		zap.Int("links_added", linksAdded),
		zap.Int("redactions", report.ChangedCount),
		zap.Duration("duration", result.Duration),
	)

	r.broadcast(websocket.Event{
		Type:      websocket.EventTypeRewrite,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: websocket.RewriteEvent{
			RunID:        runID,
			ArticleURL:   article.URL,
			TitleBefore:  article.Title,
			TitleAfter:   title,
			QualityScore: score,
			LinksAdded:   linksAdded,
			DurationMS:   float64(result.Duration.Microseconds()) / 1000.0,
		},
	})

	return result
}

func (r *Runner) broadcast(event websocket.Event) {
	if r.hub != nil {
		r.hub.BroadcastEvent(event)
	}
}

func (r *Runner) reportError(ctx context.Context, runID string, err error) {
	if r.notifier == nil {
		return
	}
	if nerr := r.notifier.PostError(ctx, runID, err); nerr != nil {
		r.logger.Warn("Failed to post error notification", zap.Error(nerr))
	}
}

// joinFAQ appends the FAQ block under a standing heading unless the model
// already included one.
func joinFAQ(content, faq string) string {
	faq = strings.TrimSpace(faq)
	if faq == "" {
		return content
	}
	body := strings.TrimRight(content, "\n")
	if strings.Contains(faq, "よくある質問") || strings.HasPrefix(faq, "#") {
		return body + "\n\n" + faq + "\n"
	}
	return body + "\n\n## よくある質問\n\n" + faq + "\n"
}

func averageScore(results []ArticleResult) float64 {
	sum, n := 0, 0
	for _, a := range results {
		if a.Err == nil {
			sum += a.QualityScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func toNotifySummary(result *RunResult) notify.RunSummary {
	summary := notify.RunSummary{
		RunID:      result.RunID,
		StartedAt:  result.StartedAt,
		Duration:   result.Duration,
		Candidates: result.Candidates,
		Rewritten:  result.Rewritten,
		Failed:     result.Failed,
		AvgScore:   result.AvgScore,
	}
	for _, a := range result.Articles {
		summary.Articles = append(summary.Articles, notify.ArticleLine{
			URL:          a.URL,
			TitleAfter:   a.TitleAfter,
			QualityScore: a.QualityScore,
			Redactions:   a.Redactions,
			Err:          a.Err,
		})
	}
	return summary
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
