// Package notify posts run summaries to a chat incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ykamio/contentops/internal/config"
	"github.com/ykamio/contentops/internal/logger"
	"go.uber.org/zap"
)

// RunSummary is the per-run report posted to the channel.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	Candidates int
	Rewritten  int
	Failed     int
	AvgScore   float64
	Articles   []ArticleLine
}

// ArticleLine is one line of the per-article breakdown.
type ArticleLine struct {
	URL          string
	TitleAfter   string
	QualityScore int
	Redactions   int
	Err          error
}

type webhookPayload struct {
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text"`
}

// Notifier posts messages to an incoming webhook. A disabled notifier is
// valid and turns every call into a no-op.
type Notifier struct {
	config     config.NotifyConfig
	httpClient *http.Client
	logger     *logger.Logger
}

// New creates a webhook notifier.
func New(cfg config.NotifyConfig, log *logger.Logger) *Notifier {
	return &Notifier{
		config:     cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.WithComponent("notify"),
	}
}

// PostRunSummary formats and posts the summary of one batch run.
func (n *Notifier) PostRunSummary(ctx context.Context, summary RunSummary) error {
	if !n.config.Enabled {
		return nil
	}
	return n.post(ctx, formatRunSummary(summary))
}

// PostError reports a run-level failure.
func (n *Notifier) PostError(ctx context.Context, runID string, err error) error {
	if !n.config.Enabled {
		return nil
	}
	text := fmt.Sprintf(":warning: リライト実行 `%s` が失敗しました\n> %v", runID, err)
	return n.post(ctx, text)
}

func (n *Notifier) post(ctx context.Context, text string) error {
	payload := webhookPayload{
		Channel:  n.config.Channel,
		Username: n.config.Username,
		Text:     text,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("Notification posted", zap.Int("bytes", len(body)))
	return nil
}

func formatRunSummary(s RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, ":memo: *記事リライト実行レポート* `%s`\n", s.RunID)
	fmt.Fprintf(&b, "対象候補: %d件 / 完了: %d件 / 失敗: %d件\n", s.Candidates, s.Rewritten, s.Failed)
	if s.Rewritten > 0 {
		fmt.Fprintf(&b, "平均品質スコア: %.1f\n", s.AvgScore)
	}
	fmt.Fprintf(&b, "所要時間: %s\n", s.Duration.Round(time.Second))

	for _, a := range s.Articles {
		if a.Err != nil {
			fmt.Fprintf(&b, "• :x: %s — %v\n", a.URL, a.Err)
			continue
		}
		fmt.Fprintf(&b, "• :white_check_mark: <%s|%s> スコア%d 秘匿%d件\n",
			a.URL, a.TitleAfter, a.QualityScore, a.Redactions)
	}

	return b.String()
}
