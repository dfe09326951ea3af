package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/ykamio/contentops/internal/cache"
	"github.com/ykamio/contentops/internal/config"
	"github.com/ykamio/contentops/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client talks to an OpenAI-compatible chat-completions API. All calls are
// serialized through a rate limiter honoring the configured request interval.
type Client struct {
	httpClient *http.Client
	config     config.LLMConfig
	limiter    *rate.Limiter
	cache      *cache.CompletionCache
	logger     *logger.Logger
}

// New creates an LLM API client. completionCache may be nil to disable
// response caching.
func New(cfg config.LLMConfig, completionCache *cache.CompletionCache, log *logger.Logger) *Client {
	interval := cfg.RequestInterval
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		limiter:    rate.NewLimiter(limit, 1),
		cache:      completionCache,
		logger:     log,
	}
}

// RewriteArticle rewrites an article body for the given target search queries.
func (c *Client) RewriteArticle(ctx context.Context, title, content string, queries []string) (string, error) {
	system := "あなたはSEOに精通した編集者です。検索意図を満たすように記事をリライトしてください。" +
		"見出し構造を保ち、事実を追加せず、自然な日本語で書き直すこと。"
	user := fmt.Sprintf("対象キーワード: %s\n\nタイトル: %s\n\n本文:\n%s",
		strings.Join(queries, ", "), title, content)

	return c.complete(ctx, system, user)
}

// GenerateFAQ produces an FAQ block answering the search queries the article
// underperforms for.
func (c *Client) GenerateFAQ(ctx context.Context, content string, queries []string) (string, error) {
	system := "あなたはSEOに精通した編集者です。記事の末尾に付けるFAQセクションを作成してください。" +
		"各質問は検索キーワードに対応させ、回答は本文の内容に基づくこと。"
	user := fmt.Sprintf("検索キーワード: %s\n\n本文:\n%s", strings.Join(queries, ", "), content)

	return c.complete(ctx, system, user)
}

// ReviewQuality scores content quality from 0 to 100.
func (c *Client) ReviewQuality(ctx context.Context, content string) (int, error) {
	system := "あなたはコンテンツ品質の審査員です。網羅性・読みやすさ・検索意図への適合を基準に、" +
		"0から100の整数スコアのみを返してください。"

	raw, err := c.complete(ctx, system, content)
	if err != nil {
		return 0, err
	}

	score, err := parseScore(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse quality score from %q: %w", raw, err)
	}
	return score, nil
}

// RefineTitle iteratively proposes and scores title candidates, returning the
// best one found. The starting title is scored first so a rewrite is only
// adopted when it actually reviews better.
func (c *Client) RefineTitle(ctx context.Context, title string, queries []string, rounds int) (string, []TitleCandidate, error) {
	baseScore, err := c.scoreTitle(ctx, title, queries)
	if err != nil {
		return title, nil, err
	}

	best := TitleCandidate{Title: title, Score: baseScore, Round: 0}
	history := []TitleCandidate{best}

	for round := 1; round <= rounds; round++ {
		candidate, err := c.proposeTitle(ctx, best.Title, queries)
		if err != nil {
			return best.Title, history, err
		}

		score, err := c.scoreTitle(ctx, candidate, queries)
		if err != nil {
			return best.Title, history, err
		}

		entry := TitleCandidate{Title: candidate, Score: score, Round: round}
		history = append(history, entry)

		if score > best.Score {
			best = entry
		}

		c.logger.Debug("Title refinement round",
			zap.Int("round", round),
			zap.String("candidate", candidate),
			zap.Int("score", score),
			zap.Int("best_score", best.Score),
		)
	}

	return best.Title, history, nil
}

func (c *Client) proposeTitle(ctx context.Context, current string, queries []string) (string, error) {
	system := "あなたはSEOに精通した編集者です。クリック率と検索意図適合を高めた記事タイトル案を1つだけ、" +
		"タイトル文字列のみで返してください。32文字以内。"
	user := fmt.Sprintf("検索キーワード: %s\n現在のタイトル: %s", strings.Join(queries, ", "), current)

	title, err := c.complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"「」`)), nil
}

func (c *Client) scoreTitle(ctx context.Context, title string, queries []string) (int, error) {
	system := "あなたはSEOタイトルの審査員です。検索キーワードへの適合とクリック誘引力を基準に、" +
		"0から100の整数スコアのみを返してください。"
	user := fmt.Sprintf("検索キーワード: %s\nタイトル: %s", strings.Join(queries, ", "), title)

	raw, err := c.complete(ctx, system, user)
	if err != nil {
		return 0, err
	}
	return parseScore(raw)
}

// complete performs one chat completion, consulting the cache first.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	cacheKey := system + "\x00" + user

	if c.cache != nil {
		if entry, ok := c.cache.Get(ctx, cacheKey); ok {
			return entry.Completion, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter interrupted: %w", err)
	}

	reqBody := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API returned HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	completion := parsed.Choices[0].Message.Content

	if c.cache != nil {
		if err := c.cache.Store(ctx, cacheKey, &cache.Entry{Completion: completion, Model: c.config.Model}); err != nil {
			c.logger.Warn("Failed to cache completion", zap.Error(err))
		}
	}

	return completion, nil
}

var scorePattern = regexp.MustCompile(`\d{1,3}`)

// parseScore extracts the first integer from a model response and clamps it
// to the 0-100 range.
func parseScore(raw string) (int, error) {
	match := scorePattern.FindString(raw)
	if match == "" {
		return 0, fmt.Errorf("no score found")
	}

	score, err := strconv.Atoi(match)
	if err != nil {
		return 0, err
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
