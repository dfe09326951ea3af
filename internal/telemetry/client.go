package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ykamio/contentops/internal/config"
	"github.com/ykamio/contentops/internal/logger"
	"go.uber.org/zap"
)

// Client queries a Search-Console-style analytics API for page/query
// performance rows.
type Client struct {
	httpClient *http.Client
	config     config.TelemetryConfig
	logger     *logger.Logger
}

// NewClient creates a search-analytics API client
func NewClient(cfg config.TelemetryConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		config:     cfg,
		logger:     log,
	}
}

type analyticsRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions"`
	RowLimit   int      `json:"rowLimit"`
}

type analyticsResponse struct {
	Rows []struct {
		Keys        []string `json:"keys"`
		Clicks      float64  `json:"clicks"`
		Impressions float64  `json:"impressions"`
		CTR         float64  `json:"ctr"`
		Position    float64  `json:"position"`
	} `json:"rows"`
}

// Query fetches page/query rows for the configured site over the trailing
// window.
func (c *Client) Query(ctx context.Context) ([]PageMetrics, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -c.config.WindowDays)

	reqBody := analyticsRequest{
		StartDate:  start.Format("2006-01-02"),
		EndDate:    end.Format("2006-01-02"),
		Dimensions: []string{"page", "query"},
		RowLimit:   5000,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analytics request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/sites/%s/searchAnalytics/query",
		strings.TrimSuffix(c.config.BaseURL, "/"), url.PathEscape(c.config.SiteURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analytics request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read analytics response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analytics API returned HTTP %d", resp.StatusCode)
	}

	var parsed analyticsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode analytics response: %w", err)
	}

	rows := make([]PageMetrics, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		if len(row.Keys) < 2 {
			continue
		}
		rows = append(rows, PageMetrics{
			Page:        row.Keys[0],
			Query:       row.Keys[1],
			Clicks:      int64(row.Clicks),
			Impressions: int64(row.Impressions),
			CTR:         row.CTR,
			Position:    row.Position,
		})
	}

	c.logger.Info("Search analytics fetched",
		zap.Int("rows", len(rows)),
		zap.String("site", c.config.SiteURL),
		zap.Int("window_days", c.config.WindowDays),
	)

	return rows, nil
}
