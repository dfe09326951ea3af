package websocket

import "time"

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeRewrite is emitted when a pipeline finishes rewriting one article
	EventTypeRewrite EventType = "rewrite_completed"
	// EventTypeAnonymization is emitted when a draft is sanitized
	EventTypeAnonymization EventType = "anonymization"
	// EventTypeRunSummary is emitted when a batch run completes
	EventTypeRunSummary EventType = "run_summary"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to dashboard clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RunID     string      `json:"run_id,omitempty"`
}

// RewriteEvent describes one completed article rewrite
type RewriteEvent struct {
	RunID        string  `json:"run_id"`
	ArticleURL   string  `json:"article_url"`
	TitleBefore  string  `json:"title_before"`
	TitleAfter   string  `json:"title_after"`
	QualityScore int     `json:"quality_score"`
	LinksAdded   int     `json:"links_added"`
	DurationMS   float64 `json:"duration_ms"`
}

// AnonymizationEvent describes one sanitization pass over a draft
type AnonymizationEvent struct {
	RunID          string   `json:"run_id"`
	ArticleURL     string   `json:"article_url"`
	Level          string   `json:"level"`
	RedactionCount int      `json:"redaction_count"`
	RemovedInfo    []string `json:"removed_info"`
}

// RunSummaryEvent describes a finished batch run
type RunSummaryEvent struct {
	RunID      string  `json:"run_id"`
	Candidates int     `json:"candidates"`
	Rewritten  int     `json:"rewritten"`
	Failed     int     `json:"failed"`
	AvgScore   float64 `json:"avg_score"`
	Duration   string  `json:"duration"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected", "disconnected"
	ClientID string `json:"client_id"`
	ClientIP string `json:"client_ip"`
	Message  string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SubscriptionRequest represents a client subscription request
type SubscriptionRequest struct {
	Events []EventType `json:"events"`
}
