package articles

import "time"

// Article is a published article eligible for rewriting.
type Article struct {
	ID          int64     `db:"id" json:"id"`
	URL         string    `db:"url" json:"url"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RewriteRecord is one persisted rewrite of an article: the before/after
// state plus what the pipeline added and how the draft was audited.
type RewriteRecord struct {
	ID                 int64     `db:"id" json:"id"`
	ArticleID          int64     `db:"article_id" json:"article_id"`
	RunID              string    `db:"run_id" json:"run_id"`
	TitleBefore        string    `db:"title_before" json:"title_before"`
	TitleAfter         string    `db:"title_after" json:"title_after"`
	ContentBefore      string    `db:"content_before" json:"content_before"`
	ContentAfter       string    `db:"content_after" json:"content_after"`
	FAQ                string    `db:"faq" json:"faq"`
	LinksAdded         int       `db:"links_added" json:"links_added"`
	QualityScore       int       `db:"quality_score" json:"quality_score"`
	AnonymizationLevel string    `db:"anonymization_level" json:"anonymization_level"`
	RedactionCount     int       `db:"redaction_count" json:"redaction_count"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
