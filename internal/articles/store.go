package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrNotFound is returned when an article cannot be located by URL.
var ErrNotFound = errors.New("article not found")

// Store persists articles and their rewrite history.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore creates an article store over an existing database handle.
func NewStore(db *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// GetByURL fetches the article published at the given URL.
func (s *Store) GetByURL(ctx context.Context, url string) (*Article, error) {
	query := `
		SELECT id, url, title, content, published_at, updated_at
		FROM articles
		WHERE url = $1`

	var article Article
	if err := s.db.GetContext(ctx, &article, query, url); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch article %s: %w", url, err)
	}
	return &article, nil
}

// ListPublished returns published articles, newest first. Used as the link
// candidate pool.
func (s *Store) ListPublished(ctx context.Context, limit int) ([]Article, error) {
	query := `
		SELECT id, url, title, content, published_at, updated_at
		FROM articles
		ORDER BY published_at DESC
		LIMIT $1`

	var list []Article
	if err := s.db.SelectContext(ctx, &list, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list published articles: %w", err)
	}
	return list, nil
}

// SaveRewrite persists one rewrite record and updates the article content.
func (s *Store) SaveRewrite(ctx context.Context, rec *RewriteRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO rewrite_history (
			article_id, run_id, title_before, title_after,
			content_before, content_after, faq, links_added,
			quality_score, anonymization_level, redaction_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, insert,
		rec.ArticleID, rec.RunID, rec.TitleBefore, rec.TitleAfter,
		rec.ContentBefore, rec.ContentAfter, rec.FAQ, rec.LinksAdded,
		rec.QualityScore, rec.AnonymizationLevel, rec.RedactionCount,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rewrite record: %w", err)
	}

	update := `
		UPDATE articles
		SET title = $1, content = $2, updated_at = NOW()
		WHERE id = $3`

	if _, err := tx.ExecContext(ctx, update, rec.TitleAfter, rec.ContentAfter, rec.ArticleID); err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rewrite: %w", err)
	}

	s.logger.Debug("Rewrite saved",
		zap.Int64("article_id", rec.ArticleID),
		zap.Int64("rewrite_id", rec.ID),
		zap.Int("quality_score", rec.QualityScore))

	return nil
}

// RecentRewrites returns the latest rewrite records for the dashboard.
func (s *Store) RecentRewrites(ctx context.Context, limit int) ([]RewriteRecord, error) {
	query := `
		SELECT id, article_id, run_id, title_before, title_after,
		       content_before, content_after, faq, links_added,
		       quality_score, anonymization_level, redaction_count, created_at
		FROM rewrite_history
		ORDER BY created_at DESC
		LIMIT $1`

	var records []RewriteRecord
	if err := s.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent rewrites: %w", err)
	}
	return records, nil
}
