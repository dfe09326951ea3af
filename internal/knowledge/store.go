// Package knowledge reads the internal company-knowledge base. Records are
// the confidential inputs fed to the anonymization engine; this package never
// mutates them.
package knowledge

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/ykamio/contentops/internal/anonymize"
	"go.uber.org/zap"
)

// Store queries the company_knowledge table.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore creates a knowledge store over an existing database handle.
func NewStore(db *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Search returns records whose title or body mentions any of the given
// keywords. The result feeds the anonymization engine, so confidential and
// public records are both returned; the engine decides what to purge.
func (s *Store) Search(ctx context.Context, keywords []string) ([]anonymize.ConfidentialRecord, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	query := `
		SELECT title, category, is_confidential, is_public
		FROM company_knowledge
		WHERE title ILIKE ANY($1) OR body ILIKE ANY($1)
		ORDER BY updated_at DESC
		LIMIT 100`

	patterns := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		patterns = append(patterns, "%"+kw+"%")
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	var records []anonymize.ConfidentialRecord
	if err := s.db.SelectContext(ctx, &records, query, pq.Array(patterns)); err != nil {
		return nil, fmt.Errorf("failed to search company knowledge: %w", err)
	}

	s.logger.Debug("Knowledge search completed",
		zap.Int("keywords", len(patterns)),
		zap.Int("records", len(records)))

	return records, nil
}

// ListConfidential returns every redaction-eligible record. Used when a
// caller sanitizes content without a query context.
func (s *Store) ListConfidential(ctx context.Context) ([]anonymize.ConfidentialRecord, error) {
	query := `
		SELECT title, category, is_confidential, is_public
		FROM company_knowledge
		WHERE is_confidential = TRUE AND is_public = FALSE
		ORDER BY updated_at DESC`

	var records []anonymize.ConfidentialRecord
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list confidential records: %w", err)
	}
	return records, nil
}
