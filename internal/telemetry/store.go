package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Store persists telemetry rows in the page_metrics table.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore creates a telemetry store over an existing database handle.
func NewStore(db *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// InsertBatch upserts a batch of telemetry rows keyed by (page, query).
func (s *Store) InsertBatch(ctx context.Context, rows []PageMetrics) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	valueStrings := make([]string, 0, len(rows))
	valueArgs := make([]interface{}, 0, len(rows)*6)

	for i, row := range rows {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			i*6+1, i*6+2, i*6+3, i*6+4, i*6+5, i*6+6))
		valueArgs = append(valueArgs,
			row.Page, row.Query, row.Clicks, row.Impressions, row.CTR, row.Position)
	}

	query := fmt.Sprintf(`
		INSERT INTO page_metrics (page, query, clicks, impressions, ctr, position)
		VALUES %s
		ON CONFLICT (page, query) DO UPDATE SET
			clicks = EXCLUDED.clicks,
			impressions = EXCLUDED.impressions,
			ctr = EXCLUDED.ctr,
			position = EXCLUDED.position,
			updated_at = NOW()`,
		strings.Join(valueStrings, ","))

	res, err := s.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert telemetry batch: %w", err)
	}

	affected, _ := res.RowsAffected()
	s.logger.Debug("Telemetry batch inserted", zap.Int64("rows", affected))
	return affected, nil
}

// Recent returns telemetry rows updated within the trailing window.
func (s *Store) Recent(ctx context.Context, window time.Duration) ([]PageMetrics, error) {
	query := `
		SELECT page, query, clicks, impressions, ctr, position
		FROM page_metrics
		WHERE updated_at >= $1
		ORDER BY impressions DESC`

	var rows []PageMetrics
	if err := s.db.SelectContext(ctx, &rows, query, time.Now().Add(-window)); err != nil {
		return nil, fmt.Errorf("failed to query recent telemetry: %w", err)
	}
	return rows, nil
}
