package telemetry

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"
)

// Importer ingests search-analytics export files (CSV, Parquet, or
// line-delimited JSON) into the telemetry store.
type Importer struct {
	store     *Store
	batchSize int
	logger    *zap.Logger
}

// NewImporter creates a telemetry importer
func NewImporter(store *Store, batchSize int, logger *zap.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Importer{store: store, batchSize: batchSize, logger: logger}
}

// ProcessFile imports one export file, detecting the format from its
// extension.
func (im *Importer) ProcessFile(ctx context.Context, filePath string) (*ImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	format := DetectFileFormat(filePath)
	im.logger.Info("Starting telemetry import",
		zap.String("file", filePath),
		zap.String("format", string(format)),
		zap.Int("batch_size", im.batchSize))

	start := time.Now()
	result := &ImportResult{}

	var err error
	switch format {
	case FormatCSV:
		err = im.processCSV(ctx, filePath, result)
	case FormatParquet:
		err = im.processParquet(ctx, filePath, result)
	case FormatJSON:
		err = im.processJSON(ctx, filePath, result)
	default:
		err = fmt.Errorf("unsupported file format: %s", format)
	}
	if err != nil {
		return result, err
	}

	result.Duration = time.Since(start)

	im.logger.Info("Telemetry import completed",
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("imported", result.Imported),
		zap.Int64("skipped", result.Skipped),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func (im *Importer) processCSV(ctx context.Context, filePath string, result *ImportResult) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 6 // page, query, clicks, impressions, ctr, position

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	im.logger.Debug("CSV header detected", zap.Strings("columns", header))

	return im.processBatches(ctx, func() ([]PageMetrics, error) {
		var batch []PageMetrics
		for len(batch) < im.batchSize {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				im.logger.Warn("Failed to read CSV record", zap.Error(err))
				result.Skipped++
				continue
			}

			row, ok := parseCSVRecord(record)
			if !ok {
				result.Skipped++
				continue
			}
			batch = append(batch, row)
		}
		return batch, nil
	}, result)
}

// parseCSVRecord maps one CSV record onto a telemetry row. Rows without a
// page URL or with unparsable numbers are rejected.
func parseCSVRecord(record []string) (PageMetrics, bool) {
	if len(record) != 6 {
		return PageMetrics{}, false
	}

	page := strings.TrimSpace(record[0])
	if page == "" {
		return PageMetrics{}, false
	}

	clicks, err1 := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
	impressions, err2 := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
	ctr, err3 := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
	position, err4 := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return PageMetrics{}, false
	}

	return PageMetrics{
		Page:        page,
		Query:       strings.TrimSpace(record[1]),
		Clicks:      clicks,
		Impressions: impressions,
		CTR:         ctr,
		Position:    position,
	}, true
}

func (im *Importer) processParquet(ctx context.Context, filePath string, result *ImportResult) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open Parquet file: %w", err)
	}
	defer file.Close()

	reader := parquet.NewReader(file)
	defer reader.Close()

	return im.processBatches(ctx, func() ([]PageMetrics, error) {
		var batch []PageMetrics
		for len(batch) < im.batchSize {
			var row PageMetrics
			err := reader.Read(&row)
			if err == io.EOF {
				break
			}
			if err != nil {
				im.logger.Warn("Failed to read Parquet record", zap.Error(err))
				result.Skipped++
				continue
			}
			if row.Page == "" {
				result.Skipped++
				continue
			}
			batch = append(batch, row)
		}
		return batch, nil
	}, result)
}

func (im *Importer) processJSON(ctx context.Context, filePath string, result *ImportResult) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open JSON file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)

	return im.processBatches(ctx, func() ([]PageMetrics, error) {
		var batch []PageMetrics
		for len(batch) < im.batchSize {
			var row PageMetrics
			err := decoder.Decode(&row)
			if err == io.EOF {
				break
			}
			if err != nil {
				im.logger.Warn("Failed to read JSON record", zap.Error(err))
				result.Skipped++
				continue
			}
			if row.Page == "" {
				result.Skipped++
				continue
			}
			batch = append(batch, row)
		}
		return batch, nil
	}, result)
}

func (im *Importer) processBatches(ctx context.Context, readBatch func() ([]PageMetrics, error), result *ImportResult) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := readBatch()
		if err != nil {
			return fmt.Errorf("failed to read batch: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		result.TotalRecords += int64(len(batch))

		if _, err := im.store.InsertBatch(ctx, batch); err != nil {
			im.logger.Error("Batch insert failed", zap.Error(err))
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Imported += int64(len(batch))
	}

	return nil
}
