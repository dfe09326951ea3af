package telemetry

import (
	"strings"
	"time"
)

// PageMetrics is one page/query row of search-ranking telemetry.
type PageMetrics struct {
	Page        string  `csv:"page" parquet:"page" json:"page" db:"page"`
	Query       string  `csv:"query" parquet:"query" json:"query" db:"query"`
	Clicks      int64   `csv:"clicks" parquet:"clicks" json:"clicks" db:"clicks"`
	Impressions int64   `csv:"impressions" parquet:"impressions" json:"impressions" db:"impressions"`
	CTR         float64 `csv:"ctr" parquet:"ctr" json:"ctr" db:"ctr"`
	Position    float64 `csv:"position" parquet:"position" json:"position" db:"position"`
}

// Candidate is a page selected for rewriting, with the queries it
// underperforms for ordered by impressions.
type Candidate struct {
	Page        string   `json:"page"`
	Queries     []string `json:"queries"`
	Impressions int64    `json:"impressions"`
	Position    float64  `json:"position"`
}

// ImportResult summarizes a telemetry export import run.
type ImportResult struct {
	TotalRecords int64         `json:"total_records"`
	Imported     int64         `json:"imported"`
	Skipped      int64         `json:"skipped"`
	Duration     time.Duration `json:"duration"`
	Errors       []string      `json:"errors,omitempty"`
}

// FileFormat represents supported export file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
)

// DetectFileFormat detects file format from extension
func DetectFileFormat(filename string) FileFormat {
	switch {
	case strings.HasSuffix(filename, ".parquet"):
		return FormatParquet
	case strings.HasSuffix(filename, ".json"), strings.HasSuffix(filename, ".jsonl"):
		return FormatJSON
	default:
		return FormatCSV
	}
}
