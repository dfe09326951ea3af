package telemetry

import (
	"sort"

	"github.com/ykamio/contentops/internal/config"
)

// FindUnderperforming selects pages worth rewriting: ranked within the
// configured position window (close enough to page one to gain from a
// rewrite) with enough impressions to matter. Rows are aggregated per page;
// the page position is the impressions-weighted average across its queries.
func FindUnderperforming(rows []PageMetrics, cfg config.TelemetryConfig) []Candidate {
	type pageAgg struct {
		queries     []PageMetrics
		impressions int64
		weightedPos float64
	}

	pages := make(map[string]*pageAgg)
	order := make([]string, 0)

	for _, row := range rows {
		if row.Page == "" || row.Impressions <= 0 {
			continue
		}

		agg, ok := pages[row.Page]
		if !ok {
			agg = &pageAgg{}
			pages[row.Page] = agg
			order = append(order, row.Page)
		}

		agg.queries = append(agg.queries, row)
		agg.impressions += row.Impressions
		agg.weightedPos += row.Position * float64(row.Impressions)
	}

	candidates := make([]Candidate, 0, len(pages))
	for _, page := range order {
		agg := pages[page]
		position := agg.weightedPos / float64(agg.impressions)

		if agg.impressions < cfg.MinImpressions {
			continue
		}
		if position < cfg.MinPosition || position > cfg.MaxPosition {
			continue
		}

		sort.SliceStable(agg.queries, func(i, j int) bool {
			return agg.queries[i].Impressions > agg.queries[j].Impressions
		})

		queries := make([]string, 0, len(agg.queries))
		for _, q := range agg.queries {
			if q.Query != "" {
				queries = append(queries, q.Query)
			}
		}

		candidates = append(candidates, Candidate{
			Page:        page,
			Queries:     queries,
			Impressions: agg.impressions,
			Position:    position,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Impressions > candidates[j].Impressions
	})

	return candidates
}
