package telemetry

import (
	"testing"

	"github.com/ykamio/contentops/internal/config"
)

func selectionConfig() config.TelemetryConfig {
	return config.TelemetryConfig{
		MinImpressions: 100,
		MinPosition:    8,
		MaxPosition:    20,
	}
}

func TestFindUnderperforming(t *testing.T) {
	t.Run("SelectsWithinPositionWindow", func(t *testing.T) {
		rows := []PageMetrics{
			{Page: "/a", Query: "q1", Impressions: 500, Position: 12.0},
			{Page: "/b", Query: "q2", Impressions: 500, Position: 2.5},  // already ranking well
			{Page: "/c", Query: "q3", Impressions: 500, Position: 45.0}, // too far to rescue
		}

		got := FindUnderperforming(rows, selectionConfig())
		if len(got) != 1 || got[0].Page != "/a" {
			t.Fatalf("expected only /a, got %+v", got)
		}
	})

	t.Run("FiltersLowImpressions", func(t *testing.T) {
		rows := []PageMetrics{
			{Page: "/a", Query: "q1", Impressions: 50, Position: 12.0},
		}
		if got := FindUnderperforming(rows, selectionConfig()); len(got) != 0 {
			t.Fatalf("expected no candidates, got %+v", got)
		}
	})

	t.Run("AggregatesPerPage", func(t *testing.T) {
		rows := []PageMetrics{
			{Page: "/a", Query: "minor", Impressions: 100, Position: 10.0},
			{Page: "/a", Query: "major", Impressions: 300, Position: 14.0},
		}

		got := FindUnderperforming(rows, selectionConfig())
		if len(got) != 1 {
			t.Fatalf("expected one candidate, got %+v", got)
		}

		c := got[0]
		if c.Impressions != 400 {
			t.Errorf("impressions = %d, want 400", c.Impressions)
		}
		// Weighted position: (10*100 + 14*300) / 400 = 13.
		if c.Position != 13.0 {
			t.Errorf("position = %f, want 13.0", c.Position)
		}
		if len(c.Queries) != 2 || c.Queries[0] != "major" {
			t.Errorf("queries should be ordered by impressions: %v", c.Queries)
		}
	})

	t.Run("OrderedByImpressions", func(t *testing.T) {
		rows := []PageMetrics{
			{Page: "/small", Query: "q", Impressions: 150, Position: 10.0},
			{Page: "/large", Query: "q", Impressions: 900, Position: 10.0},
		}

		got := FindUnderperforming(rows, selectionConfig())
		if len(got) != 2 || got[0].Page != "/large" {
			t.Fatalf("expected /large first, got %+v", got)
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		if got := FindUnderperforming(nil, selectionConfig()); len(got) != 0 {
			t.Fatalf("expected no candidates, got %+v", got)
		}
	})
}
