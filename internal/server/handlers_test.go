package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ykamio/contentops/internal/anonymize"
	"github.com/ykamio/contentops/internal/articles"
	"github.com/ykamio/contentops/internal/config"
	"github.com/ykamio/contentops/internal/logger"
	"github.com/ykamio/contentops/internal/pipeline"
	"github.com/ykamio/contentops/internal/telemetry"
	"github.com/ykamio/contentops/internal/websocket"
)

type fakeTrigger struct {
	running    bool
	candidates []telemetry.Candidate
	runCalled  chan struct{}
}

func (f *fakeTrigger) Run(ctx context.Context) (*pipeline.RunResult, error) {
	if f.runCalled != nil {
		close(f.runCalled)
	}
	return &pipeline.RunResult{RunID: "run-1"}, nil
}

func (f *fakeTrigger) SelectCandidates(ctx context.Context) ([]telemetry.Candidate, error) {
	return f.candidates, nil
}

func (f *fakeTrigger) Running() bool { return f.running }

type fakeLister struct {
	records []articles.RewriteRecord
}

func (f *fakeLister) RecentRewrites(ctx context.Context, limit int) ([]articles.RewriteRecord, error) {
	if limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func newTestServer(trigger RunTrigger, lister RewriteLister) *Server {
	log := logger.Nop()
	cfg := config.GetDefaults()
	hub := websocket.NewHub(cfg.WebSocket, log.Logger)
	return New(cfg, anonymize.New(log), trigger, lister, hub, log)
}

func TestHandleAnonymize(t *testing.T) {
	s := newTestServer(&fakeTrigger{}, &fakeLister{})

	t.Run("SanitizesContentAndRecords", func(t *testing.T) {
		body := `{
			"content": "Project Xの件は田中部長(tanaka@corp.jp)まで。",
			"records": [{"title": "Project X", "category": "strategic", "isConfidential": true, "isPublic": false}]
		}`

		req := httptest.NewRequest(http.MethodPost, "/api/anonymize", strings.NewReader(body))
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		var resp anonymizeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if strings.Contains(resp.Anonymized, "Project X") {
			t.Errorf("confidential record survived: %s", resp.Anonymized)
		}
		if !strings.Contains(resp.Anonymized, "経営戦略情報") {
			t.Errorf("category label missing: %s", resp.Anonymized)
		}
		if strings.Contains(resp.Anonymized, "tanaka@corp.jp") {
			t.Errorf("email survived: %s", resp.Anonymized)
		}
		if resp.Report.ChangedCount < 1 {
			t.Errorf("report changed count = %d", resp.Report.ChangedCount)
		}
	})

	t.Run("EmptyContentRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/anonymize", strings.NewReader(`{"content":""}`))
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("MalformedJSONRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/anonymize", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandleRun(t *testing.T) {
	t.Run("StartsBackgroundRun", func(t *testing.T) {
		trigger := &fakeTrigger{runCalled: make(chan struct{})}
		s := newTestServer(trigger, &fakeLister{})

		req := httptest.NewRequest(http.MethodPost, "/api/run", nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", rec.Code)
		}
		select {
		case <-trigger.runCalled:
		case <-time.After(2 * time.Second):
			t.Fatal("background run never started")
		}
	})

	t.Run("ConflictWhileRunning", func(t *testing.T) {
		s := newTestServer(&fakeTrigger{running: true}, &fakeLister{})

		req := httptest.NewRequest(http.MethodPost, "/api/run", nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})
}

func TestHandleCandidates(t *testing.T) {
	trigger := &fakeTrigger{candidates: []telemetry.Candidate{
		{Page: "/a", Queries: []string{"引越し 費用"}, Impressions: 500, Position: 12},
	}}
	s := newTestServer(trigger, &fakeLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/candidates", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Count      int                   `json:"count"`
		Candidates []telemetry.Candidate `json:"candidates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Candidates[0].Page != "/a" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandleRewrites(t *testing.T) {
	lister := &fakeLister{records: []articles.RewriteRecord{
		{ID: 1, RunID: "run-1", TitleAfter: "改善後"},
		{ID: 2, RunID: "run-1", TitleAfter: "改善後2"},
	}}
	s := newTestServer(&fakeTrigger{}, lister)

	t.Run("DefaultLimit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/rewrites", nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"count":2`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("LimitApplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/rewrites?limit=1", nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if !strings.Contains(rec.Body.String(), `"count":1`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("InvalidLimitRejected", func(t *testing.T) {
		for _, raw := range []string{"0", "-5", "9999", "abc"} {
			req := httptest.NewRequest(http.MethodGet, "/api/rewrites?limit="+raw, nil)
			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("limit=%s: status = %d, want 400", raw, rec.Code)
			}
		}
	})
}

func TestHealthAndInfo(t *testing.T) {
	s := newTestServer(&fakeTrigger{}, &fakeLister{})

	t.Run("Health", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
			t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Info", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/info", nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["name"] != "contentops" {
			t.Errorf("name = %v", resp["name"])
		}
		if resp["rules"].(float64) != 7 {
			t.Errorf("rules = %v, want 7", resp["rules"])
		}
	})
}
