package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ykamio/contentops/internal/config"
	"github.com/ykamio/contentops/internal/logger"
)

func TestNotifier(t *testing.T) {
	t.Run("PostRunSummary", func(t *testing.T) {
		var got webhookPayload
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %s", ct)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		n := New(config.NotifyConfig{
			Enabled:    true,
			WebhookURL: ts.URL,
			Channel:    "#content-ops",
			Username:   "contentops",
		}, logger.Nop())

		summary := RunSummary{
			RunID:      "run-123",
			Duration:   95 * time.Second,
			Candidates: 3,
			Rewritten:  2,
			Failed:     1,
			AvgScore:   78.5,
			Articles: []ArticleLine{
				{URL: "/a", TitleAfter: "改善後タイトル", QualityScore: 80, Redactions: 2},
				{URL: "/b", Err: errors.New("fetch failed")},
			},
		}

		if err := n.PostRunSummary(context.Background(), summary); err != nil {
			t.Fatalf("PostRunSummary: %v", err)
		}
		if got.Channel != "#content-ops" || got.Username != "contentops" {
			t.Errorf("channel/username = %q/%q", got.Channel, got.Username)
		}
		for _, want := range []string{"run-123", "完了: 2件", "失敗: 1件", "78.5", "改善後タイトル", "fetch failed"} {
			if !strings.Contains(got.Text, want) {
				t.Errorf("text missing %q:\n%s", want, got.Text)
			}
		}
	})

	t.Run("DisabledIsNoop", func(t *testing.T) {
		called := false
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer ts.Close()

		n := New(config.NotifyConfig{Enabled: false, WebhookURL: ts.URL}, logger.Nop())
		if err := n.PostRunSummary(context.Background(), RunSummary{RunID: "x"}); err != nil {
			t.Fatalf("disabled notifier returned error: %v", err)
		}
		if called {
			t.Error("disabled notifier hit the webhook")
		}
	})

	t.Run("NonOKStatusIsError", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid_payload", http.StatusBadRequest)
		}))
		defer ts.Close()

		n := New(config.NotifyConfig{Enabled: true, WebhookURL: ts.URL}, logger.Nop())
		if err := n.PostError(context.Background(), "run-1", errors.New("boom")); err == nil {
			t.Fatal("expected error for non-200 response")
		}
	})
}
