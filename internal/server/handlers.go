package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ykamio/contentops/internal/anonymize"
	"go.uber.org/zap"
)

const version = "0.1.0"

// anonymizeRequest is the POST /api/anonymize payload. Records are optional;
// when present they are purged before the standing rules run.
type anonymizeRequest struct {
	Content string                         `json:"content"`
	Records []anonymize.ConfidentialRecord `json:"records,omitempty"`
}

type anonymizeResponse struct {
	Anonymized string           `json:"anonymized"`
	Report     anonymize.Report `json:"report"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":            "contentops",
		"version":         version,
		"rules":           len(s.engine.Rules()),
		"batch_size":      s.config.Rewrite.BatchSize,
		"run_in_progress": s.runner != nil && s.runner.Running(),
	})
}

func (s *Server) handleAnonymize(w http.ResponseWriter, r *http.Request) {
	var req anonymizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	anonymized := s.engine.Anonymize(req.Content, req.Records)
	report := s.engine.GenerateReport(req.Content, anonymized)

	writeJSON(w, http.StatusOK, anonymizeResponse{
		Anonymized: anonymized,
		Report:     report,
	})
}

func (s *Server) handleRewrites(w http.ResponseWriter, r *http.Request) {
	if s.rewrites == nil {
		writeError(w, http.StatusServiceUnavailable, "rewrite history is not available")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = parsed
	}

	records, err := s.rewrites.RecentRewrites(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list rewrites", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list rewrites")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rewrites": records,
		"count":    len(records),
	})
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline is not available")
		return
	}

	candidates, err := s.runner.SelectCandidates(r.Context())
	if err != nil {
		s.logger.Error("Failed to select candidates", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to select candidates")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// handleRun triggers a batch run in the background. A run already in
// progress is reported as a conflict.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline is not available")
		return
	}
	if s.runner.Running() {
		writeError(w, http.StatusConflict, "a rewrite run is already in progress")
		return
	}

	go func() {
		// The run outlives the HTTP request that triggered it.
		result, err := s.runner.Run(context.Background())
		if err != nil {
			s.logger.Error("Background run failed", zap.Error(err))
			return
		}
		s.logger.Info("Background run finished",
			zap.String("run_id", result.RunID),
			zap.Int("rewritten", result.Rewritten),
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
