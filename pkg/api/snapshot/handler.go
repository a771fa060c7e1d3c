// Package snapshot exposes persisted snapshot runs over a small read-only
// HTTP API.
package snapshot

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/store"
)

// Handler serves snapshot runs from the store.
type Handler struct {
	repo *store.SnapshotRepo
}

// NewHandler builds a handler over the shared database pool.
func NewHandler() *Handler {
	return &Handler{repo: store.NewSnapshotRepo()}
}

// HandleHealth responds to GET /api/health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleRuns responds to GET /api/runs with the most recent runs.
func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	runs, err := h.repo.ListRuns(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list runs")
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// HandleRunCoverage responds to GET /api/runs/{id}/coverage.
func (h *Handler) HandleRunCoverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// Path shape: /api/runs/{id}/coverage
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[3] != "coverage" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	runID := parts[2]

	coverage, err := h.repo.LoadCoverage(r.Context(), runID)
	if err != nil {
		log.Warn().Err(err).Str("run_id", runID).Msg("coverage lookup failed")
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, coverage)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
