package api

import (
	"encoding/json"
	"net/http"

	"github.com/alphogen/video-runner/internal/worker"
)

// StatsProvider exposes worker counters to the ops endpoints.
type StatsProvider interface {
	Stats() worker.Stats
}

// Handler serves the worker's small ops surface: liveness and counters for
// the dashboard poller.
type Handler struct {
	stats StatsProvider
}

func NewHandler(stats StatsProvider) *Handler {
	return &Handler{stats: stats}
}

// Health is the liveness endpoint, public and unauthenticated.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats reports worker counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stats.Stats())
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
