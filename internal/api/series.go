package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"wikiscope/pkg/aggregate"
)

// SeriesProvider supplies the chart series.
type SeriesProvider interface {
	Timeline(ctx context.Context) ([]aggregate.Bucket, bool, error)
	GenderShares(ctx context.Context) ([]aggregate.GenderBucket, bool, error)
}

// SeriesHandler serves the per-decade chart data.
type SeriesHandler struct {
	provider SeriesProvider
}

// NewSeriesHandler creates a new SeriesHandler.
func NewSeriesHandler(p SeriesProvider) *SeriesHandler {
	return &SeriesHandler{provider: p}
}

// HandleTimeline handles GET /api/timeline.
func (h *SeriesHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	buckets, stale, err := h.provider.Timeline(r.Context())
	if err != nil {
		http.Error(w, "failed to fetch timeline", http.StatusInternalServerError)
		return
	}

	writeStale(w, stale)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(buckets); err != nil {
		slog.Error("Failed to encode timeline", "error", err)
	}
}

// HandleGender handles GET /api/gender.
func (h *SeriesHandler) HandleGender(w http.ResponseWriter, r *http.Request) {
	buckets, stale, err := h.provider.GenderShares(r.Context())
	if err != nil {
		http.Error(w, "failed to fetch gender shares", http.StatusInternalServerError)
		return
	}

	writeStale(w, stale)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(buckets); err != nil {
		slog.Error("Failed to encode gender shares", "error", err)
	}
}
