package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"wikiscope/pkg/wikipedia"
)

// SummaryProvider fetches article intro extracts.
type SummaryProvider interface {
	GetSummary(ctx context.Context, title, lang string) (*wikipedia.Summary, error)
}

// SummaryHandler serves Wikipedia summaries for the map popups.
type SummaryHandler struct {
	wiki SummaryProvider
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(p SummaryProvider) *SummaryHandler {
	return &SummaryHandler{wiki: p}
}

// HandleSummary handles GET /api/summary?title=T&lang=xx.
func (h *SummaryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	lang := r.URL.Query().Get("lang")

	summary, err := h.wiki.GetSummary(r.Context(), title, lang)
	if err != nil {
		if errors.Is(err, wikipedia.ErrNotFound) {
			http.Error(w, "article not found", http.StatusNotFound)
			return
		}
		slog.Error("Summary fetch failed", "title", title, "error", err)
		http.Error(w, "failed to fetch summary", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		slog.Error("Failed to encode summary", "error", err)
	}
}
