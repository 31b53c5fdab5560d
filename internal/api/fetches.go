package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"wikiscope/pkg/store"
)

// FetchesHandler serves the refresh audit log.
type FetchesHandler struct {
	store store.FetchLogStore
}

// NewFetchesHandler creates a new FetchesHandler.
func NewFetchesHandler(st store.FetchLogStore) *FetchesHandler {
	return &FetchesHandler{store: st}
}

// HandleFetches handles GET /api/fetches. The optional limit param caps
// the number of rows; the store default applies otherwise.
func (h *FetchesHandler) HandleFetches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	fetches, err := h.store.RecentFetches(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to read fetch log", http.StatusInternalServerError)
		return
	}
	if fetches == nil {
		fetches = []store.FetchRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(fetches); err != nil {
		slog.Error("Failed to encode fetch log", "error", err)
	}
}
