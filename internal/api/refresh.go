package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"wikiscope/pkg/store"
)

// refreshTimeout caps a manually triggered fetch round.
const refreshTimeout = 5 * time.Minute

// Refresher triggers dataset fetches.
type Refresher interface {
	RefreshDataset(ctx context.Context, dataset string) error
	RefreshAll(ctx context.Context) error
}

// RefreshHandler triggers refreshes from the dashboard.
type RefreshHandler struct {
	refresher Refresher
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(rf Refresher) *RefreshHandler {
	return &RefreshHandler{refresher: rf}
}

// ServeHTTP handles POST /api/refresh. An optional dataset param limits
// the round to one dataset. The fetch runs detached from the request;
// the response only acknowledges the trigger.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dataset := r.URL.Query().Get("dataset")
	switch dataset {
	case "", store.DatasetSites, store.DatasetTimeline, store.DatasetGender:
	default:
		http.Error(w, fmt.Sprintf("unknown dataset %q", dataset), http.StatusBadRequest)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		var err error
		if dataset != "" {
			err = h.refresher.RefreshDataset(ctx, dataset)
		} else {
			err = h.refresher.RefreshAll(ctx)
		}
		if err != nil {
			slog.Error("Manual refresh failed", "dataset", dataset, "error", err)
		}
	}()

	resp := map[string]string{"status": "refresh started"}
	if dataset != "" {
		resp["dataset"] = dataset
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to write refresh response", "error", err)
	}
}
