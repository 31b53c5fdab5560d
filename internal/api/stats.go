package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"wikiscope/pkg/store"
	"wikiscope/pkg/tracker"
)

// StatsHandler reports provider counters, the query cache size and the
// age of each stored snapshot.
type StatsHandler struct {
	tracker  *tracker.Tracker
	cacheLen func() int
	store    store.SnapshotStore
}

// NewStatsHandler creates a new StatsHandler. cacheLen reports the
// current number of cached query results.
func NewStatsHandler(t *tracker.Tracker, cacheLen func() int, st store.SnapshotStore) *StatsHandler {
	return &StatsHandler{
		tracker:  t,
		cacheLen: cacheLen,
		store:    st,
	}
}

type ProviderStatsDTO struct {
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	APISuccess    int64 `json:"api_success"`
	APIZeroResult int64 `json:"api_zero"`
	APIFailures   int64 `json:"api_errors"`
	RateLimited   int64 `json:"rate_limited"`
	HitRate       int64 `json:"hit_rate"`
}

type SnapshotDTO struct {
	Dataset    string    `json:"dataset"`
	Rows       int       `json:"rows"`
	FetchedAt  time.Time `json:"fetched_at"`
	AgeSeconds int64     `json:"age_seconds"`
}

type StatsResponse struct {
	Providers    map[string]ProviderStatsDTO `json:"providers"`
	CacheEntries int                         `json:"cache_entries"`
	Snapshots    []SnapshotDTO               `json:"snapshots"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	resp := StatsResponse{
		Providers:    make(map[string]ProviderStatsDTO),
		CacheEntries: h.cacheLen(),
		Snapshots:    []SnapshotDTO{},
	}

	for provider, stats := range snapshot {
		totalCache := stats.CacheHits + stats.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (stats.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = ProviderStatsDTO{
			CacheHits:     stats.CacheHits,
			CacheMisses:   stats.CacheMisses,
			APISuccess:    stats.APISuccess,
			APIZeroResult: stats.APIZeroResult,
			APIFailures:   stats.APIFailures,
			RateLimited:   stats.RateLimited,
			HitRate:       hitRate,
		}
	}

	infos, err := h.store.ListSnapshots(r.Context())
	if err != nil {
		slog.Error("Failed to list snapshots", "error", err)
	}
	now := time.Now()
	for _, info := range infos {
		resp.Snapshots = append(resp.Snapshots, SnapshotDTO{
			Dataset:    info.Dataset,
			Rows:       info.Rows,
			FetchedAt:  info.FetchedAt,
			AgeSeconds: int64(now.Sub(info.FetchedAt).Seconds()),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
