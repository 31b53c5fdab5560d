package api

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"wikiscope/internal/ui"
	"wikiscope/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, mapH *MapHandler, seriesH *SeriesHandler, summaryH *SummaryHandler, statsH *StatsHandler, fetchesH *FetchesHandler, liveH *LiveHandler, refreshH *RefreshHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 1b. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Map Endpoints
	mux.HandleFunc("GET /api/map/points", mapH.HandlePoints)
	mux.HandleFunc("GET /api/map/clusters", mapH.HandleClusters)

	// 3. Chart Series Endpoints
	mux.HandleFunc("GET /api/timeline", seriesH.HandleTimeline)
	mux.HandleFunc("GET /api/gender", seriesH.HandleGender)

	// 4. Article Summary Endpoint
	mux.HandleFunc("GET /api/summary", summaryH.HandleSummary)

	// 5. Operational Endpoints
	mux.Handle("GET /api/stats", statsH)
	mux.HandleFunc("GET /api/fetches", fetchesH.HandleFetches)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 6. Live Refresh Feed
	mux.Handle("GET /api/live", liveH)

	// 7. Manual Refresh Trigger
	mux.Handle("POST /api/refresh", refreshH)

	// 8. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	// 9. Static Frontend Serving (SPA)
	// We need to serve from the "dist" subdirectory of the embedded FS
	distFS, err := fs.Sub(ui.DistFS, "dist")
	if err != nil {
		panic(fmt.Sprintf("Failed to subtree dist from embedded assets: %v", err))
	}

	spaFS := &spaFileSystem{root: http.FS(distFS)}
	mux.Handle("/", http.FileServer(spaFS))

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}

// writeStale marks responses that were served from the last stored
// snapshot because the live query failed.
func writeStale(w http.ResponseWriter, stale bool) {
	if stale {
		w.Header().Set("X-Wikiscope-Stale", "true")
	}
}
