// Package maintenance runs startup housekeeping on the database.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"wikiscope/pkg/db"
	"wikiscope/pkg/store"
)

const lastPruneStateKey = "fetch_log_last_prune"

// pruneInterval decides how often pruning actually runs; server starts
// in between skip it.
const pruneInterval = 24 * time.Hour

// Run executes all maintenance tasks and blocks until completion. Task
// failures are logged but never fatal: the server can come up with a
// bloated fetch log.
func Run(ctx context.Context, s store.Store, d *db.DB, retention time.Duration) error {
	slog.Info("Starting database maintenance...")

	if err := pruneFetchLog(ctx, s, d, retention); err != nil {
		slog.Error("Fetch log pruning failed", "error", err)
	} else {
		slog.Info("Fetch log pruning completed")
	}

	return nil
}

// pruneFetchLog drops audit rows older than retention, at most once per
// pruneInterval. The last run is tracked in persistent state.
func pruneFetchLog(ctx context.Context, s store.Store, d *db.DB, retention time.Duration) error {
	if retention <= 0 {
		return nil // Retention disabled
	}

	if stamp, found := s.GetState(ctx, lastPruneStateKey); found {
		if last, err := time.Parse(time.RFC3339, stamp); err == nil && time.Since(last) < pruneInterval {
			return nil // Pruned recently
		}
	}

	if err := d.PruneFetchLog(retention); err != nil {
		return err
	}

	return s.SetState(ctx, lastPruneStateKey, time.Now().UTC().Format(time.RFC3339))
}
