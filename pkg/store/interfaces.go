package store

import (
	"context"
	"time"
)

// Dataset names. They key the snapshots table and label fetch-log rows.
const (
	DatasetSites    = "sites"
	DatasetTimeline = "timeline"
	DatasetGender   = "gender"
)

// Datasets lists every known dataset in refresh order.
var Datasets = []string{DatasetSites, DatasetTimeline, DatasetGender}

// Fetch statuses recorded in the log.
const (
	FetchOK    = "ok"
	FetchError = "error"
)

// Snapshot is the last successful result of one dataset, its rows
// marshaled as JSON.
type Snapshot struct {
	Dataset   string
	Data      []byte
	Rows      int
	FetchedAt time.Time
}

// SnapshotInfo describes a snapshot without carrying its payload.
type SnapshotInfo struct {
	Dataset   string    `json:"dataset"`
	Rows      int       `json:"rows"`
	FetchedAt time.Time `json:"fetched_at"`
}

// FetchRecord is one audit row for a refresh attempt, successful or not.
type FetchRecord struct {
	ID         string    `json:"id"`
	Dataset    string    `json:"dataset"`
	Status     string    `json:"status"`
	Rows       int       `json:"rows"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SnapshotStore persists the last good rows per dataset.
type SnapshotStore interface {
	// GetSnapshot returns nil without error when no snapshot exists.
	GetSnapshot(ctx context.Context, dataset string) (*Snapshot, error)
	// SaveSnapshot upserts; each dataset keeps exactly one snapshot.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)
}

// FetchLogStore appends to and reads the refresh audit log.
type FetchLogStore interface {
	// AddFetch assigns a UUID when rec.ID is empty.
	AddFetch(ctx context.Context, rec *FetchRecord) error
	// RecentFetches returns up to limit rows, newest first.
	RecentFetches(ctx context.Context, limit int) ([]FetchRecord, error)
}

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}
