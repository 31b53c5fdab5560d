package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"wikiscope/pkg/db"
)

// Store defines the repository interface.
// It composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	SnapshotStore
	FetchLogStore
	StateStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Snapshots ---

func (s *SQLiteStore) GetSnapshot(ctx context.Context, dataset string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT dataset, data, rows, fetched_at FROM snapshots WHERE dataset = ?`, dataset)

	var snap Snapshot
	err := row.Scan(&snap.Dataset, &snap.Data, &snap.Rows, &snap.FetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &snap, nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	query := `INSERT OR REPLACE INTO snapshots (dataset, data, rows, fetched_at)
		VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, snap.Dataset, snap.Data, snap.Rows, fetchedAt)
	return err
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dataset, rows, fetched_at FROM snapshots ORDER BY dataset`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.Dataset, &info.Rows, &info.FetchedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// --- Fetch log ---

func (s *SQLiteStore) AddFetch(ctx context.Context, rec *FetchRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO fetch_log (id, dataset, status, rows, duration_ms, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Dataset, rec.Status, rec.Rows, rec.DurationMS, rec.Error, createdAt,
	)
	return err
}

func (s *SQLiteStore) RecentFetches(ctx context.Context, limit int) ([]FetchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, dataset, status, rows, duration_ms, error, created_at
		 FROM fetch_log ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []FetchRecord
	for rows.Next() {
		var rec FetchRecord
		if err := rows.Scan(&rec.ID, &rec.Dataset, &rec.Status, &rec.Rows,
			&rec.DurationMS, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}
