// Package dashboard orchestrates the data layer behind the API: it
// turns SPARQL fetches into view-ready datasets, persists snapshots for
// degraded serving, and drives the background refresh loop.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"wikiscope/pkg/aggregate"
	"wikiscope/pkg/sparql"
	"wikiscope/pkg/store"
	"wikiscope/pkg/tracker"
	"wikiscope/pkg/wikidata"
)

const providerWikidata = "wikidata"

// Querier runs SPARQL queries, normally through the query cache.
type Querier interface {
	Query(ctx context.Context, query string) ([]sparql.Binding, error)
	// QueryTTL overrides the cache TTL per call; 0 forces a fetch.
	QueryTTL(ctx context.Context, query string, ttl time.Duration) ([]sparql.Binding, error)
}

// Config tunes the datasets and the refresh loop.
type Config struct {
	Limit             int
	Language          string
	ClusterResolution int
	RefreshInterval   time.Duration
	RefreshOnStart    bool
}

// Service aggregates query, persistence and notification concerns for
// the three dashboard datasets.
type Service struct {
	querier Querier
	store   store.Store
	tracker *tracker.Tracker
	hub     *Hub
	cfg     Config
	logger  *slog.Logger
}

// NewService wires the dashboard service. Zero config fields fall back
// to sensible defaults.
func NewService(q Querier, st store.Store, tr *tracker.Tracker, hub *Hub, cfg Config, logger *slog.Logger) *Service {
	if cfg.Limit <= 0 {
		cfg.Limit = 500
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Hour
	}
	return &Service{
		querier: q,
		store:   st,
		tracker: tr,
		hub:     hub,
		cfg:     cfg,
		logger:  logger,
	}
}

// Hub exposes the refresh event hub for the live endpoint.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Sites returns the mappable discovery sites. The bool flags stale
// data: a fetch failure answered from the last snapshot.
func (s *Service) Sites(ctx context.Context) ([]wikidata.Site, bool, error) {
	sites, err := s.fetchSites(ctx, false)
	if err != nil {
		var cached []wikidata.Site
		if s.loadSnapshot(ctx, store.DatasetSites, &cached) {
			s.logger.Warn("Serving stale sites", "error", err)
			return cached, true, nil
		}
		return nil, false, err
	}
	return sites, false, nil
}

// Timeline returns the decade histogram of dated discoveries.
func (s *Service) Timeline(ctx context.Context) ([]aggregate.Bucket, bool, error) {
	buckets, err := s.fetchTimeline(ctx, false)
	if err != nil {
		var cached []aggregate.Bucket
		if s.loadSnapshot(ctx, store.DatasetTimeline, &cached) {
			s.logger.Warn("Serving stale timeline", "error", err)
			return cached, true, nil
		}
		return nil, false, err
	}
	return buckets, false, nil
}

// GenderShares returns the per-decade discoverer gender series.
func (s *Service) GenderShares(ctx context.Context) ([]aggregate.GenderBucket, bool, error) {
	buckets, err := s.fetchGenderShares(ctx, false)
	if err != nil {
		var cached []aggregate.GenderBucket
		if s.loadSnapshot(ctx, store.DatasetGender, &cached) {
			s.logger.Warn("Serving stale gender shares", "error", err)
			return cached, true, nil
		}
		return nil, false, err
	}
	return buckets, false, nil
}

// Clusters aggregates the current sites into H3 cells. A negative res
// selects the configured resolution.
func (s *Service) Clusters(ctx context.Context, res int) ([]Cluster, bool, error) {
	if res < 0 {
		res = s.cfg.ClusterResolution
	}
	sites, stale, err := s.Sites(ctx)
	if err != nil {
		return nil, false, err
	}
	clusters, err := ClusterSites(sites, res)
	if err != nil {
		return nil, false, err
	}
	return clusters, stale, nil
}

// RefreshDataset force-fetches one dataset past the cache, persists the
// snapshot, records a fetch-log row and notifies subscribers. Failed
// attempts are logged too; they never touch the previous snapshot.
func (s *Service) RefreshDataset(ctx context.Context, dataset string) error {
	start := time.Now()

	var payload any
	var rows int
	var err error
	switch dataset {
	case store.DatasetSites:
		var sites []wikidata.Site
		sites, err = s.fetchSites(ctx, true)
		payload, rows = sites, len(sites)
	case store.DatasetTimeline:
		var buckets []aggregate.Bucket
		buckets, err = s.fetchTimeline(ctx, true)
		payload, rows = buckets, len(buckets)
	case store.DatasetGender:
		var buckets []aggregate.GenderBucket
		buckets, err = s.fetchGenderShares(ctx, true)
		payload, rows = buckets, len(buckets)
	default:
		return fmt.Errorf("unknown dataset %q", dataset)
	}

	durMS := time.Since(start).Milliseconds()
	if err != nil {
		s.logger.Error("Dataset refresh failed", "dataset", dataset, "error", err)
		s.addFetchRecord(ctx, &store.FetchRecord{
			Dataset: dataset, Status: store.FetchError, DurationMS: durMS, Error: err.Error(),
		})
		return err
	}

	if rows == 0 {
		s.tracker.TrackAPIZero(providerWikidata)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s snapshot: %w", dataset, err)
	}
	fetchedAt := time.Now().UTC()
	if err := s.store.SaveSnapshot(ctx, &store.Snapshot{
		Dataset: dataset, Data: data, Rows: rows, FetchedAt: fetchedAt,
	}); err != nil {
		return fmt.Errorf("save %s snapshot: %w", dataset, err)
	}
	s.addFetchRecord(ctx, &store.FetchRecord{
		Dataset: dataset, Status: store.FetchOK, Rows: rows, DurationMS: durMS,
	})

	s.hub.Publish(Event{Dataset: dataset, Rows: rows, FetchedAt: fetchedAt})
	s.logger.Info("Dataset refreshed", "dataset", dataset, "rows", rows, "duration_ms", durMS)
	return nil
}

// RefreshAll refreshes every dataset concurrently. A failing dataset
// does not cancel its siblings; the first error is returned.
func (s *Service) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	for _, dataset := range store.Datasets {
		g.Go(func() error {
			return s.RefreshDataset(ctx, dataset)
		})
	}
	return g.Wait()
}

// Start runs the refresh loop until ctx is canceled. Intended as a
// goroutine next to the HTTP server.
func (s *Service) Start(ctx context.Context) {
	if s.cfg.RefreshOnStart {
		if err := s.RefreshAll(ctx); err != nil {
			s.logger.Error("Initial refresh failed", "error", err)
		}
	}

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Refresh loop stopped")
			return
		case <-ticker.C:
			if err := s.RefreshAll(ctx); err != nil {
				s.logger.Error("Scheduled refresh failed", "error", err)
			}
		}
	}
}

func (s *Service) fetchSites(ctx context.Context, force bool) ([]wikidata.Site, error) {
	bindings, err := s.query(ctx, wikidata.SitesQuery(s.cfg.Limit, s.cfg.Language), force)
	if err != nil {
		return nil, err
	}
	return wikidata.MapSites(bindings), nil
}

func (s *Service) fetchTimeline(ctx context.Context, force bool) ([]aggregate.Bucket, error) {
	bindings, err := s.query(ctx, wikidata.TimelineQuery(s.cfg.Limit), force)
	if err != nil {
		return nil, err
	}
	events := wikidata.MapEvents(bindings)
	years := make([]int, len(events))
	for i, e := range events {
		years[i] = e.Year
	}
	return aggregate.CountByDecade(years), nil
}

func (s *Service) fetchGenderShares(ctx context.Context, force bool) ([]aggregate.GenderBucket, error) {
	bindings, err := s.query(ctx, wikidata.GenderQuery(s.cfg.Limit, s.cfg.Language), force)
	if err != nil {
		return nil, err
	}
	events := wikidata.MapGenderEvents(bindings)
	genderYears := make([]aggregate.GenderYear, len(events))
	for i, e := range events {
		genderYears[i] = aggregate.GenderYear{Year: e.Year, Gender: e.Gender}
	}
	return aggregate.GenderByDecade(genderYears), nil
}

func (s *Service) query(ctx context.Context, query string, force bool) ([]sparql.Binding, error) {
	if force {
		return s.querier.QueryTTL(ctx, query, 0)
	}
	return s.querier.Query(ctx, query)
}

// loadSnapshot unmarshals the stored payload for dataset into out.
func (s *Service) loadSnapshot(ctx context.Context, dataset string, out any) bool {
	snap, err := s.store.GetSnapshot(ctx, dataset)
	if err != nil || snap == nil {
		return false
	}
	if err := json.Unmarshal(snap.Data, out); err != nil {
		s.logger.Warn("Corrupt snapshot", "dataset", dataset, "error", err)
		return false
	}
	return true
}

func (s *Service) addFetchRecord(ctx context.Context, rec *store.FetchRecord) {
	if err := s.store.AddFetch(ctx, rec); err != nil {
		s.logger.Error("Failed to record fetch", "dataset", rec.Dataset, "error", err)
	}
}
