package wikidata

import (
	"context"
	"time"

	"wikiscope/pkg/cache"
	"wikiscope/pkg/sparql"
	"wikiscope/pkg/tracker"
)

// DefaultTTL is how long a cached query result stays fresh unless the
// caller overrides it per call.
const DefaultTTL = 60 * time.Minute

// providerWikidata labels cache counters in the tracker; it matches the
// provider name the request layer derives from the endpoint host.
const providerWikidata = "wikidata"

// CachedClient memoizes a Querier's results in a TTL cache keyed by the
// verbatim query text. It wraps the plain client, never the Retrier:
// a miss performs exactly one fetch attempt. Failed fetches are not
// cached; the next call tries the network again.
type CachedClient struct {
	querier Querier
	cache   *cache.QueryCache
	tracker *tracker.Tracker
	ttl     time.Duration
}

// NewCachedClient wraps q with qc. A ttl <= 0 falls back to DefaultTTL.
func NewCachedClient(q Querier, qc *cache.QueryCache, tr *tracker.Tracker, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedClient{querier: q, cache: qc, tracker: tr, ttl: ttl}
}

// Query returns cached bindings while a live entry exists, fetching and
// storing otherwise. Uses the client's default TTL.
func (c *CachedClient) Query(ctx context.Context, query string) ([]sparql.Binding, error) {
	return c.QueryTTL(ctx, query, c.ttl)
}

// QueryTTL is Query with a per-call TTL override. A zero ttl makes the
// call an unconditional fetch (the result is still stored for callers
// with a longer horizon).
func (c *CachedClient) QueryTTL(ctx context.Context, query string, ttl time.Duration) ([]sparql.Binding, error) {
	if data, ok := c.cache.Get(query, ttl); ok {
		c.tracker.TrackCacheHit(providerWikidata)
		return data, nil
	}
	c.tracker.TrackCacheMiss(providerWikidata)

	data, err := c.querier.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	c.cache.Put(query, data)
	return data, nil
}

// CacheLen reports the number of stored entries for the stats endpoint.
func (c *CachedClient) CacheLen() int {
	return c.cache.Len()
}
