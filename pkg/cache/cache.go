// Package cache provides the in-memory TTL cache for SPARQL query
// results.
package cache

import (
	"sync"
	"time"

	"wikiscope/pkg/sparql"
)

// Entry is one stored query result.
type Entry struct {
	Timestamp time.Time
	Data      []sparql.Binding
}

// QueryCache memoizes query results keyed by the verbatim query text:
// two queries differing by a single whitespace character are distinct
// entries. An entry is live while now - Timestamp < ttl, where ttl is
// supplied at lookup time. Expired entries stay in place until the next
// Put overwrites them; there is no eviction, so the map grows with the
// number of distinct queries for the process lifetime (the dashboard
// issues a fixed handful).
//
// Now is the clock used for stamps and expiry checks; tests replace it
// to control time.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry

	Now func() time.Time
}

// New creates an empty QueryCache on the wall clock.
func New() *QueryCache {
	return &QueryCache{
		entries: make(map[string]Entry),
		Now:     time.Now,
	}
}

// Get returns the stored bindings for query if a live entry exists.
func (c *QueryCache) Get(query string, ttl time.Duration) ([]sparql.Binding, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[query]
	if !ok {
		return nil, false
	}
	if c.Now().Sub(e.Timestamp) >= ttl {
		return nil, false
	}
	return e.Data, true
}

// Put stores data under the verbatim query text, stamped with the
// current time. An existing entry, live or expired, is overwritten.
func (c *QueryCache) Put(query string, data []sparql.Binding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = Entry{Timestamp: c.Now(), Data: data}
}

// Len returns the number of stored entries, live or expired.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}
