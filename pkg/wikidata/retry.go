package wikidata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wikiscope/pkg/request"
	"wikiscope/pkg/sparql"
)

// DefaultMaxRetries bounds how many attempts the Retrier makes before
// giving up on a rate-limited endpoint.
const DefaultMaxRetries = 3

// Retrier wraps a Querier with bounded exponential backoff, retrying
// only on HTTP 429. Any other failure propagates immediately. It is a
// standalone utility: nothing in the server composes it with the query
// cache. Callers that want both can stack them by hand since all the
// wrappers satisfy Querier.
type Retrier struct {
	querier    Querier
	maxRetries int

	// BaseDelay scales the backoff: the wait after failed attempt n
	// (1-based) is 2^n x BaseDelay, so 2s, 4s, 8s... at the default 1s.
	// No jitter.
	BaseDelay time.Duration

	// sleep is swapped in tests to record waits instead of taking them.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier wraps q. A maxRetries <= 0 falls back to DefaultMaxRetries.
func NewRetrier(q Querier, maxRetries int) *Retrier {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Retrier{
		querier:    q,
		maxRetries: maxRetries,
		BaseDelay:  time.Second,
		sleep:      sleepContext,
	}
}

// Query attempts the query until it succeeds, fails with anything other
// than a 429, or the attempt budget runs out. Exhaustion fails with
// ErrMaxRetries wrapping the last rate-limit error.
func (r *Retrier) Query(ctx context.Context, query string) ([]sparql.Binding, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		data, err := r.querier.Query(ctx, query)
		if err == nil {
			return data, nil
		}
		if !request.IsRateLimited(err) {
			return nil, err
		}
		lastErr = err

		if attempt == r.maxRetries {
			break
		}
		delay := r.BaseDelay * (1 << attempt)
		slog.Warn("Rate limited, backing off", "attempt", attempt, "max", r.maxRetries, "delay", delay)
		if err := r.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %d attempts: %w", ErrMaxRetries, r.maxRetries, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
