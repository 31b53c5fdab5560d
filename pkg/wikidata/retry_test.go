package wikidata

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"wikiscope/pkg/request"
	"wikiscope/pkg/sparql"
)

// flakyQuerier fails its first n calls with a 429 before succeeding.
type flakyQuerier struct {
	failures int
	calls    int
	err      error
	data     []sparql.Binding
}

func (f *flakyQuerier) Query(ctx context.Context, query string) ([]sparql.Binding, error) {
	f.calls++
	if f.calls <= f.failures {
		if f.err != nil {
			return nil, f.err
		}
		return nil, &request.HTTPError{
			StatusCode: http.StatusTooManyRequests,
			Status:     "429 Too Many Requests",
			URL:        "https://query.wikidata.org/sparql",
		}
	}
	return f.data, nil
}

func recordSleeps(r *Retrier) *[]time.Duration {
	var waits []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return &waits
}

func TestRetrySucceedsAfterBackoff(t *testing.T) {
	fq := &flakyQuerier{failures: 2, data: []sparql.Binding{{"x": sparql.Value{Value: "1"}}}}
	r := NewRetrier(fq, 3)
	waits := recordSleeps(r)

	data, err := r.Query(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("Expected data from third attempt, got %d bindings", len(data))
	}
	if fq.calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", fq.calls)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(*waits) != len(want) {
		t.Fatalf("Expected %d backoff waits, got %v", len(want), *waits)
	}
	for i, d := range want {
		if (*waits)[i] != d {
			t.Errorf("Wait %d = %v, want %v", i, (*waits)[i], d)
		}
	}
}

func TestRetryNonRateLimitImmediate(t *testing.T) {
	boom := errors.New("boom")
	fq := &flakyQuerier{failures: 10, err: boom}
	r := NewRetrier(fq, 3)
	waits := recordSleeps(r)

	_, err := r.Query(context.Background(), "SELECT 1")
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the original error, got %v", err)
	}
	if fq.calls != 1 {
		t.Errorf("Expected a single attempt for non-429 failure, got %d", fq.calls)
	}
	if len(*waits) != 0 {
		t.Errorf("Expected no backoff waits, got %v", *waits)
	}
}

func TestRetryExhausted(t *testing.T) {
	fq := &flakyQuerier{failures: 10}
	r := NewRetrier(fq, 3)
	waits := recordSleeps(r)

	_, err := r.Query(context.Background(), "SELECT 1")
	if !errors.Is(err, ErrMaxRetries) {
		t.Fatalf("Expected ErrMaxRetries, got %v", err)
	}
	if !request.IsRateLimited(err) {
		t.Errorf("Exhaustion error should still expose the 429: %v", err)
	}
	if fq.calls != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", fq.calls)
	}
	// No wait after the final attempt.
	if len(*waits) != 2 {
		t.Errorf("Expected 2 backoff waits, got %v", *waits)
	}
}

func TestRetryContextCanceled(t *testing.T) {
	fq := &flakyQuerier{failures: 10}
	r := NewRetrier(fq, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Query(ctx, "SELECT 1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if fq.calls != 1 {
		t.Errorf("Expected backoff to abort after 1 attempt, got %d", fq.calls)
	}
}

func TestRetryCustomBaseDelay(t *testing.T) {
	fq := &flakyQuerier{failures: 1, data: []sparql.Binding{}}
	r := NewRetrier(fq, 3)
	r.BaseDelay = 10 * time.Millisecond
	waits := recordSleeps(r)

	if _, err := r.Query(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(*waits) != 1 || (*waits)[0] != 20*time.Millisecond {
		t.Errorf("Expected one 20ms wait, got %v", *waits)
	}
}

func TestNewRetrierDefaults(t *testing.T) {
	r := NewRetrier(&flakyQuerier{}, 0)
	if r.maxRetries != DefaultMaxRetries {
		t.Errorf("Expected default retry budget %d, got %d", DefaultMaxRetries, r.maxRetries)
	}
	if r.BaseDelay != time.Second {
		t.Errorf("Expected 1s base delay, got %v", r.BaseDelay)
	}
}
