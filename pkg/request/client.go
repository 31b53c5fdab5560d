// Package request provides the shared HTTP layer: per-provider serial
// queues, a polite User-Agent, and structured errors for non-2xx
// responses. It performs exactly one attempt per request; retry policy
// belongs to callers that know which failures are transient, and caching
// to the layer that knows the key semantics.
package request

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"wikiscope/pkg/tracker"
	"wikiscope/pkg/version"
)

var defaultUserAgent = fmt.Sprintf("Wikiscope Discovery Dashboard (wikiscope/%s; wikiscope@mailbox.org)", version.Version)

// interRequestGap is the pause a provider worker takes between requests
// so bursts against a public endpoint stay polite.
const interRequestGap = 100 * time.Millisecond

// ClientConfig adjusts optional client behavior.
type ClientConfig struct {
	// Timeout bounds a single request. Zero means no timeout, leaving
	// the transport's defaults in effect.
	Timeout time.Duration
	// UserAgent overrides the default identification header.
	UserAgent string
}

// Client performs GET requests through per-provider serial queues.
// Requests to the same provider never overlap; distinct providers run in
// parallel. Overlapping calls for the same URL are NOT deduplicated:
// both reach the network, in queue order.
type Client struct {
	httpClient *http.Client
	tracker    *tracker.Tracker
	userAgent  string

	mu     sync.Mutex // protects queues
	queues map[string]chan job
}

// job is one queued request.
type job struct {
	req      *http.Request
	headers  map[string]string
	respChan chan jobResult
}

type jobResult struct {
	body []byte
	err  error
}

// New creates a Client reporting usage counters to t.
func New(t *tracker.Tracker, cfg ClientConfig) *Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracker:    t,
		userAgent:  ua,
		queues:     make(map[string]chan job),
	}
}

// Get performs a GET request through the provider queue.
func (c *Client) Get(ctx context.Context, u string) ([]byte, error) {
	return c.GetWithHeaders(ctx, u, nil)
}

// GetWithHeaders performs a GET request with extra headers. A non-2xx
// response fails with a *HTTPError carrying the status code and reason
// phrase.
func (c *Client) GetWithHeaders(ctx context.Context, u string, headers map[string]string) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	provider := normalizeProvider(parsedURL.Host)

	req, err := http.NewRequestWithContext(ctx, "GET", u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	respChan := make(chan jobResult, 1)
	c.dispatch(provider, job{req: req, headers: headers, respChan: respChan})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-respChan:
		return res.body, res.err
	}
}

// normalizeProvider groups subdomains of the public wiki projects into
// one provider each, so query.wikidata.org and www.wikidata.org share a
// queue.
func normalizeProvider(host string) string {
	if strings.HasSuffix(host, ".wikidata.org") || host == "wikidata.org" {
		return "wikidata"
	}
	if strings.HasSuffix(host, ".wikipedia.org") || host == "wikipedia.org" {
		return "wikipedia"
	}
	return host
}

// dispatch sends the job to the provider's queue, creating the
// queue/worker on first use.
func (c *Client) dispatch(provider string, j job) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.queues[provider]
	if !ok {
		q = make(chan job, 100)
		c.queues[provider] = q
		go c.worker(provider, q)
	}

	// Blocks when the queue is full, throttling the caller.
	select {
	case q <- j:
	case <-j.req.Context().Done():
		j.respChan <- jobResult{err: j.req.Context().Err()}
	}
}

// worker processes requests for one provider sequentially.
func (c *Client) worker(provider string, q <-chan job) {
	for j := range q {
		if j.req.Context().Err() != nil {
			slog.Warn("Job dropped from queue (context expired)", "provider", provider, "error", j.req.Context().Err())
			j.respChan <- jobResult{err: j.req.Context().Err()}
			continue
		}

		uaSet := false
		for k, v := range j.headers {
			j.req.Header.Set(k, v)
			if http.CanonicalHeaderKey(k) == "User-Agent" {
				uaSet = true
			}
		}
		if !uaSet {
			j.req.Header.Set("User-Agent", c.userAgent)
		}

		body, err := c.execute(j.req)
		switch {
		case err == nil:
			c.tracker.TrackAPISuccess(provider)
		case IsRateLimited(err):
			c.tracker.TrackRateLimited(provider)
		default:
			c.tracker.TrackAPIFailure(provider)
		}

		j.respChan <- jobResult{body: body, err: err}

		time.Sleep(interRequestGap)
	}
}

// execute performs a single attempt. No backoff here: a 429 comes back
// as a *HTTPError for the caller's retry policy to act on.
func (c *Client) execute(req *http.Request) ([]byte, error) {
	slog.Debug("Network Request", "host", req.URL.Host, "path", req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        req.URL.String(),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}
	return body, nil
}
