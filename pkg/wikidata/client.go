// Package wikidata queries the Wikidata SPARQL endpoint and maps result
// bindings into the dashboard's dataset types. The plain Client does one
// fetch per call; CachedClient adds TTL memoization and Retrier adds
// bounded backoff on rate limits. The two wrappers are independent and
// are never stacked by default.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"wikiscope/pkg/request"
	"wikiscope/pkg/sparql"
)

const defaultEndpoint = "https://query.wikidata.org/sparql"

// Querier executes a SPARQL query and returns its result bindings.
// Client, CachedClient and Retrier all satisfy it.
type Querier interface {
	Query(ctx context.Context, query string) ([]sparql.Binding, error)
}

// Client executes SPARQL queries against a single endpoint.
type Client struct {
	request  *request.Client
	Endpoint string
	// ProxyPrefix, when non-empty, routes the query through a
	// CORS-style proxy, reproducing the browser request shape:
	// <prefix><url-encoded endpoint>?query=...&format=json.
	// Empty means direct endpoint access.
	ProxyPrefix string
	Logger      *slog.Logger
}

// NewClient creates a client for the default Wikidata endpoint.
func NewClient(r *request.Client, logger *slog.Logger) *Client {
	return &Client{
		request:  r,
		Endpoint: defaultEndpoint,
		Logger:   logger,
	}
}

// Query runs one SPARQL query and returns the raw result bindings.
// A non-2xx response surfaces as *request.HTTPError; a body that does
// not decode as SPARQL JSON results fails with a wrapped ErrParse. A
// response without a results.bindings field decodes to an empty slice.
func (c *Client) Query(ctx context.Context, query string) ([]sparql.Binding, error) {
	u, err := c.buildURL(query)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"Accept": "application/sparql-results+json",
	}

	body, err := c.request.GetWithHeaders(ctx, u, headers)
	if err != nil {
		return nil, err
	}

	var res sparql.Results
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	bindings := res.Results.Bindings
	c.Logger.Debug("SPARQL query completed", "rows", len(bindings))
	return bindings, nil
}

// buildURL assembles the request URL. Direct:
//
//	<endpoint>?format=json&query=<sparql>
//
// Proxied (ProxyPrefix set):
//
//	<prefix><url-encoded endpoint>?format=json&query=<sparql>
func (c *Client) buildURL(query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	if c.ProxyPrefix != "" {
		return c.ProxyPrefix + url.QueryEscape(c.Endpoint) + "?" + params.Encode(), nil
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}
