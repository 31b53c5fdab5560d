// Package main provides an operator CLI to run ad-hoc SPARQL queries
// through the same client stack the server uses. Results print as
// normalized records (or raw bindings with -raw), so a query can be
// checked before it is baked into a dataset.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"wikiscope/pkg/request"
	"wikiscope/pkg/sparql"
	"wikiscope/pkg/tracker"
	"wikiscope/pkg/version"
	"wikiscope/pkg/wikidata"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	endpoint := flag.String("endpoint", "https://query.wikidata.org/sparql", "SPARQL endpoint URL")
	proxy := flag.String("proxy", "", "CORS-style proxy prefix (empty for direct access)")
	queryStr := flag.String("query", "", "Inline SPARQL query")
	queryFile := flag.String("file", "", "Read the query from a file (- for stdin)")
	limit := flag.Int("limit", 0, "Append LIMIT n when the query has none (0 leaves it alone)")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP timeout")
	retries := flag.Int("retries", 0, "Retry budget for HTTP 429 responses (0 disables retries)")
	raw := flag.Bool("raw", false, "Print raw bindings instead of normalized records")
	flag.Parse()

	query, err := loadQuery(*queryStr, *queryFile)
	if err != nil {
		return err
	}
	query = applyLimit(query, *limit)

	tr := tracker.New()
	reqClient := request.New(tr, request.ClientConfig{
		Timeout:   *timeout,
		UserAgent: "wikiscope-sparqlcheck/" + version.Version,
	})

	client := wikidata.NewClient(reqClient, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	client.Endpoint = *endpoint
	client.ProxyPrefix = *proxy

	var querier wikidata.Querier = client
	if *retries > 0 {
		querier = wikidata.NewRetrier(client, *retries)
	}

	start := time.Now()
	bindings, err := querier.Query(context.Background(), query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "%d rows in %v\n", len(bindings), time.Since(start).Round(time.Millisecond))

	if *raw {
		return printJSON(bindings)
	}
	return printJSON(sparql.Normalize(bindings))
}

// loadQuery resolves the query from -query, -file or stdin.
func loadQuery(inline, file string) (string, error) {
	if inline != "" && file != "" {
		return "", fmt.Errorf("use either -query or -file, not both")
	}
	if inline != "" {
		return inline, nil
	}

	switch file {
	case "":
		return "", fmt.Errorf("no query given: use -query or -file")
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read query file: %w", err)
		}
		return string(data), nil
	}
}

// applyLimit appends a LIMIT clause unless the query already carries
// one (checked textually, which is good enough for an operator tool).
func applyLimit(query string, limit int) string {
	if limit <= 0 || strings.Contains(strings.ToUpper(query), "LIMIT") {
		return query
	}
	return strings.TrimRight(query, " \t\n") + fmt.Sprintf("\nLIMIT %d", limit)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
