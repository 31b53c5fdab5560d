package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	// Local SPARQL stub keeps the startup probe off the network.
	sparqlSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		fmt.Fprint(w, `{"results": {"bindings": []}}`)
	}))
	defer sparqlSrv.Close()

	tmpDir := t.TempDir()

	tempConfig := fmt.Sprintf(`
server:
    address: localhost:0  # 0 lets OS choose free port
log:
    server:
        path: %q
        level: "debug"
    requests:
        path: %q
        level: "info"
db:
    path: ":memory:" # Use in-memory DB for test
sparql:
    endpoint: %q
refresh:
    on_start: false
`,
		filepath.Join(tmpDir, "server.log"),
		filepath.Join(tmpDir, "requests.log"),
		sparqlSrv.URL)

	f, err := os.CreateTemp("", "wikiscope_test_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp config: %v", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(tempConfig); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	f.Close()

	// A context that cancels quickly verifies the startup sequence and
	// the graceful shutdown path.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := run(ctx, f.Name()); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
}
