package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"wikiscope/pkg/request"
	"wikiscope/pkg/tracker"
)

func newTestClient(endpoint string) *Client {
	c := NewClient(request.New(tracker.New(), request.ClientConfig{}), "en")
	c.APIEndpoint = endpoint
	return c
}

func TestGetSummary(t *testing.T) {
	mockResp := `{
		"query": {
			"pages": {
				"12345": {
					"pageid": 12345,
					"title": "Uranus",
					"extract": "<p><b>Uranus</b> is the seventh planet from the Sun.<sup class=\"reference\">[1]</sup></p>\n<p>It was discovered in 1781.</p>"
				}
			}
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "query" || q.Get("prop") != "extracts" {
			t.Errorf("Unexpected query params: %v", q)
		}
		if q.Get("exintro") != "1" {
			t.Error("Expected exintro=1 for intro-only extracts")
		}
		if q.Get("redirects") != "1" {
			t.Error("Expected redirects=1")
		}
		if q.Get("titles") != "Uranus" {
			t.Errorf("Expected titles=Uranus, got %s", q.Get("titles"))
		}
		fmt.Fprint(w, mockResp)
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/w/api.php")

	sum, err := client.GetSummary(context.Background(), "Uranus", "en")
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if sum.Title != "Uranus" {
		t.Errorf("Expected title Uranus, got %s", sum.Title)
	}
	want := "Uranus is the seventh planet from the Sun.\n\nIt was discovered in 1781."
	if sum.Extract != want {
		t.Errorf("Extract = %q, want %q", sum.Extract, want)
	}
	if sum.URL != "https://en.wikipedia.org/wiki/Uranus" {
		t.Errorf("Unexpected article URL: %s", sum.URL)
	}
}

func TestGetSummaryMissing(t *testing.T) {
	mockResp := `{
		"query": {
			"pages": {
				"-1": {"title": "Nonexistent Page", "missing": ""}
			}
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, mockResp)
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/w/api.php")

	_, err := client.GetSummary(context.Background(), "Nonexistent Page", "en")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetSummaryHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/w/api.php")

	if _, err := client.GetSummary(context.Background(), "Uranus", "en"); err == nil {
		t.Fatal("Expected error for 500 response")
	}
}

func TestGetSummaryLanguageFallback(t *testing.T) {
	mockResp := `{
		"query": {
			"pages": {
				"1": {"title": "Uran", "extract": "<p>Uran ist ein Planet.</p>"}
			}
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, mockResp)
	}))
	defer server.Close()

	client := NewClient(request.New(tracker.New(), request.ClientConfig{}), "de")
	client.APIEndpoint = server.URL + "/w/api.php"

	sum, err := client.GetSummary(context.Background(), "Uran", "")
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if sum.URL != "https://de.wikipedia.org/wiki/Uran" {
		t.Errorf("Expected client language in URL, got %s", sum.URL)
	}
}
