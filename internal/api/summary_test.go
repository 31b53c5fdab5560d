package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"wikiscope/pkg/wikipedia"
)

type fakeSummaryProvider struct {
	summary  *wikipedia.Summary
	err      error
	gotTitle string
	gotLang  string
}

func (f *fakeSummaryProvider) GetSummary(ctx context.Context, title, lang string) (*wikipedia.Summary, error) {
	f.gotTitle = title
	f.gotLang = lang
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func TestHandleSummary(t *testing.T) {
	provider := &fakeSummaryProvider{summary: &wikipedia.Summary{
		Title:   "Uranus",
		Extract: "Uranus is the seventh planet from the Sun.",
		URL:     "https://de.wikipedia.org/wiki/Uranus",
	}}
	handler := NewSummaryHandler(provider)

	req := httptest.NewRequest("GET", "/api/summary?title=Uranus&lang=de", http.NoBody)
	w := httptest.NewRecorder()
	handler.HandleSummary(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("StatusCode: got %v, want 200", w.Code)
	}
	if provider.gotTitle != "Uranus" || provider.gotLang != "de" {
		t.Errorf("provider got (%q, %q), want (Uranus, de)", provider.gotTitle, provider.gotLang)
	}

	var summary wikipedia.Summary
	if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if summary.Extract != provider.summary.Extract {
		t.Errorf("extract: got %q", summary.Extract)
	}
}

func TestHandleSummaryMissingTitle(t *testing.T) {
	handler := NewSummaryHandler(&fakeSummaryProvider{})

	req := httptest.NewRequest("GET", "/api/summary", http.NoBody)
	w := httptest.NewRecorder()
	handler.HandleSummary(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("StatusCode: got %v, want 400", w.Code)
	}
}

func TestHandleSummaryNotFound(t *testing.T) {
	provider := &fakeSummaryProvider{err: fmt.Errorf("%w: Atlantis", wikipedia.ErrNotFound)}
	handler := NewSummaryHandler(provider)

	req := httptest.NewRequest("GET", "/api/summary?title=Atlantis", http.NoBody)
	w := httptest.NewRecorder()
	handler.HandleSummary(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("StatusCode: got %v, want 404", w.Code)
	}
}

func TestHandleSummaryUpstreamError(t *testing.T) {
	provider := &fakeSummaryProvider{err: errors.New("wiki unreachable")}
	handler := NewSummaryHandler(provider)

	req := httptest.NewRequest("GET", "/api/summary?title=Uranus", http.NoBody)
	w := httptest.NewRecorder()
	handler.HandleSummary(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("StatusCode: got %v, want 502", w.Code)
	}
}
