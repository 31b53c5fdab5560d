package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeRefresher struct {
	datasetCh chan string
	allCh     chan struct{}
	err       error
}

func newFakeRefresher() *fakeRefresher {
	return &fakeRefresher{
		datasetCh: make(chan string, 1),
		allCh:     make(chan struct{}, 1),
	}
}

func (f *fakeRefresher) RefreshDataset(ctx context.Context, dataset string) error {
	f.datasetCh <- dataset
	return f.err
}

func (f *fakeRefresher) RefreshAll(ctx context.Context) error {
	f.allCh <- struct{}{}
	return f.err
}

func TestRefreshAllDatasets(t *testing.T) {
	refresher := newFakeRefresher()
	handler := NewRefreshHandler(refresher)

	req := httptest.NewRequest("POST", "/api/refresh", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("StatusCode: got %v, want 202", w.Code)
	}

	select {
	case <-refresher.allCh:
	case <-time.After(2 * time.Second):
		t.Fatal("RefreshAll was not called")
	}
}

func TestRefreshSingleDataset(t *testing.T) {
	refresher := newFakeRefresher()
	handler := NewRefreshHandler(refresher)

	req := httptest.NewRequest("POST", "/api/refresh?dataset=gender", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("StatusCode: got %v, want 202", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if resp["dataset"] != "gender" {
		t.Errorf("ack dataset: got %q, want gender", resp["dataset"])
	}

	select {
	case ds := <-refresher.datasetCh:
		if ds != "gender" {
			t.Errorf("refreshed %q, want gender", ds)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RefreshDataset was not called")
	}
}

func TestRefreshUnknownDataset(t *testing.T) {
	refresher := newFakeRefresher()
	handler := NewRefreshHandler(refresher)

	req := httptest.NewRequest("POST", "/api/refresh?dataset=bogus", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("StatusCode: got %v, want 400", w.Code)
	}

	select {
	case <-refresher.datasetCh:
		t.Error("RefreshDataset should not run for an unknown dataset")
	case <-refresher.allCh:
		t.Error("RefreshAll should not run for an unknown dataset")
	case <-time.After(50 * time.Millisecond):
	}
}
