package dashboard

import (
	"testing"

	"wikiscope/pkg/wikidata"
)

func TestClusterSites(t *testing.T) {
	// Two Paris-area sites and one in Tokyo: at a coarse resolution the
	// Paris pair shares a cell, Tokyo gets its own.
	sites := []wikidata.Site{
		{QID: "Q1", Lat: 48.8566, Lon: 2.3522, Year: 1898},
		{QID: "Q2", Lat: 48.86, Lon: 2.34, Year: 1925},
		{QID: "Q3", Lat: 35.6762, Lon: 139.6503, Year: 1970},
	}

	clusters, err := ClusterSites(sites, 3)
	if err != nil {
		t.Fatalf("ClusterSites failed: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("Expected 2 clusters, got %d: %+v", len(clusters), clusters)
	}

	// Sorted by count descending: the Paris pair first.
	paris := clusters[0]
	if paris.Count != 2 {
		t.Errorf("Expected Paris cluster count 2, got %d", paris.Count)
	}
	if paris.MinYear != 1898 || paris.MaxYear != 1925 {
		t.Errorf("Unexpected year range: %d..%d", paris.MinYear, paris.MaxYear)
	}
	if paris.Cell == "" {
		t.Error("Expected a cell ID")
	}
	// The centroid must be in the Paris area, not at a site.
	if paris.Lat < 47 || paris.Lat > 50 || paris.Lon < 1 || paris.Lon > 4 {
		t.Errorf("Centroid out of range: %f, %f", paris.Lat, paris.Lon)
	}

	tokyo := clusters[1]
	if tokyo.Count != 1 || tokyo.MinYear != 1970 || tokyo.MaxYear != 1970 {
		t.Errorf("Unexpected Tokyo cluster: %+v", tokyo)
	}
}

func TestClusterSitesDeterministicOrder(t *testing.T) {
	sites := []wikidata.Site{
		{QID: "Q1", Lat: 10, Lon: 10, Year: 1900},
		{QID: "Q2", Lat: -30, Lon: 50, Year: 1910},
		{QID: "Q3", Lat: 60, Lon: -100, Year: 1920},
	}

	first, err := ClusterSites(sites, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := ClusterSites(sites, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(again) != len(first) {
			t.Fatalf("Cluster count changed between runs")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("Run %d differs at %d: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestClusterSitesEmpty(t *testing.T) {
	clusters, err := ClusterSites(nil, 3)
	if err != nil {
		t.Fatalf("ClusterSites failed: %v", err)
	}
	if len(clusters) != 0 {
		t.Errorf("Expected no clusters, got %d", len(clusters))
	}
}
