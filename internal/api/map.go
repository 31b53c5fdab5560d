package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"wikiscope/pkg/dashboard"
	"wikiscope/pkg/wikidata"
)

// SiteProvider supplies discovery sites and their clustered rollups.
type SiteProvider interface {
	Sites(ctx context.Context) ([]wikidata.Site, bool, error)
	Clusters(ctx context.Context, res int) ([]dashboard.Cluster, bool, error)
}

// MapHandler serves the map payloads.
type MapHandler struct {
	provider SiteProvider
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(p SiteProvider) *MapHandler {
	return &MapHandler{provider: p}
}

// HandlePoints handles GET /api/map/points. It returns every site as a
// GeoJSON feature; min_lat/max_lat/min_lon/max_lon crop the result and
// must be given all together or not at all.
func (h *MapHandler) HandlePoints(w http.ResponseWriter, r *http.Request) {
	bound, bounded, err := parseBound(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sites, stale, err := h.provider.Sites(r.Context())
	if err != nil {
		http.Error(w, "failed to fetch sites", http.StatusInternalServerError)
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, site := range sites {
		pt := orb.Point{site.Lon, site.Lat}
		if bounded && !bound.Contains(pt) {
			continue
		}

		f := geojson.NewFeature(pt)
		f.Properties["id"] = site.QID
		f.Properties["label"] = site.Label
		f.Properties["year"] = site.Year
		f.Properties["sitelinks"] = site.Sitelinks
		if site.Article != "" {
			f.Properties["article"] = site.Article
		}
		fc.Append(f)
	}

	writeStale(w, stale)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		slog.Error("Failed to encode map points", "error", err)
	}
}

// HandleClusters handles GET /api/map/clusters. The optional res param
// overrides the configured H3 resolution.
func (h *MapHandler) HandleClusters(w http.ResponseWriter, r *http.Request) {
	res := -1
	if resStr := r.URL.Query().Get("res"); resStr != "" {
		parsed, err := strconv.Atoi(resStr)
		if err != nil || parsed < 0 || parsed > 15 {
			http.Error(w, "res must be an integer between 0 and 15", http.StatusBadRequest)
			return
		}
		res = parsed
	}

	clusters, stale, err := h.provider.Clusters(r.Context(), res)
	if err != nil {
		http.Error(w, "failed to compute clusters", http.StatusInternalServerError)
		return
	}

	writeStale(w, stale)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(clusters); err != nil {
		slog.Error("Failed to encode clusters", "error", err)
	}
}

// parseBound reads the optional bbox query params into an orb.Bound.
// The second return reports whether a bound was requested at all.
func parseBound(r *http.Request) (orb.Bound, bool, error) {
	q := r.URL.Query()
	minLatStr := q.Get("min_lat")
	maxLatStr := q.Get("max_lat")
	minLonStr := q.Get("min_lon")
	maxLonStr := q.Get("max_lon")

	if minLatStr == "" && maxLatStr == "" && minLonStr == "" && maxLonStr == "" {
		return orb.Bound{}, false, nil
	}
	if minLatStr == "" || maxLatStr == "" || minLonStr == "" || maxLonStr == "" {
		return orb.Bound{}, false, errors.New("min_lat, max_lat, min_lon, max_lon must be given together")
	}

	minLat, err1 := strconv.ParseFloat(minLatStr, 64)
	maxLat, err2 := strconv.ParseFloat(maxLatStr, 64)
	minLon, err3 := strconv.ParseFloat(minLonStr, 64)
	maxLon, err4 := strconv.ParseFloat(maxLonStr, 64)

	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return orb.Bound{}, false, errors.New("invalid bounds")
	}
	if minLat > maxLat || minLon > maxLon {
		return orb.Bound{}, false, errors.New("invalid bounds")
	}

	return orb.Bound{
		Min: orb.Point{minLon, minLat},
		Max: orb.Point{maxLon, maxLat},
	}, true, nil
}
