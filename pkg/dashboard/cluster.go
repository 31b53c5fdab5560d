package dashboard

import (
	"fmt"
	"sort"

	"github.com/uber/h3-go/v4"

	"wikiscope/pkg/wikidata"
)

// Cluster is one aggregated H3 cell of discovery sites for the
// zoomed-out map rendering.
type Cluster struct {
	Cell    string  `json:"cell"`
	Count   int     `json:"count"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	MinYear int     `json:"min_year"`
	MaxYear int     `json:"max_year"`
}

// ClusterSites groups sites into H3 cells at the given resolution
// (0 coarsest, 15 finest). The cell centroid anchors the cluster.
// Output is sorted by count descending, then cell ID, so equal inputs
// render identically.
func ClusterSites(sites []wikidata.Site, res int) ([]Cluster, error) {
	cells := make(map[h3.Cell]*Cluster)
	for _, site := range sites {
		cell, err := h3.LatLngToCell(h3.NewLatLng(site.Lat, site.Lon), res)
		if err != nil {
			return nil, fmt.Errorf("cell for %s: %w", site.QID, err)
		}

		c := cells[cell]
		if c == nil {
			center, err := h3.CellToLatLng(cell)
			if err != nil {
				return nil, fmt.Errorf("centroid for %s: %w", cell, err)
			}
			c = &Cluster{
				Cell:    cell.String(),
				Lat:     center.Lat,
				Lon:     center.Lng,
				MinYear: site.Year,
				MaxYear: site.Year,
			}
			cells[cell] = c
		}

		c.Count++
		if site.Year < c.MinYear {
			c.MinYear = site.Year
		}
		if site.Year > c.MaxYear {
			c.MaxYear = site.Year
		}
	}

	out := make([]Cluster, 0, len(cells))
	for _, c := range cells {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Cell < out[j].Cell
	})
	return out, nil
}
