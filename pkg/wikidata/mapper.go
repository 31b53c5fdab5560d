package wikidata

import (
	"strconv"
	"strings"

	"wikiscope/pkg/logging"
	"wikiscope/pkg/sparql"
)

// Site is one mappable discovery: an item with a dated discovery and a
// located discovery site.
type Site struct {
	QID       string  `json:"id"`
	Label     string  `json:"label"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Year      int     `json:"year"`
	Sitelinks int     `json:"sitelinks"`
	Article   string  `json:"article,omitempty"`
}

// Event is one dated discovery for the timeline.
type Event struct {
	QID  string `json:"id"`
	Year int    `json:"year"`
}

// GenderEvent is one dated discovery attributed to a discoverer with a
// known gender. Items with several discoverers yield one event each.
type GenderEvent struct {
	QID    string `json:"id"`
	Year   int    `json:"year"`
	Gender string `json:"gender"`
}

// MapSites converts raw bindings from SitesQuery into sites. Rows
// without a usable entity URI, coordinate pair or parseable year are
// dropped.
func MapSites(bindings []sparql.Binding) []Site {
	records := sparql.Normalize(bindings)
	sites := make([]Site, 0, len(records))
	for _, rec := range records {
		qid := QIDFromURI(rec.String("item"))
		if qid == "" {
			continue
		}
		lat, okLat := rec.Float("lat")
		lon, okLon := rec.Float("lon")
		if !okLat || !okLon {
			logging.TraceDefault("Site row dropped: no coordinates", "qid", qid)
			continue
		}
		year, ok := yearFromDate(rec.String("date"))
		if !ok {
			logging.TraceDefault("Site row dropped: unparseable date", "qid", qid, "date", rec.String("date"))
			continue
		}
		links, _ := rec.Int("sitelinks")
		sites = append(sites, Site{
			QID:       qid,
			Label:     rec.String("itemLabel"),
			Lat:       lat,
			Lon:       lon,
			Year:      year,
			Sitelinks: links,
			Article:   rec.String("article"),
		})
	}
	return sites
}

// MapEvents converts raw bindings from TimelineQuery into events.
func MapEvents(bindings []sparql.Binding) []Event {
	records := sparql.Normalize(bindings)
	events := make([]Event, 0, len(records))
	for _, rec := range records {
		qid := QIDFromURI(rec.String("item"))
		if qid == "" {
			continue
		}
		year, ok := yearFromDate(rec.String("date"))
		if !ok {
			continue
		}
		events = append(events, Event{QID: qid, Year: year})
	}
	return events
}

// MapGenderEvents converts raw bindings from GenderQuery into gender
// events. Rows with an unbound gender label are dropped.
func MapGenderEvents(bindings []sparql.Binding) []GenderEvent {
	records := sparql.Normalize(bindings)
	events := make([]GenderEvent, 0, len(records))
	for _, rec := range records {
		qid := QIDFromURI(rec.String("item"))
		if qid == "" {
			continue
		}
		year, ok := yearFromDate(rec.String("date"))
		if !ok {
			continue
		}
		gender := rec.String("genderLabel")
		if gender == "" {
			continue
		}
		events = append(events, GenderEvent{QID: qid, Year: year, Gender: gender})
	}
	return events
}

// QIDFromURI extracts the entity ID from a concept URI like
// http://www.wikidata.org/entity/Q42. A bare ID passes through.
func QIDFromURI(uri string) string {
	if uri == "" {
		return ""
	}
	if idx := strings.LastIndexByte(uri, '/'); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}

// yearFromDate parses the year from an xsd:dateTime lexical form such
// as "1781-03-13T00:00:00Z". time.Parse cannot handle proleptic dates
// like "-0150-01-01T00:00:00Z", which Wikidata uses for BCE discovery
// dates, so the year is cut out of the string instead. Bare years are
// accepted too.
func yearFromDate(date string) (int, bool) {
	if date == "" {
		return 0, false
	}
	neg := false
	if date[0] == '-' {
		neg = true
		date = date[1:]
	}
	if idx := strings.IndexAny(date, "-T"); idx >= 0 {
		date = date[:idx]
	}
	year, err := strconv.Atoi(date)
	if err != nil {
		return 0, false
	}
	if neg {
		year = -year
	}
	return year, true
}
