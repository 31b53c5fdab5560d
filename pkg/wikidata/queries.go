package wikidata

import "fmt"

// The three dataset queries behind the dashboard views. All of them
// anchor on wdt:P575 (time of discovery or invention); the map query
// additionally requires a located discovery site (wdt:P189) and the
// gender query a discoverer (wdt:P61) with a known gender (wdt:P21).
//
// Dates are projected as raw xsd:dateTime literals; the mappers parse
// years, including negative ones, from the lexical form.

// SitesQuery returns the discovery-sites query: items with a discovery
// date and a discovery site carrying coordinates, plus the sitelink
// count and the linked Wikipedia article title in lang.
func SitesQuery(limit int, lang string) string {
	return fmt.Sprintf(`SELECT ?item ?itemLabel ?lat ?lon ?date ?sitelinks ?article WHERE {
  ?item wdt:P575 ?date .
  ?item wdt:P189 ?site .
  ?site p:P625/psv:P625 ?coord .
  ?coord wikibase:geoLatitude ?lat .
  ?coord wikibase:geoLongitude ?lon .
  ?item wikibase:sitelinks ?sitelinks .
  OPTIONAL {
    ?page schema:about ?item ;
          schema:isPartOf <https://%s.wikipedia.org/> ;
          schema:name ?article .
  }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "%s". }
}
ORDER BY DESC(?sitelinks)
LIMIT %d`, lang, lang, limit)
}

// TimelineQuery returns the dated-discoveries query feeding the decade
// histogram.
func TimelineQuery(limit int) string {
	return fmt.Sprintf(`SELECT ?item ?date WHERE {
  ?item wdt:P575 ?date .
}
LIMIT %d`, limit)
}

// GenderQuery returns the discoverer-gender query feeding the
// representation-over-time view.
func GenderQuery(limit int, lang string) string {
	return fmt.Sprintf(`SELECT ?item ?date ?genderLabel WHERE {
  ?item wdt:P575 ?date .
  ?item wdt:P61 ?discoverer .
  ?discoverer wdt:P21 ?gender .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "%s". }
}
LIMIT %d`, lang, limit)
}
