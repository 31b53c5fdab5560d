package wikidata

import "errors"

var (
	// ErrParse indicates the endpoint's response body was not valid
	// SPARQL JSON results.
	ErrParse = errors.New("wikidata parse error")
	// ErrMaxRetries indicates the retry budget was exhausted without a
	// successful query.
	ErrMaxRetries = errors.New("wikidata max retries exceeded")
)
