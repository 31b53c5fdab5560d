package sparql

import (
	"math"
	"strconv"
)

// Record is a flattened result row. Values are string or float64.
type Record map[string]any

// Normalize flattens bindings into records, keeping only each cell's
// lexical value. A value that parses fully as a number becomes a
// float64, except under the key "id", which always stays a string so
// entity identifiers like "Q42" and zero-padded codes survive intact.
// A nil or empty input yields an empty, non-nil slice.
func Normalize(bindings []Binding) []Record {
	records := make([]Record, 0, len(bindings))
	for _, b := range bindings {
		rec := make(Record, len(b))
		for name, v := range b {
			rec[name] = coerce(name, v.Value)
		}
		records = append(records, rec)
	}
	return records
}

func coerce(name, raw string) any {
	if name == "id" || raw == "" {
		return raw
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		// ParseFloat accepts "NaN" and "Inf" spellings; keep those as
		// strings so records marshal cleanly.
		return raw
	}
	return f
}

// String returns the value under key as a string, or "" when unbound.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// Float returns the numeric value under key.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Int returns the value under key truncated to an int.
func (r Record) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}
