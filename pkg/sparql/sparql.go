// Package sparql models the SPARQL 1.1 JSON results format and flattens
// result bindings into plain records.
package sparql

// Value is a single cell of a result binding.
type Value struct {
	Type     string `json:"type,omitempty"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Binding is one result row, keyed by variable name. Variables left
// unbound by an OPTIONAL pattern are absent from the map.
type Binding map[string]Value

// Results is a decoded application/sparql-results+json document.
type Results struct {
	Head    Head        `json:"head"`
	Results BindingList `json:"results"`
}

// Head lists the selected variables in projection order.
type Head struct {
	Vars []string `json:"vars"`
}

// BindingList wraps the bindings array.
type BindingList struct {
	Bindings []Binding `json:"bindings"`
}
