package ports

import "encoding/json"

// Query methods understood by the backend.
const (
	QueryEqual  = "equal"
	QuerySearch = "search"
)

// Query is one filter in an ordered list; a list of filters is ANDed.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute"`
	Values    []any  `json:"values"`
}

// Equal matches documents whose attribute equals one of values. On array
// attributes it matches when the array contains a value.
func Equal(attribute string, values ...any) Query {
	return Query{Method: QueryEqual, Attribute: attribute, Values: values}
}

// Search is a full-text search on attribute.
func Search(attribute, text string) Query {
	return Query{Method: QuerySearch, Attribute: attribute, Values: []any{text}}
}

// String renders the query in the backend's wire format.
func (q Query) String() string {
	b, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return string(b)
}
