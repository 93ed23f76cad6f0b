// Package query models the engine-neutral structured query: a boolean clause
// tree with sort, pagination, and terms aggregations. The tree marshals to the
// Elasticsearch search DSL for remote engines and is walked directly by the
// embedded engine.
package query

import "encoding/json"

// Clause is one node of the boolean query tree. The set of implementations is
// closed: MatchAll, Match, Term, Terms, Nested, and Bool.
type Clause interface {
	isClause()
}

// MatchAll matches every document in the collection.
type MatchAll struct{}

// Match is a full-text match against an analyzed field.
type Match struct {
	Field string
	Text  string
}

// Term is an exact single-value match against an untokenized field.
type Term struct {
	Field string
	Value any
}

// Terms is exact set membership against an untokenized field.
type Terms struct {
	Field  string
	Values []string
}

// Nested scopes a clause to the sub-documents under Path, so that each
// sub-document is matched in isolation from its siblings.
type Nested struct {
	Path   string
	Clause Clause
}

// Bool combines clauses: every Must and Filter clause is mandatory, Should
// clauses are a disjunction (at least one must match when the Bool carries
// nothing else; otherwise they only contribute to relevance).
type Bool struct {
	Must   []Clause
	Should []Clause
	Filter []Clause
}

func (MatchAll) isClause() {}
func (Match) isClause()    {}
func (Term) isClause()     {}
func (Terms) isClause()    {}
func (Nested) isClause()   {}
func (Bool) isClause()     {}

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Sort is a single sort key, optionally scoped to a nested path.
type Sort struct {
	Field      string
	Order      Order
	NestedPath string
}

// Agg is a distinct-value (terms) aggregation over Field, optionally scoped
// to the sub-documents under NestedPath. No bucket-count cap is requested.
type Agg struct {
	Name       string
	Field      string
	NestedPath string
}

// Query is a complete structured query: a root boolean clause plus sort,
// pagination window, and aggregations.
type Query struct {
	Root Bool
	Sort *Sort
	From int
	Size int
	Aggs []Agg
}

// aggSize is sent with terms aggregations so remote engines return the full
// distinct-value space rather than their default bucket cap.
const aggSize = 10000

func (q MatchAll) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"match_all": map[string]any{}})
}

func (q Match) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"match": map[string]any{q.Field: q.Text}})
}

func (q Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"term": map[string]any{q.Field: q.Value}})
}

func (q Terms) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"terms": map[string]any{q.Field: q.Values}})
}

func (q Nested) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"nested": map[string]any{
		"path":  q.Path,
		"query": q.Clause,
	}})
}

func (q Bool) MarshalJSON() ([]byte, error) {
	inner := map[string]any{}
	if len(q.Must) > 0 {
		inner["must"] = q.Must
	}
	if len(q.Should) > 0 {
		inner["should"] = q.Should
	}
	if len(q.Filter) > 0 {
		inner["filter"] = q.Filter
	}
	return json.Marshal(map[string]any{"bool": inner})
}

func (s Sort) MarshalJSON() ([]byte, error) {
	spec := map[string]any{"order": string(s.Order)}
	if s.NestedPath != "" {
		spec["nested"] = map[string]any{"path": s.NestedPath}
	}
	return json.Marshal(map[string]any{s.Field: spec})
}

// MarshalJSON renders the full Elasticsearch search body.
func (q *Query) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"query": q.Root,
		"from":  q.From,
		"size":  q.Size,
	}
	if q.Sort != nil {
		body["sort"] = []Sort{*q.Sort}
	}
	if len(q.Aggs) > 0 {
		aggs := map[string]any{}
		for _, a := range q.Aggs {
			terms := map[string]any{"terms": map[string]any{"field": a.Field, "size": aggSize}}
			if a.NestedPath != "" {
				aggs[a.Name] = map[string]any{
					"nested": map[string]any{"path": a.NestedPath},
					"aggs":   map[string]any{a.Name: terms},
				}
			} else {
				aggs[a.Name] = terms
			}
		}
		body["aggs"] = aggs
	}
	return json.Marshal(body)
}
