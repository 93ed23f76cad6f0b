// Package engine defines the search-engine capability the catalog consumes:
// run a structured query against a paginated document collection and return
// matches plus optional aggregated bucket counts.
//
// Two implementations are provided. HTTP speaks the Elasticsearch-compatible
// REST protocol to a remote engine; Badger is an embedded document store that
// evaluates the structured query in-process, giving development and tests
// parity with the remote engine.
package engine

import (
	"context"
	"encoding/json"

	"github.com/plugindex/plugindex/pkg/query"
)

// Bucket is one aggregation result entry: a distinct field value plus the
// number of documents carrying it. Bucket sequences are opaque and ordered;
// callers must not assume any ordering beyond what the producing operation
// guarantees.
type Bucket struct {
	Key   string
	Count int64
}

// Result is a raw engine response: matching documents in engine order, the
// total hit count across all pages, and any requested aggregations keyed by
// aggregation name.
type Result struct {
	Hits         []json.RawMessage
	TotalHits    int64
	Aggregations map[string][]Bucket
}

// Engine is the consumed search capability. Implementations must be safe for
// concurrent use; the catalog places no bound on in-flight queries. Calls are
// synchronous and carry no retry policy.
type Engine interface {
	// ExecuteQuery runs a structured query against a collection.
	ExecuteQuery(ctx context.Context, collection string, q *query.Query) (*Result, error)

	// GetDocument fetches a single document by its exact key. A missing
	// document is reported via the boolean, not as an error.
	GetDocument(ctx context.Context, collection, key string) (json.RawMessage, bool, error)
}
