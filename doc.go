// Package plugindex is a query-composition and result-shaping layer in front
// of a document search engine, serving a plugin-catalog browsing experience:
// free-text search, faceted filtering and aggregation, paginated sorted
// results, and single-document lookup.
//
// The package owns the translation logic in both directions. A SearchRequest
// is composed into the engine-neutral structured query of pkg/query, executed
// through a pkg/engine.Engine, and the raw hits and aggregation buckets are
// shaped back into catalog domain types by pkg/transform. Indexing, ranking
// and storage belong to the engine.
//
// Basic usage:
//
//	store, err := meta.Load()
//	eng := engine.NewHTTP(engine.HTTPOptions{URL: "http://localhost:9200"})
//	catalog := plugindex.New(eng, store)
//	page, err := catalog.Search(ctx, types.SearchRequest{Query: "git", Page: 1, Limit: 20})
package plugindex
