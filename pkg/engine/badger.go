package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/plugindex/plugindex/pkg/query"
)

// Badger is an embedded Engine. Documents are stored as JSON under
// {collection}/{key} and the structured query is evaluated in-process:
// match and terms clauses, nested sub-document scoping, sort keys, the
// pagination window, and terms aggregations all behave like their remote
// counterparts.
type Badger struct {
	db *badger.DB
}

// NewBadger opens (or creates) an embedded engine at path.
func NewBadger(path string) (*Badger, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &Badger{db: db}, nil
}

// NewBadgerInMemory opens a purely in-memory engine, used by tests and
// throwaway development setups.
func NewBadgerInMemory() (*Badger, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return &Badger{db: db}, nil
}

// Close releases the underlying store.
func (e *Badger) Close() error {
	return e.db.Close()
}

// IndexDocument stores doc under key in collection, replacing any previous
// version.
func (e *Badger) IndexDocument(collection, key string, doc []byte) error {
	if !json.Valid(doc) {
		return fmt.Errorf("document %s/%s is not valid JSON", collection, key)
	}
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storageKey(collection, key), doc)
	})
}

// GetDocument implements Engine.
func (e *Badger) GetDocument(_ context.Context, collection, key string) (json.RawMessage, bool, error) {
	var doc []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storageKey(collection, key))
		if err != nil {
			return err
		}
		doc, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return doc, true, nil
}

// ExecuteQuery implements Engine. Unsorted results come back in key order,
// which is the store's deterministic default.
func (e *Badger) ExecuteQuery(_ context.Context, collection string, q *query.Query) (*Result, error) {
	var matched []map[string]any
	prefix := storageKey(collection, "")

	err := e.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var doc map[string]any
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("corrupt document %s: %w", it.Item().Key(), err)
			}
			if evalClause(q.Root, doc, "") {
				matched = append(matched, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if q.Sort != nil {
		sortDocs(matched, *q.Sort)
	}

	result := &Result{TotalHits: int64(len(matched))}
	for _, doc := range window(matched, q.From, q.Size) {
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		result.Hits = append(result.Hits, raw)
	}

	if len(q.Aggs) > 0 {
		result.Aggregations = make(map[string][]Bucket, len(q.Aggs))
		for _, agg := range q.Aggs {
			result.Aggregations[agg.Name] = aggregate(matched, agg)
		}
	}
	return result, nil
}

func storageKey(collection, key string) []byte {
	return []byte(collection + "/" + key)
}

// window slices out the requested page. A size of zero requests no hits at
// all (aggregation-only queries); offsets past the end yield an empty page,
// never an error.
func window(docs []map[string]any, from, size int) []map[string]any {
	if size <= 0 {
		return nil
	}
	if from < 0 {
		from = 0
	}
	if from >= len(docs) {
		return nil
	}
	end := from + size
	if end > len(docs) {
		end = len(docs)
	}
	return docs[from:end]
}

// evalClause answers whether doc satisfies the clause. prefix is the nested
// path being evaluated, stripped from clause field names before lookup.
func evalClause(c query.Clause, doc map[string]any, prefix string) bool {
	switch cl := c.(type) {
	case query.MatchAll:
		return true
	case query.Bool:
		for _, m := range cl.Must {
			if !evalClause(m, doc, prefix) {
				return false
			}
		}
		for _, f := range cl.Filter {
			if !evalClause(f, doc, prefix) {
				return false
			}
		}
		// A pure disjunction requires at least one should to match; when
		// must/filter clauses are present the shoulds only affect scoring.
		if len(cl.Should) > 0 && len(cl.Must) == 0 && len(cl.Filter) == 0 {
			for _, s := range cl.Should {
				if evalClause(s, doc, prefix) {
					return true
				}
			}
			return false
		}
		return true
	case query.Match:
		return matchTokens(lookup(doc, relative(cl.Field, prefix)), cl.Text)
	case query.Term:
		return termEquals(lookup(doc, relative(cl.Field, prefix)), cl.Value)
	case query.Terms:
		return termsIntersect(lookup(doc, relative(cl.Field, prefix)), cl.Values)
	case query.Nested:
		subs, ok := lookup(doc, relative(cl.Path, prefix)).([]any)
		if !ok {
			return false
		}
		for _, sub := range subs {
			m, ok := sub.(map[string]any)
			if !ok {
				continue
			}
			if evalClause(cl.Clause, m, cl.Path+".") {
				return true
			}
		}
		return false
	}
	return false
}

// relative strips the nested prefix and the ".raw" multifield suffix so the
// clause field resolves against the plain document shape.
func relative(field, prefix string) string {
	field = strings.TrimSuffix(field, ".raw")
	return strings.TrimPrefix(field, prefix)
}

// lookup walks a dotted path through nested objects.
func lookup(doc map[string]any, path string) any {
	parts := strings.Split(path, ".")
	var cur any = doc
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[p]
		if !ok {
			return nil
		}
	}
	return cur
}

// matchTokens approximates an analyzed full-text match: case-insensitive
// token overlap between the field value and the query text.
func matchTokens(value any, text string) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	want := tokenize(text)
	for tok := range tokenize(s) {
		if want[tok] {
			return true
		}
	}
	return false
}

func tokenize(s string) map[string]bool {
	tokens := map[string]bool{}
	for _, t := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		tokens[t] = true
	}
	return tokens
}

// termEquals answers exact single-value equality.
func termEquals(value, want any) bool {
	switch w := want.(type) {
	case string:
		s, ok := value.(string)
		return ok && s == w
	case bool:
		b, ok := value.(bool)
		return ok && b == w
	default:
		vf, vok := toFloat(value)
		wf, wok := toFloat(want)
		return vok && wok && vf == wf
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// termsIntersect answers set membership: the field value (scalar or array)
// must contain at least one of the wanted values.
func termsIntersect(value any, wanted []string) bool {
	want := map[string]bool{}
	for _, w := range wanted {
		want[w] = true
	}
	switch v := value.(type) {
	case string:
		return want[v]
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && want[s] {
				return true
			}
		}
	}
	return false
}

// sortDocs orders matched documents by the sort key. Missing values sort
// last regardless of direction.
func sortDocs(docs []map[string]any, s query.Sort) {
	field := strings.TrimSuffix(s.Field, ".raw")
	sort.SliceStable(docs, func(i, j int) bool {
		a := lookup(docs[i], field)
		b := lookup(docs[j], field)
		less, ok := compareValues(a, b)
		if !ok {
			return a != nil && b == nil
		}
		if s.Order == query.Desc {
			return !less && !valuesEqual(a, b)
		}
		return less
	})
}

func compareValues(a, b any) (less, ok bool) {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af < bf, true
		}
		return false, false
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as < bs, true
	}
	return false, false
}

func valuesEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	return aok && bok && as == bs
}

// aggregate computes a terms aggregation over the matched set. Buckets come
// back in descending count order with ascending key as the tie-break, which
// is the remote engine's default.
func aggregate(docs []map[string]any, agg query.Agg) []Bucket {
	counts := map[string]int64{}
	for _, doc := range docs {
		if agg.NestedPath != "" {
			subs, ok := lookup(doc, agg.NestedPath).([]any)
			if !ok {
				continue
			}
			for _, sub := range subs {
				m, ok := sub.(map[string]any)
				if !ok {
					continue
				}
				countValues(counts, lookup(m, relative(agg.Field, agg.NestedPath+".")))
			}
		} else {
			countValues(counts, lookup(doc, relative(agg.Field, "")))
		}
	}

	buckets := make([]Bucket, 0, len(counts))
	for key, count := range counts {
		buckets = append(buckets, Bucket{Key: key, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}

func countValues(counts map[string]int64, value any) {
	switch v := value.(type) {
	case string:
		counts[v]++
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				counts[s]++
			}
		}
	}
}
