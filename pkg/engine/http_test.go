package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugindex/plugindex/pkg/query"
)

func TestHTTPExecuteQuery(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 2, "relation": "eq"},
				"hits": [
					{"_source": {"name": "git-plugin"}},
					{"_source": {"name": "mailer"}}
				]
			},
			"aggregations": {
				"labels": {"buckets": [
					{"key": "scm", "doc_count": 5},
					{"key": "git", "doc_count": 3}
				]},
				"maintainers": {
					"doc_count": 9,
					"maintainers": {"buckets": [{"key": "alice", "doc_count": 4}]}
				}
			}
		}`))
	}))
	defer srv.Close()

	eng := NewHTTP(HTTPOptions{URL: srv.URL})
	q := &query.Query{Root: query.Bool{Must: []query.Clause{query.MatchAll{}}}, Size: 10}

	result, err := eng.ExecuteQuery(context.Background(), "plugins", q)
	require.NoError(t, err)

	assert.Equal(t, "/plugins/_search", gotPath)
	assert.Contains(t, gotBody, "query")

	assert.Equal(t, int64(2), result.TotalHits)
	require.Len(t, result.Hits, 2)
	assert.Contains(t, string(result.Hits[0]), "git-plugin")

	assert.Equal(t, []Bucket{{Key: "scm", Count: 5}, {Key: "git", Count: 3}}, result.Aggregations["labels"])
	// Nested aggregations wrap the terms buckets one level down.
	assert.Equal(t, []Bucket{{Key: "alice", Count: 4}}, result.Aggregations["maintainers"])
}

func TestHTTPExecuteQueryLegacyTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits": {"total": 7, "hits": []}}`))
	}))
	defer srv.Close()

	eng := NewHTTP(HTTPOptions{URL: srv.URL})
	result, err := eng.ExecuteQuery(context.Background(), "plugins", &query.Query{Root: query.Bool{Must: []query.Clause{query.MatchAll{}}}})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.TotalHits)
	assert.Empty(t, result.Hits)
}

func TestHTTPExecuteQueryErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "index_not_found"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	eng := NewHTTP(HTTPOptions{URL: srv.URL})
	_, err := eng.ExecuteQuery(context.Background(), "plugins", &query.Query{Root: query.Bool{Must: []query.Clause{query.MatchAll{}}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPGetDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plugins/_doc/git-plugin":
			_, _ = w.Write([]byte(`{"found": true, "_source": {"name": "git-plugin"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	eng := NewHTTP(HTTPOptions{URL: srv.URL})
	ctx := context.Background()

	doc, found, err := eng.GetDocument(ctx, "plugins", "git-plugin")
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, string(doc), "git-plugin")

	_, found, err = eng.GetDocument(ctx, "plugins", "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHTTPCircuitBreakerOpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drop the connection so the client sees a transport error.
		conn, _, _ := w.(http.Hijacker).Hijack()
		_ = conn.Close()
	}))
	defer srv.Close()

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "test",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	})
	eng := NewHTTP(HTTPOptions{URL: srv.URL, Breaker: breaker})
	q := &query.Query{Root: query.Bool{Must: []query.Clause{query.MatchAll{}}}}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := eng.ExecuteQuery(ctx, "plugins", q)
		require.Error(t, err)
	}

	_, err := eng.ExecuteQuery(ctx, "plugins", q)
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
