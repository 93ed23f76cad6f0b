package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/plugindex/plugindex/pkg/query"
)

// HTTPOptions configures the remote engine client.
type HTTPOptions struct {
	// URL is the engine base URL, e.g. "http://localhost:9200".
	URL string

	// Timeout bounds each request. Zero means 30 seconds.
	Timeout time.Duration

	// Breaker, when non-nil, wraps every engine call. Retry and backoff
	// policy stays out of this client entirely.
	Breaker *gobreaker.CircuitBreaker

	// Client overrides the underlying HTTP client. Mostly for tests.
	Client *http.Client

	Logger *slog.Logger
}

// HTTP is an Engine backed by an Elasticsearch-compatible REST API.
type HTTP struct {
	base    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger
}

// NewHTTP creates a remote engine client.
func NewHTTP(opts HTTPOptions) *HTTP {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &HTTP{
		base:    opts.URL,
		client:  client,
		breaker: opts.Breaker,
		log:     log,
	}
}

// searchResponse mirrors the engine's _search reply. Total is kept raw
// because older engines return a bare number and newer ones an object.
type searchResponse struct {
	Hits struct {
		Total json.RawMessage `json:"total"`
		Hits  []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

type getResponse struct {
	Found  bool            `json:"found"`
	Source json.RawMessage `json:"_source"`
}

// ExecuteQuery posts the structured query to /{collection}/_search and
// decodes hits, total count, and aggregation buckets.
func (e *HTTP) ExecuteQuery(ctx context.Context, collection string, q *query.Query) (*Result, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/_search", e.base, url.PathEscape(collection))
	raw, status, err := e.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("engine returned status %d: %s", status, truncate(raw))
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	total, err := parseTotal(resp.Hits.Total)
	if err != nil {
		return nil, err
	}

	result := &Result{TotalHits: total}
	for _, h := range resp.Hits.Hits {
		result.Hits = append(result.Hits, h.Source)
	}
	if len(resp.Aggregations) > 0 {
		result.Aggregations = make(map[string][]Bucket, len(resp.Aggregations))
		for name, agg := range resp.Aggregations {
			buckets, err := parseBuckets(name, agg)
			if err != nil {
				return nil, err
			}
			result.Aggregations[name] = buckets
		}
	}
	return result, nil
}

// GetDocument fetches /{collection}/_doc/{key}. A 404 is an absent document,
// not an error.
func (e *HTTP) GetDocument(ctx context.Context, collection, key string) (json.RawMessage, bool, error) {
	endpoint := fmt.Sprintf("%s/%s/_doc/%s", e.base, url.PathEscape(collection), url.PathEscape(key))
	raw, status, err := e.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	if status == http.StatusNotFound {
		return nil, false, nil
	}
	if status != http.StatusOK {
		return nil, false, fmt.Errorf("engine returned status %d: %s", status, truncate(raw))
	}

	var resp getResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, fmt.Errorf("decode get response: %w", err)
	}
	if !resp.Found {
		return nil, false, nil
	}
	return resp.Source, true, nil
}

// do issues one request, routing it through the circuit breaker when one is
// configured.
func (e *HTTP) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, int, error) {
	call := func() (any, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := e.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return httpReply{body: raw, status: resp.StatusCode}, nil
	}

	var (
		out any
		err error
	)
	if e.breaker != nil {
		out, err = e.breaker.Execute(call)
	} else {
		out, err = call()
	}
	if err != nil {
		e.log.Debug("engine request failed", "method", method, "endpoint", endpoint, "error", err)
		return nil, 0, err
	}
	reply := out.(httpReply)
	return reply.body, reply.status, nil
}

type httpReply struct {
	body   []byte
	status int
}

// parseTotal accepts both the legacy bare-number form and the modern
// {"value": n, "relation": "eq"} form.
func parseTotal(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var obj struct {
		Value int64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, fmt.Errorf("decode total hits: %w", err)
	}
	return obj.Value, nil
}

// parseBuckets extracts terms buckets. Nested aggregations wrap the terms
// aggregation under the same name one level down.
func parseBuckets(name string, raw json.RawMessage) ([]Bucket, error) {
	var node struct {
		Buckets []struct {
			Key      any   `json:"key"`
			DocCount int64 `json:"doc_count"`
		} `json:"buckets"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("decode aggregation %q: %w", name, err)
	}
	if node.Buckets == nil {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("decode aggregation %q: %w", name, err)
		}
		inner, ok := wrapper[name]
		if !ok {
			return nil, fmt.Errorf("aggregation %q has no bucket list", name)
		}
		return parseBuckets(name, inner)
	}

	buckets := make([]Bucket, 0, len(node.Buckets))
	for _, b := range node.Buckets {
		buckets = append(buckets, Bucket{Key: fmt.Sprintf("%v", b.Key), Count: b.DocCount})
	}
	return buckets, nil
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
