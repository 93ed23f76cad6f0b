package plugindex

import (
	"context"
	"log/slog"
	"sort"

	"github.com/plugindex/plugindex/pkg/engine"
	"github.com/plugindex/plugindex/pkg/meta"
	"github.com/plugindex/plugindex/pkg/paginate"
	"github.com/plugindex/plugindex/pkg/query"
	"github.com/plugindex/plugindex/pkg/transform"
	"github.com/plugindex/plugindex/pkg/types"
)

// DefaultCollection is the engine collection plugins are indexed under.
const DefaultCollection = "plugins"

// DefaultLimit is applied when a request carries no page size.
const DefaultLimit = 50

// Aggregation names used by the facet-listing operations.
const (
	aggMaintainers = "maintainers"
	aggLabels      = "labels"
	aggVersions    = "versions"
)

// Catalog is the service surface consumed by the HTTP and CLI layers. Every
// operation may fail with *QueryError; GetPlugin reports absence as a nil
// plugin, not an error.
type Catalog interface {
	Search(ctx context.Context, req types.SearchRequest) (*types.PagedResult, error)
	GetPlugin(ctx context.Context, name string) (*types.Plugin, error)
	GetCategories() []types.Category
	GetMaintainers(ctx context.Context) ([]string, error)
	GetLabels(ctx context.Context) ([]types.Label, error)
	GetVersions(ctx context.Context) ([]string, error)
}

// Service implements Catalog on top of an engine and the startup-loaded facet
// metadata. It is stateless per call and safe for any number of concurrent
// callers.
type Service struct {
	engine     engine.Engine
	store      *meta.Store
	collection string
	log        *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCollection overrides the engine collection name.
func WithCollection(name string) Option {
	return func(s *Service) { s.collection = name }
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// New creates the catalog service. The metadata store must already be loaded;
// it is read-only from here on.
func New(eng engine.Engine, store *meta.Store, opts ...Option) *Service {
	s := &Service{
		engine:     eng,
		store:      store,
		collection: DefaultCollection,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Catalog = (*Service)(nil)

// Search composes the request into a structured query, executes it, and
// shapes the hits into one result page. A collection with no matches at all
// short-circuits to an explicitly empty page.
func (s *Service) Search(ctx context.Context, req types.SearchRequest) (*types.PagedResult, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = DefaultLimit
	}

	result, err := s.engine.ExecuteQuery(ctx, s.collection, query.Compose(req))
	if err != nil {
		return nil, s.fail("search", err)
	}

	if result.TotalHits == 0 {
		return &types.PagedResult{
			Items:    []types.Plugin{},
			Page:     req.Page,
			PageSize: req.Limit,
		}, nil
	}

	items, err := transform.Plugins(result.Hits)
	if err != nil {
		return nil, s.fail("search", err)
	}

	return &types.PagedResult{
		Items:      items,
		Page:       req.Page,
		TotalPages: paginate.Pages(result.TotalHits, req.Limit),
		TotalItems: result.TotalHits,
		PageSize:   req.Limit,
	}, nil
}

// GetPlugin fetches a single plugin by its exact name. A missing document
// yields (nil, nil).
func (s *Service) GetPlugin(ctx context.Context, name string) (*types.Plugin, error) {
	doc, found, err := s.engine.GetDocument(ctx, s.collection, name)
	if err != nil {
		return nil, s.fail("getPlugin", err)
	}
	if !found {
		return nil, nil
	}
	p, err := transform.Plugin(doc)
	if err != nil {
		return nil, s.fail("getPlugin", err)
	}
	return p, nil
}

// GetCategories returns the process-wide cached category list.
func (s *Service) GetCategories() []types.Category {
	return s.store.Categories
}

// GetMaintainers lists every distinct maintainer id across the whole
// collection, sorted lexicographically ascending. This is the only facet list
// with an engine-independent sort guarantee.
func (s *Service) GetMaintainers(ctx context.Context) ([]string, error) {
	result, err := s.facetQuery(ctx, query.Agg{
		Name:       aggMaintainers,
		Field:      "maintainers.id",
		NestedPath: "maintainers",
	})
	if err != nil {
		return nil, s.fail("getMaintainers", err)
	}
	maintainers := transform.Keys(result.Aggregations[aggMaintainers])
	sort.Strings(maintainers)
	return maintainers, nil
}

// GetLabels lists every distinct label across the collection, joined with the
// static title map. Order follows the engine's bucket ordering.
func (s *Service) GetLabels(ctx context.Context) ([]types.Label, error) {
	result, err := s.facetQuery(ctx, query.Agg{Name: aggLabels, Field: "labels"})
	if err != nil {
		return nil, s.fail("getLabels", err)
	}
	return transform.Labels(result.Aggregations[aggLabels], s.store.LabelTitles), nil
}

// GetVersions lists every distinct required-core version across the
// collection, in engine bucket order.
func (s *Service) GetVersions(ctx context.Context) ([]string, error) {
	result, err := s.facetQuery(ctx, query.Agg{Name: aggVersions, Field: "requiredCore"})
	if err != nil {
		return nil, s.fail("getVersions", err)
	}
	return transform.Keys(result.Aggregations[aggVersions]), nil
}

// facetQuery runs a zero-hit, aggregation-only query over the whole
// collection; facet lists are never scoped to a search's filters.
func (s *Service) facetQuery(ctx context.Context, agg query.Agg) (*engine.Result, error) {
	q := &query.Query{
		Root: query.Bool{Must: []query.Clause{query.MatchAll{}}},
		Size: 0,
		Aggs: []query.Agg{agg},
	}
	return s.engine.ExecuteQuery(ctx, s.collection, q)
}

// fail logs an engine-boundary failure with context and wraps it in the
// uniform error kind.
func (s *Service) fail(op string, err error) error {
	s.log.Error("query execution failed", "op", op, "collection", s.collection, "error", err)
	return &QueryError{Op: op, Err: err}
}
