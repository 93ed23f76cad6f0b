package query

import (
	"strings"

	"github.com/plugindex/plugindex/pkg/types"
)

// Field names in the plugin document mapping. The .raw variants are the
// untokenized copies used for exact sorting.
const (
	fieldTitle        = "title"
	fieldTitleRaw     = "title.raw"
	fieldName         = "name"
	fieldNameRaw      = "name.raw"
	fieldExcerpt      = "excerpt"
	fieldCategories   = "categories"
	fieldLabels       = "labels"
	fieldRequiredCore = "requiredCore"
	fieldFirstRelease = "firstRelease"
	fieldReleaseTime  = "releaseTimestamp"
	fieldInstalls     = "stats.currentInstalls"
	fieldTrend        = "stats.trend"
	fieldNoRevDeps    = "hasNoReverseDependencies"

	maintainersPath = "maintainers"
	fieldMaintID    = "maintainers.id"
	fieldMaintName  = "maintainers.name"

	statsPath = "stats"
)

// sortSpec is one row of the sort dispatch table. extraFilter, when non-nil,
// is added to the root filter set alongside the sort key.
type sortSpec struct {
	sort        Sort
	extraFilter Clause
}

// sortSpecs is the closed dispatch table for SortBy. Each case is mutually
// exclusive; there is no fall-through between sort keys.
var sortSpecs = map[types.SortBy]sortSpec{
	types.SortFirstRelease: {sort: Sort{Field: fieldFirstRelease, Order: Desc}},
	types.SortInstalled:    {sort: Sort{Field: fieldInstalls, Order: Desc, NestedPath: statsPath}},
	types.SortName:         {sort: Sort{Field: fieldNameRaw, Order: Asc}},
	types.SortTitle:        {sort: Sort{Field: fieldTitleRaw, Order: Asc}},
	types.SortTrend: {
		sort:        Sort{Field: fieldTrend, Order: Desc, NestedPath: statsPath},
		extraFilter: Term{Field: fieldNoRevDeps, Value: true},
	},
	types.SortUpdated: {sort: Sort{Field: fieldReleaseTime, Order: Desc}},
}

// Compose translates a search request into a structured query.
//
// The free-text query becomes a mandatory disjunction across title, name,
// nested maintainer id/name, excerpt, and exact-term matches on categories,
// labels and requiredCore (using the comma-split lower-cased query as a term
// set). Without a query the mandatory clause is match-all. Facet filters go
// into a separate filter clause so they never influence relevance.
func Compose(req types.SearchRequest) *Query {
	q := &Query{
		From: (req.Page - 1) * req.Limit,
		Size: req.Limit,
	}

	if req.Query != "" {
		terms := splitTerms(req.Query)
		q.Root.Must = append(q.Root.Must, Bool{Should: []Clause{
			Match{Field: fieldTitle, Text: req.Query},
			Match{Field: fieldName, Text: req.Query},
			Nested{Path: maintainersPath, Clause: Match{Field: fieldMaintID, Text: req.Query}},
			Nested{Path: maintainersPath, Clause: Match{Field: fieldMaintName, Text: req.Query}},
			Match{Field: fieldExcerpt, Text: req.Query},
			Terms{Field: fieldCategories, Values: terms},
			Terms{Field: fieldLabels, Values: terms},
			Terms{Field: fieldRequiredCore, Values: terms},
		}})
	} else {
		q.Root.Must = append(q.Root.Must, MatchAll{})
	}

	if req.HasFilters() {
		var filter Bool
		switch {
		case len(req.Categories) > 0 && len(req.Labels) > 0:
			// Categories and labels narrow together, never independently.
			filter.Must = append(filter.Must, Bool{Should: []Clause{
				Terms{Field: fieldCategories, Values: req.Categories},
				Terms{Field: fieldLabels, Values: req.Labels},
			}})
		case len(req.Categories) > 0:
			filter.Must = append(filter.Must, Bool{Should: []Clause{
				Terms{Field: fieldCategories, Values: req.Categories},
			}})
		case len(req.Labels) > 0:
			filter.Must = append(filter.Must, Bool{Should: []Clause{
				Terms{Field: fieldLabels, Values: req.Labels},
			}})
		}
		if len(req.Maintainers) > 0 {
			filter.Must = append(filter.Must, Bool{Should: []Clause{
				Nested{Path: maintainersPath, Clause: Terms{Field: fieldMaintID, Values: req.Maintainers}},
				Nested{Path: maintainersPath, Clause: Terms{Field: fieldMaintName, Values: req.Maintainers}},
			}})
		}
		if req.CoreVersion != "" {
			filter.Must = append(filter.Must, Term{Field: fieldRequiredCore, Value: req.CoreVersion})
		}
		q.Root.Filter = append(q.Root.Filter, filter)
	}

	if req.SortBy != "" {
		if spec, ok := sortSpecs[req.SortBy]; ok {
			s := spec.sort
			q.Sort = &s
			if spec.extraFilter != nil {
				q.Root.Filter = append(q.Root.Filter, spec.extraFilter)
			}
		}
	}

	return q
}

// splitTerms lower-cases the query and splits it on commas into an exact-term
// set.
func splitTerms(s string) []string {
	return strings.Split(strings.ToLower(s), ",")
}
