// Package types defines the domain model of the plugin catalog: search
// requests, plugin documents, facet values, and paginated results.
package types

import "time"

// SortBy selects the sort order for a catalog search. The zero value means
// no sort is applied and the engine's default ordering is used.
type SortBy string

const (
	SortFirstRelease SortBy = "firstRelease"
	SortInstalled    SortBy = "installed"
	SortName         SortBy = "name"
	SortTitle        SortBy = "title"
	SortTrend        SortBy = "trend"
	SortUpdated      SortBy = "updated"
)

// ParseSortBy maps a request parameter to a SortBy value. An empty string is
// valid and means "no sort". Unknown values return false.
func ParseSortBy(s string) (SortBy, bool) {
	switch SortBy(s) {
	case "", SortFirstRelease, SortInstalled, SortName, SortTitle, SortTrend, SortUpdated:
		return SortBy(s), true
	}
	return "", false
}

// SearchRequest describes a catalog search: an optional free-text query,
// facet filters, a sort order, and 1-based pagination.
type SearchRequest struct {
	Query       string   `json:"query,omitempty"`
	Page        int      `json:"page"`
	Limit       int      `json:"limit"`
	Categories  []string `json:"categories,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Maintainers []string `json:"maintainers,omitempty"`
	CoreVersion string   `json:"core,omitempty"`
	SortBy      SortBy   `json:"sort,omitempty"`
}

// HasFilters reports whether any facet filter is set. The free-text query and
// sort order are not filters.
func (r SearchRequest) HasFilters() bool {
	return len(r.Categories) > 0 || len(r.Labels) > 0 || len(r.Maintainers) > 0 || r.CoreVersion != ""
}

// Maintainer is a plugin maintainer entry, stored as a nested sub-document of
// the plugin.
type Maintainer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Stats holds install and trend counters for a plugin.
type Stats struct {
	CurrentInstalls int64   `json:"currentInstalls"`
	Trend           float64 `json:"trend"`
}

// Plugin is a catalog document. Name is the unique key. Plugins are immutable
// once loaded from the engine.
type Plugin struct {
	Name                     string       `json:"name"`
	Title                    string       `json:"title"`
	Excerpt                  string       `json:"excerpt"`
	Categories               []string     `json:"categories"`
	Labels                   []string     `json:"labels"`
	Maintainers              []Maintainer `json:"maintainers"`
	RequiredCore             string       `json:"requiredCore"`
	Stats                    Stats        `json:"stats"`
	FirstRelease             time.Time    `json:"firstRelease"`
	ReleaseTimestamp         time.Time    `json:"releaseTimestamp"`
	HasNoReverseDependencies bool         `json:"hasNoReverseDependencies"`
}

// Category is static reference data loaded once at startup.
type Category struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Label pairs a label id with its display title. Title is nil when no
// metadata entry exists for the id; it is never an empty-string stand-in.
type Label struct {
	ID    string  `json:"id"`
	Title *string `json:"title,omitempty"`
}

// PagedResult is one page of search results.
//
// TotalPages is always ceil(TotalItems/PageSize), and when TotalItems is zero
// Items is empty and TotalPages is zero.
type PagedResult struct {
	Items      []Plugin `json:"plugins"`
	Page       int      `json:"page"`
	TotalPages int      `json:"pages"`
	TotalItems int64    `json:"total"`
	PageSize   int      `json:"limit"`
}
