// Package meta loads the bundled facet metadata: category descriptions and
// label display titles. Both resources are read exactly once at startup; the
// resulting Store is immutable and safe to share across requests without
// synchronization.
package meta

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/plugindex/plugindex/pkg/types"
)

//go:embed data/categories.json
var categoriesJSON []byte

//go:embed data/labels.json
var labelsJSON []byte

// Store holds the static facet metadata for the process lifetime.
type Store struct {
	Categories  []types.Category
	LabelTitles map[string]string
}

// Load parses the bundled resources. A malformed category record is dropped
// rather than failing the whole load; a malformed labels resource is fatal
// because the label-title map is structurally required.
func Load() (*Store, error) {
	categories := parseCategories(categoriesJSON)

	titles, err := parseLabelTitles(labelsJSON)
	if err != nil {
		return nil, err
	}

	return &Store{Categories: categories, LabelTitles: titles}, nil
}

// parseCategories keeps every record that decodes into a category with an id,
// silently skipping the rest.
func parseCategories(data []byte) []types.Category {
	var doc struct {
		Categories []json.RawMessage `json:"categories"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}

	var categories []types.Category
	for _, raw := range doc.Categories {
		var c types.Category
		if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" {
			continue
		}
		categories = append(categories, c)
	}
	return categories
}

func parseLabelTitles(data []byte) (map[string]string, error) {
	var doc struct {
		Labels []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"labels"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse labels resource: %w", err)
	}

	titles := make(map[string]string, len(doc.Labels))
	for _, l := range doc.Labels {
		if l.ID == "" {
			return nil, fmt.Errorf("parse labels resource: record with empty id")
		}
		titles[l.ID] = l.Title
	}
	return titles, nil
}
