// Package transform shapes raw engine output into catalog domain types:
// document hits become plugins, aggregation buckets become facet lists.
package transform

import (
	"encoding/json"
	"fmt"

	"github.com/plugindex/plugindex/pkg/engine"
	"github.com/plugindex/plugindex/pkg/types"
)

// Plugin decodes a single raw document.
func Plugin(doc json.RawMessage) (*types.Plugin, error) {
	var p types.Plugin
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode plugin document: %w", err)
	}
	return &p, nil
}

// Plugins decodes raw hits in place, preserving the engine's order exactly:
// that order already reflects the requested sort, or relevance when no sort
// was applied.
func Plugins(hits []json.RawMessage) ([]types.Plugin, error) {
	plugins := make([]types.Plugin, 0, len(hits))
	for i, hit := range hits {
		var p types.Plugin
		if err := json.Unmarshal(hit, &p); err != nil {
			return nil, fmt.Errorf("decode hit %d: %w", i, err)
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

// Keys extracts bucket keys, preserving bucket order.
func Keys(buckets []engine.Bucket) []string {
	keys := make([]string, 0, len(buckets))
	for _, b := range buckets {
		keys = append(keys, b.Key)
	}
	return keys
}

// Labels turns buckets into labels, attaching the display title when the
// title map has an entry for the key. Unmapped ids keep a nil title; a title
// is never fabricated.
func Labels(buckets []engine.Bucket, titles map[string]string) []types.Label {
	labels := make([]types.Label, 0, len(buckets))
	for _, b := range buckets {
		label := types.Label{ID: b.Key}
		if title, ok := titles[b.Key]; ok {
			label.Title = &title
		}
		labels = append(labels, label)
	}
	return labels
}
