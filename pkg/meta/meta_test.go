package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBundledResources(t *testing.T) {
	store, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, store.Categories)
	assert.NotEmpty(t, store.LabelTitles)
	assert.Equal(t, "Source code management", store.LabelTitles["scm"])
}

func TestParseCategoriesSkipsMalformedRecords(t *testing.T) {
	data := []byte(`{"categories": [
		{"id": "scm", "title": "Source Code Management", "description": "d"},
		{"title": "missing id"},
		{"id": "build", "title": "Build Tools", "description": "d"}
	]}`)

	categories := parseCategories(data)
	require.Len(t, categories, 2)
	assert.Equal(t, "scm", categories[0].ID)
	assert.Equal(t, "build", categories[1].ID)
}

func TestParseCategoriesToleratesBrokenResource(t *testing.T) {
	assert.Empty(t, parseCategories([]byte(`not json`)))
}

func TestParseLabelTitles(t *testing.T) {
	data := []byte(`{"labels": [
		{"id": "scm", "title": "Source code management"},
		{"id": "misc", "title": "Miscellaneous"}
	]}`)

	titles, err := parseLabelTitles(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"scm":  "Source code management",
		"misc": "Miscellaneous",
	}, titles)
}

func TestParseLabelTitlesFailsOnMalformedResource(t *testing.T) {
	// Unlike categories, a broken labels resource is fatal.
	_, err := parseLabelTitles([]byte(`{"labels": [`))
	assert.Error(t, err)

	_, err = parseLabelTitles([]byte(`{"labels": [{"title": "no id"}]}`))
	assert.Error(t, err)
}
