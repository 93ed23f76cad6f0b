package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugindex/plugindex/pkg/engine"
)

func TestPluginsPreserveEngineOrder(t *testing.T) {
	hits := []json.RawMessage{
		json.RawMessage(`{"name":"git-plugin","title":"Git Plugin"}`),
		json.RawMessage(`{"name":"ant","title":"Ant"}`),
		json.RawMessage(`{"name":"mailer","title":"Mailer"}`),
	}

	plugins, err := Plugins(hits)
	require.NoError(t, err)
	require.Len(t, plugins, 3)
	assert.Equal(t, "git-plugin", plugins[0].Name)
	assert.Equal(t, "ant", plugins[1].Name)
	assert.Equal(t, "mailer", plugins[2].Name)
}

func TestPluginsRejectMalformedHit(t *testing.T) {
	_, err := Plugins([]json.RawMessage{json.RawMessage(`{"name":`)})
	assert.Error(t, err)
}

func TestPluginDecodesNestedFields(t *testing.T) {
	doc := json.RawMessage(`{
		"name": "git-plugin",
		"title": "Git Plugin",
		"excerpt": "Integrates Git",
		"categories": ["scm"],
		"labels": ["scm", "git"],
		"maintainers": [{"id": "alice", "name": "Alice"}],
		"requiredCore": "2.401.3",
		"stats": {"currentInstalls": 250000, "trend": 1.5},
		"hasNoReverseDependencies": true
	}`)

	p, err := Plugin(doc)
	require.NoError(t, err)
	assert.Equal(t, "git-plugin", p.Name)
	assert.Equal(t, []string{"scm", "git"}, p.Labels)
	require.Len(t, p.Maintainers, 1)
	assert.Equal(t, "alice", p.Maintainers[0].ID)
	assert.Equal(t, int64(250000), p.Stats.CurrentInstalls)
	assert.True(t, p.HasNoReverseDependencies)
}

func TestLabelsMergeTitles(t *testing.T) {
	buckets := []engine.Bucket{
		{Key: "scm", Count: 40},
		{Key: "obscure", Count: 2},
	}
	titles := map[string]string{"scm": "Source code management"}

	labels := Labels(buckets, titles)
	require.Len(t, labels, 2)

	assert.Equal(t, "scm", labels[0].ID)
	require.NotNil(t, labels[0].Title)
	assert.Equal(t, "Source code management", *labels[0].Title)

	// An unmapped id keeps an absent title, never an empty string.
	assert.Equal(t, "obscure", labels[1].ID)
	assert.Nil(t, labels[1].Title)
}

func TestLabelsPreserveBucketOrder(t *testing.T) {
	buckets := []engine.Bucket{{Key: "b"}, {Key: "a"}, {Key: "c"}}
	labels := Labels(buckets, nil)
	assert.Equal(t, "b", labels[0].ID)
	assert.Equal(t, "a", labels[1].ID)
	assert.Equal(t, "c", labels[2].ID)
}

func TestKeys(t *testing.T) {
	buckets := []engine.Bucket{{Key: "2.401.3", Count: 10}, {Key: "2.387.1", Count: 4}}
	assert.Equal(t, []string{"2.401.3", "2.387.1"}, Keys(buckets))
}
