package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugindex/plugindex"
	"github.com/plugindex/plugindex/pkg/types"
)

// stubCatalog records the last search request and serves canned responses.
type stubCatalog struct {
	lastSearch types.SearchRequest
	page       *types.PagedResult
	plugin     *types.Plugin
	err        error
}

func (s *stubCatalog) Search(_ context.Context, req types.SearchRequest) (*types.PagedResult, error) {
	s.lastSearch = req
	return s.page, s.err
}

func (s *stubCatalog) GetPlugin(context.Context, string) (*types.Plugin, error) {
	return s.plugin, s.err
}

func (s *stubCatalog) GetCategories() []types.Category {
	return []types.Category{{ID: "scm", Title: "Source Code Management"}}
}

func (s *stubCatalog) GetMaintainers(context.Context) ([]string, error) {
	return []string{"alice", "bob"}, s.err
}

func (s *stubCatalog) GetLabels(context.Context) ([]types.Label, error) {
	return []types.Label{{ID: "scm"}}, s.err
}

func (s *stubCatalog) GetVersions(context.Context) ([]string, error) {
	return []string{"2.401.3"}, s.err
}

func newTestRouter(catalog plugindex.Catalog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCatalogHandler(catalog)
	r.GET("/plugins", h.Search)
	r.GET("/plugin/:name", h.GetPlugin)
	r.GET("/categories", h.GetCategories)
	r.GET("/maintainers", h.GetMaintainers)
	r.GET("/labels", h.GetLabels)
	r.GET("/versions", h.GetVersions)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSearchParsesQueryParameters(t *testing.T) {
	stub := &stubCatalog{page: &types.PagedResult{Items: []types.Plugin{}}}
	r := newTestRouter(stub)

	rec := doGet(t, r, "/plugins?q=git&page=2&limit=25&categories=scm,build&labels=git&maintainers=alice&core=2.401.3&sort=installed")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "git", stub.lastSearch.Query)
	assert.Equal(t, 2, stub.lastSearch.Page)
	assert.Equal(t, 25, stub.lastSearch.Limit)
	assert.Equal(t, []string{"scm", "build"}, stub.lastSearch.Categories)
	assert.Equal(t, []string{"git"}, stub.lastSearch.Labels)
	assert.Equal(t, []string{"alice"}, stub.lastSearch.Maintainers)
	assert.Equal(t, "2.401.3", stub.lastSearch.CoreVersion)
	assert.Equal(t, types.SortInstalled, stub.lastSearch.SortBy)
}

func TestSearchDefaults(t *testing.T) {
	stub := &stubCatalog{page: &types.PagedResult{Items: []types.Plugin{}}}
	r := newTestRouter(stub)

	rec := doGet(t, r, "/plugins")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, stub.lastSearch.Page)
	assert.Equal(t, plugindex.DefaultLimit, stub.lastSearch.Limit)
	assert.Empty(t, stub.lastSearch.SortBy)
	assert.Nil(t, stub.lastSearch.Categories)
}

func TestSearchRejectsBadParameters(t *testing.T) {
	stub := &stubCatalog{page: &types.PagedResult{}}
	r := newTestRouter(stub)

	for _, path := range []string{
		"/plugins?page=0",
		"/plugins?page=abc",
		"/plugins?limit=-5",
		"/plugins?sort=popularity",
	} {
		rec := doGet(t, r, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)

		var body struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), path)
		assert.Equal(t, "invalid_request", body.Code, path)
	}
}

func TestSearchQueryFailure(t *testing.T) {
	stub := &stubCatalog{err: errors.New("engine down")}
	r := newTestRouter(stub)

	rec := doGet(t, r, "/plugins?q=git")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "query_failed", body.Code)
}

func TestGetPluginFound(t *testing.T) {
	stub := &stubCatalog{plugin: &types.Plugin{Name: "git-plugin", Title: "Git Plugin"}}
	r := newTestRouter(stub)

	rec := doGet(t, r, "/plugin/git-plugin")
	require.Equal(t, http.StatusOK, rec.Code)

	var plugin types.Plugin
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plugin))
	assert.Equal(t, "git-plugin", plugin.Name)
}

func TestGetPluginNotFound(t *testing.T) {
	r := newTestRouter(&stubCatalog{})

	rec := doGet(t, r, "/plugin/no-such-plugin")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Code)
}

func TestFacetEndpoints(t *testing.T) {
	r := newTestRouter(&stubCatalog{})

	for _, tc := range []struct {
		path  string
		field string
	}{
		{"/categories", "categories"},
		{"/maintainers", "maintainers"},
		{"/labels", "labels"},
		{"/versions", "versions"},
	} {
		rec := doGet(t, r, tc.path)
		require.Equal(t, http.StatusOK, rec.Code, tc.path)

		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), tc.path)
		assert.Contains(t, body, tc.field, tc.path)
		assert.Contains(t, body, "total", tc.path)
	}
}
