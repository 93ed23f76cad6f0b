// Package handlers contains the gin handlers of the catalog API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plugindex/plugindex"
	"github.com/plugindex/plugindex/pkg/server/dto"
	"github.com/plugindex/plugindex/pkg/types"
)

// CatalogHandler handles plugin search and facet listing requests.
type CatalogHandler struct {
	catalog plugindex.Catalog
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog plugindex.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Search handles GET /api/v1/plugins.
//
// Query parameters: q, page, limit, categories, labels, maintainers, core,
// sort. List parameters accept comma-separated values.
func (h *CatalogHandler) Search(c *gin.Context) {
	req, err := parseSearchRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "invalid_request", Message: err.Error()})
		return
	}

	page, err := h.catalog.Search(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "query_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPlugin handles GET /api/v1/plugin/:name.
func (h *CatalogHandler) GetPlugin(c *gin.Context) {
	name := c.Param("name")
	plugin, err := h.catalog.GetPlugin(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "query_failed", Message: err.Error()})
		return
	}
	if plugin == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: "not_found", Message: "plugin " + name + " not found"})
		return
	}
	c.JSON(http.StatusOK, plugin)
}

// GetCategories handles GET /api/v1/categories.
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories := h.catalog.GetCategories()
	c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: categories, Total: len(categories)})
}

// GetMaintainers handles GET /api/v1/maintainers.
func (h *CatalogHandler) GetMaintainers(c *gin.Context) {
	maintainers, err := h.catalog.GetMaintainers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "query_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MaintainersResponse{Maintainers: maintainers, Total: len(maintainers)})
}

// GetLabels handles GET /api/v1/labels.
func (h *CatalogHandler) GetLabels(c *gin.Context) {
	labels, err := h.catalog.GetLabels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "query_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.LabelsResponse{Labels: labels, Total: len(labels)})
}

// GetVersions handles GET /api/v1/versions.
func (h *CatalogHandler) GetVersions(c *gin.Context) {
	versions, err := h.catalog.GetVersions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "query_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.VersionsResponse{Versions: versions, Total: len(versions)})
}

func parseSearchRequest(c *gin.Context) (types.SearchRequest, error) {
	req := types.SearchRequest{
		Query:       c.Query("q"),
		Page:        1,
		Limit:       plugindex.DefaultLimit,
		Categories:  splitList(c.Query("categories")),
		Labels:      splitList(c.Query("labels")),
		Maintainers: splitList(c.Query("maintainers")),
		CoreVersion: c.Query("core"),
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return req, errors.New("page must be a positive integer")
		}
		req.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return req, errors.New("limit must be a positive integer")
		}
		req.Limit = limit
	}
	if raw := c.Query("sort"); raw != "" {
		sortBy, ok := types.ParseSortBy(raw)
		if !ok {
			return req, errors.New("sort must be one of firstRelease, installed, name, title, trend, updated")
		}
		req.SortBy = sortBy
	}
	return req, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
