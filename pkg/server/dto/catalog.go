// Package dto defines the HTTP response envelopes of the catalog API.
package dto

import "github.com/plugindex/plugindex/pkg/types"

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CategoriesResponse wraps the category list.
type CategoriesResponse struct {
	Categories []types.Category `json:"categories"`
	Total      int              `json:"total"`
}

// MaintainersResponse wraps the distinct maintainer ids.
type MaintainersResponse struct {
	Maintainers []string `json:"maintainers"`
	Total       int      `json:"total"`
}

// LabelsResponse wraps the distinct labels with display titles.
type LabelsResponse struct {
	Labels []types.Label `json:"labels"`
	Total  int           `json:"total"`
}

// VersionsResponse wraps the distinct required-core versions.
type VersionsResponse struct {
	Versions []string `json:"versions"`
	Total    int      `json:"total"`
}
