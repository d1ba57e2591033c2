// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"freshmart/internal/core/id"
	"freshmart/internal/domain"
)

// --- Pagination ---

// PaginationRequest contains pagination parameters.
// Out-of-range values are clamped by ListFilter.Normalize.
type PaginationRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// ToFilter converts pagination params to a domain filter.
func (p PaginationRequest) ToFilter() domain.ListFilter {
	return domain.ListFilter{
		Page:  p.Page,
		Limit: p.Limit,
	}
}

// PaginationResponse contains pagination metadata.
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T                `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

// NewListResponse builds a ListResponse from a domain list result,
// mapping each item through fn.
func NewListResponse[S, T any](r *domain.ListResult[S], fn func(S) T) ListResponse[T] {
	items := make([]T, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, fn(item))
	}
	return ListResponse[T]{
		Items: items,
		Pagination: PaginationResponse{
			Page:       r.Page,
			Limit:      r.Limit,
			TotalItems: r.TotalCount,
			TotalPages: r.TotalPages(),
		},
	}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
