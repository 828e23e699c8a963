package handler

import "github.com/crvcrv26/repo-sub002/internal/interfaces/http/dto"

// Response envelope types referenced by the swagger annotations. Handlers
// build actual responses through dto.Success and dto.Error; these exist so
// the generated docs show the typed data field.

// APIResponse wraps a payload of type T in the standard envelope.
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// SuccessResponse is the envelope for operations that return no data.
// @Description Simple success response without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// ErrorResponse is the envelope for failed operations.
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
