package dto

import "net/http"

// Transport-level error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is the base code for request validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeRateLimited is used when the rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// Billing domain error codes. These are surfaced verbatim from the domain
// layer so API clients can match on them.
const (
	// CodeNoActiveRate: no active rate is configured for the tier
	CodeNoActiveRate = "NO_ACTIVE_RATE"
	// CodeInvalidMonth: month key is not a valid "YYYY-MM"
	CodeInvalidMonth = "INVALID_MONTH"
	// CodeInvalidTier: unknown billing tier
	CodeInvalidTier = "INVALID_TIER"
	// CodeNotFound: the requested resource does not exist
	CodeNotFound = "NOT_FOUND"
	// CodeForbidden: the caller may not act on this resource
	CodeForbidden = "FORBIDDEN"
	// CodeAlreadyExists: a duplicate of the resource already exists
	CodeAlreadyExists = "ALREADY_EXISTS"
	// CodeAlreadyReviewed: the proof has already been reviewed
	CodeAlreadyReviewed = "ALREADY_REVIEWED"
	// CodeAlreadyApproved: the payment is already approved
	CodeAlreadyApproved = "ALREADY_APPROVED"
	// CodeInvalidState: the operation is invalid for the current state
	CodeInvalidState = "INVALID_STATE"
	// CodeInvalidInput: the input failed domain validation
	CodeInvalidInput = "INVALID_INPUT"
	// CodeMissingField: a required field is missing
	CodeMissingField = "MISSING_REQUIRED_FIELD"
	// CodeStorageUnavailable: the backing store cannot be reached
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Transport errors
	ErrCodeUnknown:      http.StatusInternalServerError,
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// Domain errors
	CodeNoActiveRate:       http.StatusBadRequest,
	CodeInvalidMonth:       http.StatusBadRequest,
	CodeInvalidTier:        http.StatusBadRequest,
	CodeInvalidInput:       http.StatusBadRequest,
	CodeMissingField:       http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeForbidden:          http.StatusForbidden,
	CodeAlreadyExists:      http.StatusConflict,
	CodeAlreadyReviewed:    http.StatusConflict,
	CodeAlreadyApproved:    http.StatusConflict,
	CodeInvalidState:       http.StatusConflict,
	CodeStorageUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unmapped codes fall back to 500 so an unclassified failure is never
// mistaken for a client error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
