package dto

import (
	"net/http"

	"github.com/erp/stocksync/internal/domain/shared"
)

// Transport error codes. Format: ERR_<CATEGORY>_<DESCRIPTION>.
// Domain errors keep their own codes (see shared.Code*) and are mapped below.

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for request validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Sync error codes
const (
	// ErrCodeSyncFailed is used when a pull or push run could not proceed
	ErrCodeSyncFailed = "ERR_SYNC_FAILED"
	// ErrCodeUnavailable is used when a dependency fails its readiness check
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Request validation -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Input errors
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Upstream failures
	ErrCodeSyncFailed:  http.StatusBadGateway,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	// Ledger rule violations -> 400 Bad Request
	shared.CodeValidation:          http.StatusBadRequest,
	shared.CodeInvalidNature:       http.StatusBadRequest,
	shared.CodeInvalidQuantity:     http.StatusBadRequest,
	shared.CodeNoLines:             http.StatusBadRequest,
	shared.CodeInvalidDocumentType: http.StatusBadRequest,
	shared.CodeWrongDocumentType:   http.StatusBadRequest,

	shared.CodeNotFound: http.StatusNotFound,

	// State conflicts -> 409 Conflict
	shared.CodeDocumentVoided:     http.StatusConflict,
	shared.CodeDocumentFinalized:  http.StatusConflict,
	shared.CodeDuplicateRemoteRef: http.StatusConflict,

	shared.CodeInvalidState: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
