package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped copies with a
// more specific message still match the sentinel.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared by the ledger and integration contexts.
const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidNature       = "INVALID_NATURE"
	CodeInvalidQuantity     = "INVALID_QUANTITY"
	CodeNoLines             = "NO_LINES"
	CodeInvalidDocumentType = "INVALID_DOCUMENT_TYPE"
	CodeWrongDocumentType   = "WRONG_DOCUMENT_TYPE"
	CodeDocumentVoided      = "DOCUMENT_VOIDED"
	CodeDocumentFinalized   = "DOCUMENT_FINALIZED"
	CodeDuplicateRemoteRef  = "DUPLICATE_REMOTE_REF"
	CodeInvalidState        = "INVALID_STATE"
)

// Common domain errors
var (
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput       = NewDomainError(CodeValidation, "Invalid input provided")
	ErrInvalidState       = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrDuplicateRemoteRef = NewDomainError(CodeDuplicateRemoteRef, "Another document already holds this remote reference")
)

// NewValidationError returns a validation error with a caller-facing message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError returns a not-found error naming the missing resource.
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// IsNotFound reports whether err is, or wraps, a not-found domain error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
