package ledger

import (
	"fmt"

	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrNoLines            = shared.NewDomainError(shared.CodeNoLines, "Document must have at least one line")
	ErrInvalidNature      = shared.NewDomainError(shared.CodeInvalidNature, "Line nature must be one of +, - or S")
	ErrInvalidQuantity    = shared.NewDomainError(shared.CodeInvalidQuantity, "Line quantity must be positive")
	ErrInvalidType        = shared.NewDomainError(shared.CodeInvalidDocumentType, "Unknown document type")
	ErrWrongDocumentType  = shared.NewDomainError(shared.CodeWrongDocumentType, "Document is not of the expected type")
	ErrDocumentVoided     = shared.NewDomainError(shared.CodeDocumentVoided, "Document has been voided")
	ErrDocumentFinalized  = shared.NewDomainError(shared.CodeDocumentFinalized, "Document has already been fulfilled downstream")
	ErrDocumentNotFound   = shared.NewDomainError(shared.CodeNotFound, "Document not found")
	ErrInvalidRemoteRef   = shared.NewDomainError(shared.CodeValidation, "Remote reference cannot be empty")
	ErrInvalidCounterpart = shared.NewDomainError(shared.CodeValidation, "Counterparty is required for this document type")
)

func lineError(base *shared.DomainError, index int, format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(base.Code, fmt.Sprintf("line %d: %s", index+1, fmt.Sprintf(format, args...)))
}

func lineValidation(index int, format string, args ...any) *shared.DomainError {
	return shared.NewValidationError(fmt.Sprintf("line %d: %s", index+1, fmt.Sprintf(format, args...)))
}

func validatePercent(field string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError(fmt.Sprintf("%s must be between 0 and 100", field))
	}
	return nil
}

// DocumentNotFound returns a not-found error naming the document number.
func DocumentNotFound(number string) *shared.DomainError {
	return shared.NewNotFoundError(fmt.Sprintf("Document %s not found", number))
}
