package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Sequence counter kinds
const (
	// SequenceKindDocument is the counter behind every internal document id.
	SequenceKindDocument = "document"
)

// SequenceAllocator issues monotonically increasing integers per key.
// Implementations must hold a row lock on the counter for the lifetime of the
// enclosing transaction so concurrent callers never observe the same value.
type SequenceAllocator interface {
	NextDocumentID(ctx context.Context, kind string) (int64, error)
	NextDocumentNumber(ctx context.Context, typeCode string) (int64, error)
}

// DocumentRepository persists documents and their lines
type DocumentRepository interface {
	// Create inserts the header and every line.
	Create(ctx context.Context, doc *Document) error
	// FindByNumber loads a document with its lines ordered by sequence.
	FindByNumber(ctx context.Context, number string) (*Document, error)
	// FindByNumberForUpdate is FindByNumber holding a row lock on the header
	// until the enclosing transaction ends.
	FindByNumberForUpdate(ctx context.Context, number string) (*Document, error)
	// FindByRemoteRef loads the document holding ref.
	FindByRemoteRef(ctx context.Context, ref RemoteRef) (*Document, error)
	// UpdateHeader writes the mutable header columns and status.
	UpdateHeader(ctx context.Context, doc *Document) error
	// ReplaceLines deletes every stored line of doc and inserts doc.Lines.
	ReplaceLines(ctx context.Context, doc *Document) error
	// IsFulfilled reports whether an active document holds a line whose
	// origin points at documentID.
	IsFulfilled(ctx context.Context, documentID int64) (bool, error)
}

// StockReader exposes authoritative on-hand quantities derived from active lines.
type StockReader interface {
	CurrentStock(ctx context.Context, articleIDs []string) (map[string]decimal.Decimal, error)
}
