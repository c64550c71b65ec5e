package ledger

import (
	"time"

	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// CreateDocumentInput carries a new document
type CreateDocumentInput struct {
	Type           ledger.DocumentType
	CounterpartyID string
	CreatedBy      string
	RemoteRef      *ledger.RemoteRef
	Note           string
	DiscountPct    decimal.Decimal
	PriceList      string
	Lines          []ledger.LineInput
}

func (in CreateDocumentInput) header() ledger.Header {
	return ledger.Header{
		Type:           in.Type,
		CounterpartyID: in.CounterpartyID,
		CreatedBy:      in.CreatedBy,
		RemoteRef:      in.RemoteRef,
		Note:           in.Note,
		DiscountPct:    in.DiscountPct,
		PriceList:      in.PriceList,
	}
}

// UpdateDocumentInput replaces the mutable header fields and every line.
// Type is the type the caller expects the stored document to have.
type UpdateDocumentInput struct {
	Type           ledger.DocumentType
	CounterpartyID string
	RemoteRef      *ledger.RemoteRef
	Note           string
	DiscountPct    decimal.Decimal
	PriceList      string
	Lines          []ledger.LineInput
}

func (in UpdateDocumentInput) header() ledger.Header {
	return ledger.Header{
		Type:           in.Type,
		CounterpartyID: in.CounterpartyID,
		RemoteRef:      in.RemoteRef,
		Note:           in.Note,
		DiscountPct:    in.DiscountPct,
		PriceList:      in.PriceList,
	}
}

// AdjustmentLine is a signed stock correction for one article.
// A positive delta adds stock, a negative one removes it.
type AdjustmentLine struct {
	ArticleID string
	Delta     decimal.Decimal
}

// AdjustmentInput carries a stock adjustment
type AdjustmentInput struct {
	CreatedBy string
	Note      string
	Lines     []AdjustmentLine
}

func (in AdjustmentInput) lines() []ledger.LineInput {
	out := make([]ledger.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		nature := ledger.NatureIncrease
		if l.Delta.IsNegative() {
			nature = ledger.NatureDecrease
		}
		out = append(out, ledger.LineInput{
			ArticleID: l.ArticleID,
			Quantity:  l.Delta.Abs(),
			Nature:    nature,
		})
	}
	return out
}

// DocumentRef identifies a written document
type DocumentRef struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
}

// PushTask asks for the stock of Articles to be pushed to the storefront
// after a committed ledger write.
type PushTask struct {
	DocumentNumber string
	Articles       []string
	DocumentDate   time.Time
}
