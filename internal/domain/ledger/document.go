package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType represents the kind of ledger document
type DocumentType string

const (
	DocumentTypeSale       DocumentType = "SALE"
	DocumentTypeQuote      DocumentType = "QUOTE"
	DocumentTypePurchase   DocumentType = "PURCHASE"
	DocumentTypeAdjustment DocumentType = "ADJUSTMENT"
)

var typeCodes = map[DocumentType]string{
	DocumentTypeSale:       "SO",
	DocumentTypeQuote:      "QT",
	DocumentTypePurchase:   "PO",
	DocumentTypeAdjustment: "ADJ",
}

// IsValid checks if the type is a known DocumentType
func (t DocumentType) IsValid() bool {
	_, ok := typeCodes[t]
	return ok
}

// Code returns the prefix used in human-facing document numbers
func (t DocumentType) Code() string {
	return typeCodes[t]
}

// RequiresCounterparty reports whether documents of this type must name a party.
func (t DocumentType) RequiresCounterparty() bool {
	return t != DocumentTypeAdjustment
}

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// ParseDocumentType parses a case-insensitive document type name.
func ParseDocumentType(raw string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// DocumentStatus represents the lifecycle state of a document
type DocumentStatus string

const (
	DocumentStatusActive DocumentStatus = "ACTIVE"
	DocumentStatusVoided DocumentStatus = "VOIDED"
)

// Nature is the sign of a line's effect on stock
type Nature string

const (
	NatureIncrease Nature = "+"
	NatureDecrease Nature = "-"
	NatureSale     Nature = "S"
)

// IsValid checks if the nature is one of the defined symbols
func (n Nature) IsValid() bool {
	switch n {
	case NatureIncrease, NatureDecrease, NatureSale:
		return true
	}
	return false
}

// StockSign returns +1, -1 or 0 for a line of this nature on a document of type t.
// Quotations never move stock.
func (n Nature) StockSign(t DocumentType) int {
	if t == DocumentTypeQuote {
		return 0
	}
	switch n {
	case NatureIncrease:
		return 1
	case NatureDecrease, NatureSale:
		return -1
	}
	return 0
}

// FormatNumber builds the human-facing number from a type code and an allocated integer.
func FormatNumber(typeCode string, n int64) string {
	return typeCode + strconv.FormatInt(n, 10)
}

// Header holds the caller-supplied fields of a document
type Header struct {
	Type           DocumentType
	CounterpartyID string
	CreatedBy      string
	RemoteRef      *RemoteRef
	Note           string
	DiscountPct    decimal.Decimal
	PriceList      string
}

// Validate checks header fields that do not depend on stored state
func (h Header) Validate() error {
	if !h.Type.IsValid() {
		return ErrInvalidType
	}
	if h.Type.RequiresCounterparty() && strings.TrimSpace(h.CounterpartyID) == "" {
		return ErrInvalidCounterpart
	}
	if err := validatePercent("header discount", h.DiscountPct); err != nil {
		return err
	}
	return nil
}

// LineInput is a line as requested by a caller, before sequencing and totals
type LineInput struct {
	ArticleID        string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	DiscountPct      decimal.Decimal
	Nature           Nature
	OriginDocumentID *int64
	OriginLineSeq    *int
}

// ValidateLines rejects empty line sets and malformed lines.
func ValidateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return ErrNoLines
	}
	for i, l := range lines {
		if strings.TrimSpace(l.ArticleID) == "" {
			return lineValidation(i, "article is required")
		}
		if !l.Nature.IsValid() {
			return lineError(ErrInvalidNature, i, "nature %q is not one of +, - or S", string(l.Nature))
		}
		if !l.Quantity.IsPositive() {
			return lineError(ErrInvalidQuantity, i, "quantity %s must be positive", l.Quantity.String())
		}
		if l.UnitPrice.IsNegative() {
			return lineValidation(i, "unit price cannot be negative")
		}
		if err := validatePercent(fmt.Sprintf("line %d: discount", i+1), l.DiscountPct); err != nil {
			return err
		}
		if (l.OriginDocumentID == nil) != (l.OriginLineSeq == nil) {
			return lineValidation(i, "origin document and origin line must be set together")
		}
	}
	return nil
}

// LineTotal returns quantity × price reduced by the header and line discounts.
// Each discount only applies when its percentage is positive.
func LineTotal(quantity, unitPrice, headerPct, linePct decimal.Decimal) decimal.Decimal {
	total := quantity.Mul(unitPrice)
	total = applyDiscount(total, headerPct)
	total = applyDiscount(total, linePct)
	return total.Round(2)
}

func applyDiscount(amount, pct decimal.Decimal) decimal.Decimal {
	if !pct.IsPositive() {
		return amount
	}
	return amount.Mul(decimal.NewFromInt(1).Sub(pct.Div(decimal.NewFromInt(100))))
}

// Line is a stored line item of a document
type Line struct {
	Seq              int
	ArticleID        string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	DiscountPct      decimal.Decimal
	Nature           Nature
	Total            decimal.Decimal
	OriginDocumentID *int64
	OriginLineSeq    *int
}

// Document is a ledger header with its lines
type Document struct {
	ID             int64
	Number         string
	Type           DocumentType
	CounterpartyID string
	Status         DocumentStatus
	CreatedAt      time.Time
	CreatedBy      string
	RemoteRef      *RemoteRef
	Note           string
	DiscountPct    decimal.Decimal
	PriceList      string
	VoidReason     string
	Lines          []Line
}

// NewDocument builds an active document from an allocated id and number.
// Lines are added afterwards with ReplaceLines.
func NewDocument(id int64, number string, h Header, now time.Time) *Document {
	return &Document{
		ID:             id,
		Number:         number,
		Type:           h.Type,
		CounterpartyID: h.CounterpartyID,
		Status:         DocumentStatusActive,
		CreatedAt:      now,
		CreatedBy:      h.CreatedBy,
		RemoteRef:      h.RemoteRef,
		Note:           h.Note,
		DiscountPct:    h.DiscountPct,
		PriceList:      h.PriceList,
	}
}

// IsVoided reports whether the document has been voided
func (d *Document) IsVoided() bool {
	return d.Status == DocumentStatusVoided
}

// ApplyHeader overwrites the mutable header fields. Type and identity never change.
func (d *Document) ApplyHeader(h Header) {
	d.CounterpartyID = h.CounterpartyID
	d.Note = h.Note
	d.DiscountPct = h.DiscountPct
	d.PriceList = h.PriceList
	if h.RemoteRef != nil {
		d.RemoteRef = h.RemoteRef
	}
}

// ReplaceLines drops the current line set and rebuilds it from inputs,
// assigning sequences and totals.
func (d *Document) ReplaceLines(inputs []LineInput) {
	d.Lines = make([]Line, 0, len(inputs))
	for _, in := range inputs {
		d.addLine(in)
	}
}

func (d *Document) addLine(in LineInput) {
	d.Lines = append(d.Lines, Line{
		Seq:              d.maxSeq() + 1,
		ArticleID:        in.ArticleID,
		Quantity:         in.Quantity,
		UnitPrice:        in.UnitPrice,
		DiscountPct:      in.DiscountPct,
		Nature:           in.Nature,
		Total:            LineTotal(in.Quantity, in.UnitPrice, d.DiscountPct, in.DiscountPct),
		OriginDocumentID: in.OriginDocumentID,
		OriginLineSeq:    in.OriginLineSeq,
	})
}

func (d *Document) maxSeq() int {
	highest := 0
	for _, l := range d.Lines {
		if l.Seq > highest {
			highest = l.Seq
		}
	}
	return highest
}

// Total is the sum of line totals. It is never stored.
func (d *Document) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(l.Total)
	}
	return total
}

// ArticleIDs returns the distinct articles referenced by the lines, in line order.
func (d *Document) ArticleIDs() []string {
	seen := make(map[string]struct{}, len(d.Lines))
	ids := make([]string, 0, len(d.Lines))
	for _, l := range d.Lines {
		if _, ok := seen[l.ArticleID]; ok {
			continue
		}
		seen[l.ArticleID] = struct{}{}
		ids = append(ids, l.ArticleID)
	}
	return ids
}

// EnsureModifiable checks the document can still be rewritten as type t.
func (d *Document) EnsureModifiable(t DocumentType) error {
	if d.Type != t {
		return ErrWrongDocumentType
	}
	if d.IsVoided() {
		return ErrDocumentVoided
	}
	return nil
}

// Void marks the document voided. Lines are kept as they were.
func (d *Document) Void(t DocumentType, reason string) error {
	if d.Type != t {
		return ErrWrongDocumentType
	}
	if d.IsVoided() {
		return ErrDocumentVoided
	}
	d.Status = DocumentStatusVoided
	d.VoidReason = reason
	return nil
}
