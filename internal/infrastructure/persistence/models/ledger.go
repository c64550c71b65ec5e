package models

import (
	"time"

	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for a ledger document header.
// RemoteRef is nullable and unique, so at most one document holds a given
// storefront order.
type DocumentModel struct {
	ID             int64                 `gorm:"primaryKey;autoIncrement:false"`
	Number         string                `gorm:"type:varchar(32);not null;uniqueIndex:uq_documents_number"`
	Type           ledger.DocumentType   `gorm:"type:varchar(20);not null;index:idx_documents_type"`
	CounterpartyID string                `gorm:"type:varchar(64);index:idx_documents_counterparty"`
	Status         ledger.DocumentStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	CreatedAt      time.Time             `gorm:"not null"`
	UpdatedAt      time.Time             `gorm:"not null"`
	CreatedBy      string                `gorm:"type:varchar(100)"`
	RemoteRef      *string               `gorm:"type:varchar(100);uniqueIndex:uq_documents_remote_ref"`
	Note           string                `gorm:"type:text"`
	DiscountPct    decimal.Decimal       `gorm:"type:decimal(5,2);not null;default:0"`
	PriceList      string                `gorm:"type:varchar(50)"`
	VoidReason     string                `gorm:"type:text"`
	Lines          []DocumentLineModel   `gorm:"foreignKey:DocumentID;references:ID"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// DocumentLineModel is one stored line. (DocumentID, Seq) is the key.
type DocumentLineModel struct {
	DocumentID       int64           `gorm:"primaryKey;autoIncrement:false"`
	Seq              int             `gorm:"primaryKey;autoIncrement:false"`
	ArticleID        string          `gorm:"type:varchar(64);not null;index:idx_document_lines_article"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPct      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Nature           ledger.Nature   `gorm:"type:varchar(1);not null"`
	Total            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	OriginDocumentID *int64          `gorm:"index:idx_document_lines_origin"`
	OriginLineSeq    *int
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "document_lines"
}

// CounterModel holds the last value issued for one sequence key
type CounterModel struct {
	Name      string    `gorm:"type:varchar(64);primaryKey"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CounterModel) TableName() string {
	return "counters"
}

// ToDomain converts the header and any loaded lines to a domain Document
func (m *DocumentModel) ToDomain() *ledger.Document {
	doc := &ledger.Document{
		ID:             m.ID,
		Number:         m.Number,
		Type:           m.Type,
		CounterpartyID: m.CounterpartyID,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
		Note:           m.Note,
		DiscountPct:    m.DiscountPct,
		PriceList:      m.PriceList,
		VoidReason:     m.VoidReason,
		Lines:          make([]ledger.Line, 0, len(m.Lines)),
	}
	if m.RemoteRef != nil {
		doc.RemoteRef = ledger.RemoteRef(*m.RemoteRef).Ptr()
	}
	for _, l := range m.Lines {
		doc.Lines = append(doc.Lines, l.ToDomain())
	}
	return doc
}

// DocumentModelFromDomain builds the header model. Lines are converted
// separately with LineModelsFromDomain so they can be written on their own.
func DocumentModelFromDomain(doc *ledger.Document) *DocumentModel {
	m := &DocumentModel{
		ID:             doc.ID,
		Number:         doc.Number,
		Type:           doc.Type,
		CounterpartyID: doc.CounterpartyID,
		Status:         doc.Status,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.CreatedAt,
		CreatedBy:      doc.CreatedBy,
		Note:           doc.Note,
		DiscountPct:    doc.DiscountPct,
		PriceList:      doc.PriceList,
		VoidReason:     doc.VoidReason,
	}
	if doc.RemoteRef != nil {
		ref := doc.RemoteRef.String()
		m.RemoteRef = &ref
	}
	return m
}

// ToDomain converts a stored line
func (m DocumentLineModel) ToDomain() ledger.Line {
	return ledger.Line{
		Seq:              m.Seq,
		ArticleID:        m.ArticleID,
		Quantity:         m.Quantity,
		UnitPrice:        m.UnitPrice,
		DiscountPct:      m.DiscountPct,
		Nature:           m.Nature,
		Total:            m.Total,
		OriginDocumentID: m.OriginDocumentID,
		OriginLineSeq:    m.OriginLineSeq,
	}
}

// LineModelsFromDomain converts the lines of doc
func LineModelsFromDomain(doc *ledger.Document) []DocumentLineModel {
	lines := make([]DocumentLineModel, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		lines = append(lines, DocumentLineModel{
			DocumentID:       doc.ID,
			Seq:              l.Seq,
			ArticleID:        l.ArticleID,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			DiscountPct:      l.DiscountPct,
			Nature:           l.Nature,
			Total:            l.Total,
			OriginDocumentID: l.OriginDocumentID,
			OriginLineSeq:    l.OriginLineSeq,
		})
	}
	return lines
}
