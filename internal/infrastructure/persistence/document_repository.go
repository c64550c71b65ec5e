package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/erp/stocksync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentRepository implements ledger.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Create inserts the header, then the lines
func (r *GormDocumentRepository) Create(ctx context.Context, doc *ledger.Document) error {
	db := r.db.WithContext(ctx)
	header := models.DocumentModelFromDomain(doc)
	if err := db.Omit(clause.Associations).Create(header).Error; err != nil {
		if isDuplicateKey(err) && doc.RemoteRef != nil {
			return shared.ErrDuplicateRemoteRef
		}
		return err
	}
	return r.insertLines(db, doc)
}

// FindByNumber loads a document by its human number
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, number string) (*ledger.Document, error) {
	return r.findOne(r.db.WithContext(ctx), "number = ?", number)
}

// FindByNumberForUpdate loads a document and locks its header row
func (r *GormDocumentRepository) FindByNumberForUpdate(ctx context.Context, number string) (*ledger.Document, error) {
	db := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findOne(db, "number = ?", number)
}

// FindByRemoteRef loads the document holding ref
func (r *GormDocumentRepository) FindByRemoteRef(ctx context.Context, ref ledger.RemoteRef) (*ledger.Document, error) {
	return r.findOne(r.db.WithContext(ctx), "remote_ref = ?", ref.String())
}

func (r *GormDocumentRepository) findOne(db *gorm.DB, query string, args ...any) (*ledger.Document, error) {
	var model models.DocumentModel
	if err := db.Preload("Lines", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("seq ASC")
	}).Where(query, args...).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateHeader writes the mutable header columns and status
func (r *GormDocumentRepository) UpdateHeader(ctx context.Context, doc *ledger.Document) error {
	var remoteRef *string
	if doc.RemoteRef != nil {
		ref := doc.RemoteRef.String()
		remoteRef = &ref
	}
	result := r.db.WithContext(ctx).Model(&models.DocumentModel{}).
		Where("id = ?", doc.ID).
		Updates(map[string]any{
			"counterparty_id": doc.CounterpartyID,
			"status":          doc.Status,
			"remote_ref":      remoteRef,
			"note":            doc.Note,
			"discount_pct":    doc.DiscountPct,
			"price_list":      doc.PriceList,
			"void_reason":     doc.VoidReason,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return shared.ErrDuplicateRemoteRef
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReplaceLines deletes every stored line of doc and inserts doc.Lines
func (r *GormDocumentRepository) ReplaceLines(ctx context.Context, doc *ledger.Document) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("document_id = ?", doc.ID).Delete(&models.DocumentLineModel{}).Error; err != nil {
		return err
	}
	return r.insertLines(db, doc)
}

func (r *GormDocumentRepository) insertLines(db *gorm.DB, doc *ledger.Document) error {
	lines := models.LineModelsFromDomain(doc)
	if len(lines) == 0 {
		return nil
	}
	return db.Create(&lines).Error
}

// IsFulfilled reports whether an active document holds a line originating from documentID
func (r *GormDocumentRepository) IsFulfilled(ctx context.Context, documentID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DocumentLineModel{}).
		Joins("JOIN documents ON documents.id = document_lines.document_id").
		Where("document_lines.origin_document_id = ?", documentID).
		Where("documents.id <> ?", documentID).
		Where("documents.status = ?", ledger.DocumentStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// isDuplicateKey recognizes unique violations whether or not the dialector
// translated them into gorm.ErrDuplicatedKey.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

var _ ledger.DocumentRepository = (*GormDocumentRepository)(nil)
