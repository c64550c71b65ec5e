package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter key prefixes
const (
	documentIDKeyPrefix     = "doc_id:"
	documentNumberKeyPrefix = "doc_no:"
)

// GormSequenceAllocator issues sequence values from the counters table.
// It must run on a transaction handle: the counter row stays locked until
// that transaction commits or rolls back.
type GormSequenceAllocator struct {
	db *gorm.DB
}

// NewGormSequenceAllocator creates an allocator bound to db
func NewGormSequenceAllocator(db *gorm.DB) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db}
}

// NextDocumentID returns the next internal id for kind
func (a *GormSequenceAllocator) NextDocumentID(ctx context.Context, kind string) (int64, error) {
	return a.next(ctx, documentIDKeyPrefix+kind)
}

// NextDocumentNumber returns the next human number for a type code
func (a *GormSequenceAllocator) NextDocumentNumber(ctx context.Context, typeCode string) (int64, error) {
	return a.next(ctx, documentNumberKeyPrefix+typeCode)
}

func (a *GormSequenceAllocator) next(ctx context.Context, key string) (int64, error) {
	db := a.db.WithContext(ctx)

	var counter models.CounterModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", key).
		Take(&counter).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return a.create(ctx, db, key)
	case err != nil:
		return 0, fmt.Errorf("failed to lock counter %s: %w", key, err)
	}

	counter.Value++
	if err := db.Model(&models.CounterModel{}).
		Where("name = ?", key).
		Updates(map[string]any{"value": counter.Value, "updated_at": time.Now()}).Error; err != nil {
		return 0, fmt.Errorf("failed to advance counter %s: %w", key, err)
	}
	return counter.Value, nil
}

// create inserts a missing counter at 1. When a concurrent transaction wins
// the insert, the row now exists and the locked read path takes over.
func (a *GormSequenceAllocator) create(ctx context.Context, db *gorm.DB, key string) (int64, error) {
	counter := models.CounterModel{Name: key, Value: 1, UpdatedAt: time.Now()}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to create counter %s: %w", key, result.Error)
	}
	if result.RowsAffected == 1 {
		return 1, nil
	}
	return a.next(ctx, key)
}

var _ ledger.SequenceAllocator = (*GormSequenceAllocator)(nil)
