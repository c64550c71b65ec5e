package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/erp/stocksync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSyncRunRepository implements integration.SyncRunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// Save writes a finished run and its batches in one transaction
func (r *GormSyncRunRepository) Save(ctx context.Context, run *integration.SyncRun) error {
	model, err := models.SyncRunModelFromDomain(run)
	if err != nil {
		return fmt.Errorf("failed to encode sync run: %w", err)
	}
	batches := model.Batches
	model.Batches = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(batches) == 0 {
			return nil
		}
		return tx.Create(&batches).Error
	})
}

// FindByID loads a run with its batches in sequence order
func (r *GormSyncRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.SyncRun, error) {
	var model models.SyncRunModel
	if err := r.db.WithContext(ctx).
		Preload("Batches", func(tx *gorm.DB) *gorm.DB { return tx.Order("seq ASC") }).
		Where("id = ?", id).
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListRecent returns the newest runs first, without batch detail
func (r *GormSyncRunRepository) ListRecent(ctx context.Context, limit int) ([]*integration.SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []models.SyncRunModel
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	runs := make([]*integration.SyncRun, len(rows))
	for i := range rows {
		runs[i] = rows[i].ToDomain()
	}
	return runs, nil
}

var _ integration.SyncRunRepository = (*GormSyncRunRepository)(nil)
