package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/erp/stocksync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormArticleMappingRepository implements integration.ArticleMappingRepository using GORM
type GormArticleMappingRepository struct {
	db *gorm.DB
}

// NewGormArticleMappingRepository creates a new GormArticleMappingRepository
func NewGormArticleMappingRepository(db *gorm.DB) *GormArticleMappingRepository {
	return &GormArticleMappingRepository{db: db}
}

// Save inserts or replaces the mapping of an article
func (r *GormArticleMappingRepository) Save(ctx context.Context, mapping *integration.ArticleMapping) error {
	model := models.ArticleMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "article_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"remote_product_id", "sku", "is_active", "updated_at"}),
	}).Create(model).Error
}

// FindBySKUs returns active mappings keyed by SKU
func (r *GormArticleMappingRepository) FindBySKUs(ctx context.Context, skus []string) (map[string]*integration.ArticleMapping, error) {
	result := make(map[string]*integration.ArticleMapping, len(skus))
	if len(skus) == 0 {
		return result, nil
	}
	var rows []models.ArticleMappingModel
	if err := r.db.WithContext(ctx).
		Where("sku IN ? AND is_active = ?", skus, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].SKU] = rows[i].ToDomain()
	}
	return result, nil
}

// FindByArticleIDs returns active mappings keyed by article id
func (r *GormArticleMappingRepository) FindByArticleIDs(ctx context.Context, articleIDs []string) (map[string]*integration.ArticleMapping, error) {
	result := make(map[string]*integration.ArticleMapping, len(articleIDs))
	if len(articleIDs) == 0 {
		return result, nil
	}
	var rows []models.ArticleMappingModel
	if err := r.db.WithContext(ctx).
		Where("article_id IN ? AND is_active = ?", articleIDs, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ArticleID] = rows[i].ToDomain()
	}
	return result, nil
}

var _ integration.ArticleMappingRepository = (*GormArticleMappingRepository)(nil)

// GormPartyRepository implements integration.PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByEmail matches the email case-insensitively
func (r *GormPartyRepository) FindByEmail(ctx context.Context, email string) (*integration.Party, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.PartyModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Order("id ASC").
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates a party
func (r *GormPartyRepository) Save(ctx context.Context, party *integration.Party) error {
	model := &models.PartyModel{ID: party.ID, Name: party.Name, Email: party.Email}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
	}).Create(model).Error
}

var _ integration.PartyRepository = (*GormPartyRepository)(nil)
