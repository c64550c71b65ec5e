package models

import (
	"encoding/json"
	"time"

	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/google/uuid"
)

// SyncRunModel is the persistence model for a sync run record.
// Messages are stored as a JSON array in a text column.
type SyncRunModel struct {
	ID             uuid.UUID              `gorm:"type:uuid;primary_key"`
	Kind           integration.SyncKind   `gorm:"type:varchar(20);not null;index:idx_sync_runs_kind"`
	Platform       string                 `gorm:"type:varchar(50);not null"`
	DocumentNumber string                 `gorm:"type:varchar(32);index:idx_sync_runs_document"`
	RemoteRef      string                 `gorm:"type:varchar(100)"`
	TotalCount     int                    `gorm:"not null;default:0"`
	SuccessCount   int                    `gorm:"not null;default:0"`
	SkippedCount   int                    `gorm:"not null;default:0"`
	ErrorCount     int                    `gorm:"not null;default:0"`
	Status         integration.SyncStatus `gorm:"type:varchar(20);not null"`
	MessagesJSON   string                 `gorm:"type:text;column:messages"`
	StartedAt      time.Time              `gorm:"not null;index:idx_sync_runs_started"`
	FinishedAt     time.Time              `gorm:"not null"`
	DurationMs     int64                  `gorm:"not null;default:0"`
	Batches        []SyncBatchModel       `gorm:"foreignKey:RunID;references:ID"`
}

// TableName returns the table name for GORM
func (SyncRunModel) TableName() string {
	return "sync_runs"
}

// SyncBatchModel stores the detail of one chunk of a push run
type SyncBatchModel struct {
	ID           uint      `gorm:"primaryKey"`
	RunID        uuid.UUID `gorm:"type:uuid;not null;index:idx_sync_batches_run"`
	Seq          int       `gorm:"not null"`
	ItemsJSON    string    `gorm:"type:text;column:items"`
	UpdatedJSON  string    `gorm:"type:text;column:updated_ids"`
	FailuresJSON string    `gorm:"type:text;column:failures"`
	SuccessCount int       `gorm:"not null;default:0"`
	ErrorCount   int       `gorm:"not null;default:0"`
	Attempts     int       `gorm:"not null;default:0"`
	Error        string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SyncBatchModel) TableName() string {
	return "sync_batches"
}

// SyncRunModelFromDomain converts a run with its batches
func SyncRunModelFromDomain(run *integration.SyncRun) (*SyncRunModel, error) {
	messages, err := json.Marshal(run.Messages)
	if err != nil {
		return nil, err
	}
	m := &SyncRunModel{
		ID:             run.ID,
		Kind:           run.Kind,
		Platform:       run.Platform,
		DocumentNumber: run.DocumentNumber,
		RemoteRef:      run.RemoteRef,
		TotalCount:     run.TotalCount,
		SuccessCount:   run.SuccessCount,
		SkippedCount:   run.SkippedCount,
		ErrorCount:     run.ErrorCount,
		Status:         run.Status,
		MessagesJSON:   string(messages),
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
		DurationMs:     run.Duration.Milliseconds(),
		Batches:        make([]SyncBatchModel, 0, len(run.Batches)),
	}
	for _, b := range run.Batches {
		bm, err := syncBatchModelFromDomain(run.ID, b)
		if err != nil {
			return nil, err
		}
		m.Batches = append(m.Batches, *bm)
	}
	return m, nil
}

func syncBatchModelFromDomain(runID uuid.UUID, b integration.SyncBatch) (*SyncBatchModel, error) {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return nil, err
	}
	updated, err := json.Marshal(b.Updated)
	if err != nil {
		return nil, err
	}
	failures, err := json.Marshal(b.Failures)
	if err != nil {
		return nil, err
	}
	return &SyncBatchModel{
		RunID:        runID,
		Seq:          b.Seq,
		ItemsJSON:    string(items),
		UpdatedJSON:  string(updated),
		FailuresJSON: string(failures),
		SuccessCount: b.SuccessCount(),
		ErrorCount:   b.ErrorCount(),
		Attempts:     b.Attempts,
		Error:        b.Error,
	}, nil
}

// ToDomain converts the run and any loaded batches.
// Malformed JSON columns decode to empty collections.
func (m *SyncRunModel) ToDomain() *integration.SyncRun {
	run := &integration.SyncRun{
		ID:             m.ID,
		Kind:           m.Kind,
		Platform:       m.Platform,
		DocumentNumber: m.DocumentNumber,
		RemoteRef:      m.RemoteRef,
		TotalCount:     m.TotalCount,
		SuccessCount:   m.SuccessCount,
		SkippedCount:   m.SkippedCount,
		ErrorCount:     m.ErrorCount,
		Status:         m.Status,
		Messages:       make([]string, 0),
		Batches:        make([]integration.SyncBatch, 0, len(m.Batches)),
		StartedAt:      m.StartedAt,
		FinishedAt:     m.FinishedAt,
		Duration:       time.Duration(m.DurationMs) * time.Millisecond,
	}
	if m.MessagesJSON != "" {
		_ = json.Unmarshal([]byte(m.MessagesJSON), &run.Messages)
	}
	for _, bm := range m.Batches {
		b := integration.SyncBatch{Seq: bm.Seq, Attempts: bm.Attempts, Error: bm.Error}
		_ = json.Unmarshal([]byte(bm.ItemsJSON), &b.Items)
		_ = json.Unmarshal([]byte(bm.UpdatedJSON), &b.Updated)
		_ = json.Unmarshal([]byte(bm.FailuresJSON), &b.Failures)
		run.Batches = append(run.Batches, b)
	}
	return run
}

// ArticleMappingModel links a local article to a storefront product
type ArticleMappingModel struct {
	ArticleID       string    `gorm:"type:varchar(64);primaryKey"`
	RemoteProductID string    `gorm:"type:varchar(100);not null;index:idx_article_mappings_remote"`
	SKU             string    `gorm:"type:varchar(100);index:idx_article_mappings_sku"`
	IsActive        bool      `gorm:"not null;default:true"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ArticleMappingModel) TableName() string {
	return "article_mappings"
}

// ToDomain converts the persistence model to a domain ArticleMapping
func (m *ArticleMappingModel) ToDomain() *integration.ArticleMapping {
	return &integration.ArticleMapping{
		ArticleID:       m.ArticleID,
		RemoteProductID: m.RemoteProductID,
		SKU:             m.SKU,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ArticleMappingModelFromDomain creates a persistence model from a mapping
func ArticleMappingModelFromDomain(am *integration.ArticleMapping) *ArticleMappingModel {
	return &ArticleMappingModel{
		ArticleID:       am.ArticleID,
		RemoteProductID: am.RemoteProductID,
		SKU:             am.SKU,
		IsActive:        am.IsActive,
		CreatedAt:       am.CreatedAt,
		UpdatedAt:       am.UpdatedAt,
	}
}

// PartyModel is the counterparty read model
type PartyModel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(200);index:idx_parties_email"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the persistence model to a domain Party
func (m *PartyModel) ToDomain() *integration.Party {
	return &integration.Party{ID: m.ID, Name: m.Name, Email: m.Email}
}
