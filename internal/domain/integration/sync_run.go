package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncKind distinguishes the two directions of synchronization
type SyncKind string

const (
	SyncKindStockPush SyncKind = "STOCK_PUSH"
	SyncKindOrderPull SyncKind = "ORDER_PULL"
)

// SyncBatch is the audit detail of one chunk sent to the storefront
type SyncBatch struct {
	Seq      int           `json:"seq"`
	Items    []StockUpdate `json:"items"`
	Updated  []string      `json:"updated"`
	Failures []SyncFailure `json:"failures"`
	Attempts int           `json:"attempts"`
	// Error holds the last transport error when every attempt failed
	Error string `json:"error,omitempty"`
}

// Failure codes recorded for items that never got a storefront answer
const (
	FailureUndelivered  = "undelivered"
	FailureNotAttempted = "not_attempted"
)

// UnsentBatch records items a run stopped before sending. Each item becomes
// a failure so the run totals still account for it.
func UnsentBatch(seq int, items []StockUpdate, cause error) SyncBatch {
	b := SyncBatch{
		Seq:      seq,
		Items:    items,
		Updated:  make([]string, 0),
		Failures: make([]SyncFailure, 0, len(items)),
		Error:    cause.Error(),
	}
	for _, u := range items {
		b.Failures = append(b.Failures, SyncFailure{
			ItemID:       u.RemoteProductID,
			ErrorCode:    FailureNotAttempted,
			ErrorMessage: cause.Error(),
		})
	}
	return b
}

// SuccessCount is the number of items the storefront accepted
func (b SyncBatch) SuccessCount() int {
	return len(b.Updated)
}

// ErrorCount is the number of items that were rejected or never delivered
func (b SyncBatch) ErrorCount() int {
	return len(b.Failures)
}

// SyncRun records one execution of a push or pull. It is written once,
// after the run finishes, and never read by the reconciliation logic.
type SyncRun struct {
	ID             uuid.UUID
	Kind           SyncKind
	Platform       string
	DocumentNumber string
	RemoteRef      string
	TotalCount     int
	SuccessCount   int
	SkippedCount   int
	ErrorCount     int
	Status         SyncStatus
	Messages       []string
	Batches        []SyncBatch
	StartedAt      time.Time
	FinishedAt     time.Time
	Duration       time.Duration
}

// NewSyncRun starts a run record
func NewSyncRun(kind SyncKind, platform string, startedAt time.Time) *SyncRun {
	return &SyncRun{
		ID:        uuid.New(),
		Kind:      kind,
		Platform:  platform,
		StartedAt: startedAt,
		Messages:  make([]string, 0),
		Batches:   make([]SyncBatch, 0),
	}
}

// Logf appends a human-readable progress message
func (r *SyncRun) Logf(format string, args ...any) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

// AddBatch records a chunk and folds its counts into the run totals
func (r *SyncRun) AddBatch(b SyncBatch) {
	r.Batches = append(r.Batches, b)
	r.SuccessCount += b.SuccessCount()
	r.ErrorCount += b.ErrorCount()
}

// Finish stamps the end time and derives the status. Any fatal error yields
// ERROR, even after some batches were delivered; otherwise the status is
// SUCCESS only when no item failed.
func (r *SyncRun) Finish(finishedAt time.Time, fatal error) {
	r.FinishedAt = finishedAt
	r.Duration = finishedAt.Sub(r.StartedAt)
	switch {
	case fatal != nil && len(r.Batches) == 0:
		r.Status = SyncStatusError
		r.Logf("run aborted: %v", fatal)
	case fatal != nil:
		r.Status = SyncStatusError
		r.Logf("run interrupted after %d batches: %v", len(r.Batches), fatal)
	case r.ErrorCount > 0:
		r.Status = SyncStatusPartial
	default:
		r.Status = SyncStatusSuccess
	}
}

// SyncRunRepository persists run records
type SyncRunRepository interface {
	Save(ctx context.Context, run *SyncRun) error
	FindByID(ctx context.Context, id uuid.UUID) (*SyncRun, error)
	ListRecent(ctx context.Context, limit int) ([]*SyncRun, error)
}

// RunArchiver stores a finished run outside the database. Archiving is best effort.
type RunArchiver interface {
	Archive(ctx context.Context, run *SyncRun) error
}
