package integration

import (
	"time"

	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PullConfig tunes the inbound order sync
type PullConfig struct {
	PageSize           int
	PendingStatus      string
	WholesaleThreshold decimal.Decimal
	WholesalePriceList string
	RetailPriceList    string
	LockTTL            time.Duration
	CreatedBy          string
	// Retry applies to each storefront listing call
	Retry shared.RetryPolicy
}

func (c PullConfig) withDefaults() PullConfig {
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
	if c.PendingStatus == "" {
		c.PendingStatus = integration.RemoteStatusPending
	}
	if c.WholesalePriceList == "" {
		c.WholesalePriceList = "wholesale"
	}
	if c.RetailPriceList == "" {
		c.RetailPriceList = "retail"
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 30 * time.Second
	}
	if c.CreatedBy == "" {
		c.CreatedBy = "storefront-sync"
	}
	if c.Retry.Attempts <= 0 {
		c.Retry = shared.DefaultRetryPolicy
	}
	return c
}

// priceList picks the list an order is booked against from its total
func (c PullConfig) priceList(total decimal.Decimal) string {
	if c.WholesaleThreshold.IsPositive() && total.GreaterThanOrEqual(c.WholesaleThreshold) {
		return c.WholesalePriceList
	}
	return c.RetailPriceList
}

// PushConfig tunes the outbound stock push
type PushConfig struct {
	Retry shared.RetryPolicy
	// UpdateRemoteDate sends the document date with post-commit pushes
	UpdateRemoteDate bool
}

// PushRequest asks for the stock of Articles to be mirrored to the storefront.
// When RemoteOrderRef is set the storefront order is marked completed first.
type PushRequest struct {
	RemoteOrderRef   *ledger.RemoteRef
	Articles         []string
	DocumentDate     *time.Time
	DocumentNumber   string
	UpdateRemoteDate bool
}

// PushResult summarizes one push run
type PushResult struct {
	RunID    uuid.UUID               `json:"run_id"`
	Status   integration.SyncStatus  `json:"status"`
	Total    int                     `json:"total"`
	Updated  int                     `json:"updated"`
	Skipped  int                     `json:"skipped"`
	Failed   int                     `json:"failed"`
	Messages []string                `json:"messages"`
	Batches  []integration.SyncBatch `json:"batches"`
	Duration time.Duration           `json:"duration"`
}

func newPushResult(run *integration.SyncRun) *PushResult {
	return &PushResult{
		RunID:    run.ID,
		Status:   run.Status,
		Total:    run.TotalCount,
		Updated:  run.SuccessCount,
		Skipped:  run.SkippedCount,
		Failed:   run.ErrorCount,
		Messages: run.Messages,
		Batches:  run.Batches,
		Duration: run.Duration,
	}
}

// PullResult summarizes one pull run
type PullResult struct {
	RunID    uuid.UUID              `json:"run_id"`
	Status   integration.SyncStatus `json:"status"`
	Seen     int                    `json:"seen"`
	Written  int                    `json:"written"`
	Skipped  int                    `json:"skipped"`
	Failed   int                    `json:"failed"`
	Messages []string               `json:"messages"`
}

func newPullResult(run *integration.SyncRun) *PullResult {
	return &PullResult{
		RunID:    run.ID,
		Status:   run.Status,
		Seen:     run.TotalCount,
		Written:  run.SuccessCount,
		Skipped:  run.SkippedCount,
		Failed:   run.ErrorCount,
		Messages: run.Messages,
	}
}
