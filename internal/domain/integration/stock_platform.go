package integration

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// StockPlatform Errors
// ---------------------------------------------------------------------------

var (
	// Platform errors
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")

	// Batch errors
	ErrBatchTooLarge = errors.New("integration: batch exceeds chunk size")
	ErrBatchEmpty    = errors.New("integration: batch is empty")

	// Mapping errors
	ErrMappingInvalidArticleID = errors.New("integration: invalid article ID")
	ErrMappingInvalidRemoteID  = errors.New("integration: invalid remote product ID")
	ErrMappingNotFound         = errors.New("integration: article mapping not found")
)

// Storefront order statuses used by the sync services
const (
	RemoteStatusPending   = "pending"
	RemoteStatusCompleted = "completed"
)

// DefaultChunkSize is the largest batch the storefront accepts in one call.
const DefaultChunkSize = 25

// ---------------------------------------------------------------------------
// SyncStatus represents the synchronization status
// ---------------------------------------------------------------------------

// SyncStatus represents the outcome of a sync run
type SyncStatus string

const (
	// SyncStatusSuccess indicates every item was applied
	SyncStatusSuccess SyncStatus = "SUCCESS"
	// SyncStatusPartial indicates at least one item failed
	SyncStatusPartial SyncStatus = "PARTIAL_SUCCESS"
	// SyncStatusError indicates the run stopped on a fatal error
	SyncStatusError SyncStatus = "ERROR"
)

// IsValid returns true if the status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusSuccess, SyncStatusPartial, SyncStatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// PlatformOrder represents an order read from the storefront
type PlatformOrder struct {
	// RemoteID is the storefront order id, not yet normalized
	RemoteID string
	// Status is the storefront status string
	Status string
	// CustomerEmail identifies the buyer
	CustomerEmail string
	// Total is what the buyer pays
	Total decimal.Decimal
	// CouponDiscountPct is the percentage taken from percent coupons, 0 when none
	CouponDiscountPct decimal.Decimal
	// CouponCodes lists the coupons applied to the order
	CouponCodes []string
	// Note is the customer note
	Note string
	// Items contains the order line items
	Items []PlatformOrderItem
	// CreatedAt is when the order was created on the storefront
	CreatedAt time.Time
}

// PlatformOrderItem represents a line item in a storefront order
type PlatformOrderItem struct {
	// RemoteProductID is the product id on the storefront
	RemoteProductID string
	// SKU is the stock keeping unit used to map to a local article
	SKU string
	// Name is the product name
	Name string
	// Quantity is the ordered quantity
	Quantity decimal.Decimal
	// UnitPrice is the price per unit before coupons
	UnitPrice decimal.Decimal
}

// StockUpdate is one product stock record sent to the storefront
type StockUpdate struct {
	RemoteProductID string          `json:"remote_product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	// DateCreated overrides the product creation date when set
	DateCreated *time.Time `json:"date_created,omitempty"`
}

// SyncFailure represents a failed sync item
type SyncFailure struct {
	// ItemID is the identifier of the failed item
	ItemID string `json:"item_id"`
	// ErrorCode is the platform error code
	ErrorCode string `json:"error_code"`
	// ErrorMessage is the error description
	ErrorMessage string `json:"error_message"`
}

// BatchResult is the storefront's verdict on one batch update call
type BatchResult struct {
	Updated []string
	Failed  []SyncFailure
}

// ---------------------------------------------------------------------------
// StockPlatform Port Interface
// ---------------------------------------------------------------------------

// StockPlatform defines the port for the remote storefront.
// Implementations apply a bounded timeout to every call and never retry;
// retry decisions belong to callers so they can log them.
type StockPlatform interface {
	// Name identifies the storefront in logs and run records
	Name() string

	// ListOrders returns one page of orders in the given storefront status.
	ListOrders(ctx context.Context, status string, page, perPage int) ([]PlatformOrder, error)

	// UpdateOrderStatus sets the storefront status of one order.
	UpdateOrderStatus(ctx context.Context, remoteOrderID, status string) error

	// BatchUpdateStock writes stock quantities for at most ChunkSize products.
	// Item-level rejections are reported in the result, not as an error.
	BatchUpdateStock(ctx context.Context, updates []StockUpdate) (*BatchResult, error)

	// ChunkSize is the largest batch BatchUpdateStock accepts.
	ChunkSize() int
}
