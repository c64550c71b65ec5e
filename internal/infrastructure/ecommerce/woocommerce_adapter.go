package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/erp/stocksync/internal/domain/integration"
)

const (
	wooAPIPrefix = "/wp-json/wc/v3"
	// wooPlatformName identifies the shop in logs and sync run records
	wooPlatformName = "woocommerce"
	// percentCouponType is the discount_type of percentage coupons
	percentCouponType = "percent"
)

// WooCommerceAdapter implements integration.StockPlatform over the
// WooCommerce REST API v3. It never retries; callers decide.
type WooCommerceAdapter struct {
	config     *WooCommerceConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewWooCommerceAdapter creates a new adapter with the given configuration
func NewWooCommerceAdapter(config *WooCommerceConfig, logger *zap.Logger) (*WooCommerceAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WooCommerceAdapter{
		config:     config,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		logger:     logger.Named("woocommerce"),
	}, nil
}

// WithHTTPClient replaces the HTTP client, for instrumented transports
func (a *WooCommerceAdapter) WithHTTPClient(client *http.Client) *WooCommerceAdapter {
	a.httpClient = client
	return a
}

// Name returns the platform name
func (a *WooCommerceAdapter) Name() string {
	return wooPlatformName
}

// ChunkSize returns the largest batch BatchUpdateStock accepts
func (a *WooCommerceAdapter) ChunkSize() int {
	return a.config.ChunkSize
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// ListOrders returns one page of orders in the given status
func (a *WooCommerceAdapter) ListOrders(ctx context.Context, status string, page, perPage int) ([]integration.PlatformOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.ListTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("status", status)
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("orderby", "id")
	query.Set("order", "asc")

	body, err := a.doRequest(ctx, http.MethodGet, "/orders?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var orders []wooOrder
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("%w: failed to parse orders: %v", integration.ErrPlatformInvalidResponse, err)
	}

	result := make([]integration.PlatformOrder, 0, len(orders))
	for i := range orders {
		result = append(result, convertWooOrder(&orders[i]))
	}
	return result, nil
}

// UpdateOrderStatus sets the storefront status of one order
func (a *WooCommerceAdapter) UpdateOrderStatus(ctx context.Context, remoteOrderID, status string) error {
	if _, err := strconv.ParseInt(remoteOrderID, 10, 64); err != nil {
		return fmt.Errorf("%w: order id %q is not numeric", integration.ErrPlatformRequestFailed, remoteOrderID)
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.StatusTimeout)
	defer cancel()

	_, err := a.doRequest(ctx, http.MethodPut, "/orders/"+remoteOrderID, wooStatusUpdate{Status: status})
	return err
}

// ---------------------------------------------------------------------------
// Stock
// ---------------------------------------------------------------------------

// BatchUpdateStock writes stock quantities for at most ChunkSize products.
// Ids the shop cannot address and items the shop rejects are returned as
// failures; only transport and protocol problems are errors.
func (a *WooCommerceAdapter) BatchUpdateStock(ctx context.Context, updates []integration.StockUpdate) (*integration.BatchResult, error) {
	if len(updates) == 0 {
		return nil, integration.ErrBatchEmpty
	}
	if len(updates) > a.config.ChunkSize {
		return nil, fmt.Errorf("%w: %d > %d", integration.ErrBatchTooLarge, len(updates), a.config.ChunkSize)
	}

	result := &integration.BatchResult{
		Updated: make([]string, 0, len(updates)),
		Failed:  make([]integration.SyncFailure, 0),
	}
	req := wooBatchRequest{Update: make([]wooStockItem, 0, len(updates))}
	for _, u := range updates {
		id, err := strconv.ParseInt(u.RemoteProductID, 10, 64)
		if err != nil {
			result.Failed = append(result.Failed, integration.SyncFailure{
				ItemID:       u.RemoteProductID,
				ErrorCode:    "invalid_product_id",
				ErrorMessage: "product id is not numeric",
			})
			continue
		}
		item := wooStockItem{
			ID:            id,
			StockQuantity: u.Quantity.IntPart(),
			ManageStock:   true,
		}
		if u.DateCreated != nil {
			item.DateCreated = u.DateCreated.UTC().Format(wooTimeLayout)
		}
		req.Update = append(req.Update, item)
	}
	if len(req.Update) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.BatchTimeout)
	defer cancel()

	body, err := a.doRequest(ctx, http.MethodPost, "/products/batch", req)
	if err != nil {
		return nil, err
	}

	var resp wooBatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse batch response: %v", integration.ErrPlatformInvalidResponse, err)
	}

	pending := make(map[int64]bool, len(req.Update))
	for _, item := range req.Update {
		pending[item.ID] = true
	}
	answered := make(map[int64]bool, len(resp.Update))
	for _, item := range resp.Update {
		itemID := strconv.FormatInt(item.ID, 10)
		// Only the first answer for an id we sent counts
		if !pending[item.ID] {
			a.logger.Warn("Ignoring batch answer for unsent product", zap.String("product_id", itemID))
			continue
		}
		delete(pending, item.ID)
		answered[item.ID] = true
		if item.Error != nil {
			result.Failed = append(result.Failed, integration.SyncFailure{
				ItemID:       itemID,
				ErrorCode:    item.Error.Code,
				ErrorMessage: item.Error.Message,
			})
			continue
		}
		result.Updated = append(result.Updated, itemID)
	}
	// Items the shop silently dropped are not confirmed updates
	for _, item := range req.Update {
		if !answered[item.ID] {
			result.Failed = append(result.Failed, integration.SyncFailure{
				ItemID:       strconv.FormatInt(item.ID, 10),
				ErrorCode:    "missing_in_response",
				ErrorMessage: "shop did not report this item",
			})
		}
	}

	a.logger.Debug("Batch stock update",
		zap.Int("sent", len(req.Update)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// ---------------------------------------------------------------------------
// HTTP
// ---------------------------------------------------------------------------

func (a *WooCommerceAdapter) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("woocommerce: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+wooAPIPrefix+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to create request: %w", err)
	}
	req.SetBasicAuth(a.config.ConsumerKey, a.config.ConsumerSecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.config.MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", integration.ErrPlatformUnavailable, err)
	}

	a.logger.Debug("Storefront call",
		zap.String("method", method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// statusError maps an HTTP failure onto the platform error it represents
func statusError(status int, body []byte) error {
	detail := fmt.Sprintf("HTTP %d", status)
	var werr wooError
	if json.Unmarshal(body, &werr) == nil && werr.Code != "" {
		detail = fmt.Sprintf("HTTP %d %s: %s", status, werr.Code, werr.Message)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", integration.ErrPlatformAuthFailed, detail)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", integration.ErrPlatformRateLimited, detail)
	case status >= 500:
		return fmt.Errorf("%w: %s", integration.ErrPlatformUnavailable, detail)
	default:
		return fmt.Errorf("%w: %s", integration.ErrPlatformRequestFailed, detail)
	}
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func convertWooOrder(o *wooOrder) integration.PlatformOrder {
	order := integration.PlatformOrder{
		RemoteID:          strconv.FormatInt(o.ID, 10),
		Status:            o.Status,
		CustomerEmail:     strings.TrimSpace(o.Billing.Email),
		Total:             o.Total,
		CouponDiscountPct: decimal.Zero,
		CouponCodes:       make([]string, 0, len(o.CouponLines)),
		Note:              o.CustomerNote,
		Items:             make([]integration.PlatformOrderItem, 0, len(o.LineItems)),
		CreatedAt:         parseWooTime(o.DateCreatedGMT),
	}

	for _, c := range o.CouponLines {
		order.CouponCodes = append(order.CouponCodes, c.Code)
		if c.DiscountType == percentCouponType {
			order.CouponDiscountPct = order.CouponDiscountPct.Add(c.NominalAmount)
		}
	}
	if order.CouponDiscountPct.GreaterThan(decimal.NewFromInt(100)) {
		order.CouponDiscountPct = decimal.NewFromInt(100)
	}

	for _, li := range o.LineItems {
		order.Items = append(order.Items, integration.PlatformOrderItem{
			RemoteProductID: strconv.FormatInt(li.ProductID, 10),
			SKU:             strings.TrimSpace(li.SKU),
			Name:            li.Name,
			Quantity:        li.Quantity,
			UnitPrice:       li.unitPrice(),
		})
	}
	return order
}

var _ integration.StockPlatform = (*WooCommerceAdapter)(nil)
