package ecommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/erp/stocksync/internal/domain/integration"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *WooCommerceAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewWooCommerceAdapter(&WooCommerceConfig{
		BaseURL:           server.URL,
		ConsumerKey:       "ck_test",
		ConsumerSecret:    "cs_test",
		RequestsPerSecond: 1000,
		Burst:             100,
		StatusTimeout:     time.Second,
		BatchTimeout:      time.Second,
		ListTimeout:       time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return adapter
}

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestWooCommerceConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *WooCommerceConfig
		wantErr error
	}{
		{"valid", &WooCommerceConfig{BaseURL: "https://shop.test/", ConsumerKey: "ck", ConsumerSecret: "cs"}, nil},
		{"missing url", &WooCommerceConfig{ConsumerKey: "ck", ConsumerSecret: "cs"}, ErrWooConfigMissingBaseURL},
		{"relative url", &WooCommerceConfig{BaseURL: "shop.test", ConsumerKey: "ck", ConsumerSecret: "cs"}, ErrWooConfigInvalidBaseURL},
		{"missing key", &WooCommerceConfig{BaseURL: "https://shop.test", ConsumerSecret: "cs"}, ErrWooConfigMissingKey},
		{"missing secret", &WooCommerceConfig{BaseURL: "https://shop.test", ConsumerKey: "ck"}, ErrWooConfigMissingSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://shop.test", tt.config.BaseURL)
			assert.Equal(t, integration.DefaultChunkSize, tt.config.ChunkSize)
			assert.Equal(t, 8*time.Second, tt.config.StatusTimeout)
			assert.Equal(t, 30*time.Second, tt.config.BatchTimeout)
		})
	}
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

func TestWooCommerceAdapter_ListOrders(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/orders", r.URL.Path)
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)

		_, _ = w.Write([]byte(`[{
			"id": 1042,
			"status": "pending",
			"total": "1620.00",
			"customer_note": "leave at door",
			"date_created_gmt": "2026-03-01T10:15:00",
			"billing": {"email": " Ana@Example.com "},
			"line_items": [
				{"product_id": 551, "sku": "SKU-1", "name": "Chair", "quantity": 2, "price": 810, "subtotal": "1800.00"}
			],
			"coupon_lines": [
				{"code": "spring10", "discount_type": "percent", "nominal_amount": 10},
				{"code": "ship5", "discount_type": "fixed_cart", "nominal_amount": 5}
			]
		}]`))
	})

	orders, err := adapter.ListOrders(context.Background(), "pending", 2, 100)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "1042", o.RemoteID)
	assert.Equal(t, "Ana@Example.com", o.CustomerEmail)
	assert.True(t, decimal.NewFromInt(1620).Equal(o.Total))
	assert.True(t, decimal.NewFromInt(10).Equal(o.CouponDiscountPct))
	assert.Equal(t, []string{"spring10", "ship5"}, o.CouponCodes)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC), o.CreatedAt)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "SKU-1", o.Items[0].SKU)
	assert.True(t, decimal.NewFromInt(900).Equal(o.Items[0].UnitPrice), "unit price is pre-coupon")
}

func TestWooCommerceAdapter_ListOrdersInvalidJSON(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	})
	_, err := adapter.ListOrders(context.Background(), "pending", 1, 100)
	assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
}

func TestWooCommerceAdapter_UpdateOrderStatus(t *testing.T) {
	var got wooStatusUpdate
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/orders/1042", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id": 1042, "status": "completed"}`))
	})

	require.NoError(t, adapter.UpdateOrderStatus(context.Background(), "1042", integration.RemoteStatusCompleted))
	assert.Equal(t, "completed", got.Status)

	err := adapter.UpdateOrderStatus(context.Background(), "abc", "completed")
	assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
}

func TestWooCommerceAdapter_StatusErrors(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusUnauthorized, integration.ErrPlatformAuthFailed},
		{http.StatusTooManyRequests, integration.ErrPlatformRateLimited},
		{http.StatusBadGateway, integration.ErrPlatformUnavailable},
		{http.StatusBadRequest, integration.ErrPlatformRequestFailed},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"code": "woocommerce_rest_error", "message": "nope"}`))
			})
			err := adapter.UpdateOrderStatus(context.Background(), "1", "completed")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "woocommerce_rest_error")
		})
	}
}

func TestWooCommerceAdapter_Timeout(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	adapter.config.StatusTimeout = 50 * time.Millisecond

	err := adapter.UpdateOrderStatus(context.Background(), "1", "completed")
	assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
}

// ---------------------------------------------------------------------------
// Stock
// ---------------------------------------------------------------------------

func TestWooCommerceAdapter_BatchUpdateStock(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var got wooBatchRequest
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products/batch", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"update": [
			{"id": 551, "stock_quantity": 4},
			{"id": 552, "error": {"code": "woocommerce_rest_product_invalid_id", "message": "Invalid ID."}}
		]}`))
	})

	result, err := adapter.BatchUpdateStock(context.Background(), []integration.StockUpdate{
		{RemoteProductID: "551", Quantity: decimal.NewFromInt(4), DateCreated: &created},
		{RemoteProductID: "552", Quantity: decimal.NewFromInt(0)},
		{RemoteProductID: "553", Quantity: decimal.NewFromInt(7)},
		{RemoteProductID: "x-1", Quantity: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)

	require.Len(t, got.Update, 3)
	assert.Equal(t, int64(551), got.Update[0].ID)
	assert.Equal(t, int64(4), got.Update[0].StockQuantity)
	assert.True(t, got.Update[0].ManageStock)
	assert.Equal(t, "2026-03-01T00:00:00", got.Update[0].DateCreated)
	assert.Empty(t, got.Update[1].DateCreated)

	assert.Equal(t, []string{"551"}, result.Updated)
	codes := map[string]string{}
	for _, f := range result.Failed {
		codes[f.ItemID] = f.ErrorCode
	}
	assert.Equal(t, map[string]string{
		"x-1": "invalid_product_id",
		"552": "woocommerce_rest_product_invalid_id",
		"553": "missing_in_response",
	}, codes)
}

func TestWooCommerceAdapter_BatchIgnoresUnsentAnswers(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"update": [
			{"id": 551, "stock_quantity": 4},
			{"id": 999, "stock_quantity": 1},
			{"id": 551, "error": {"code": "woocommerce_rest_product_invalid_id", "message": "Invalid ID."}}
		]}`))
	})

	result, err := adapter.BatchUpdateStock(context.Background(), []integration.StockUpdate{
		{RemoteProductID: "551", Quantity: decimal.NewFromInt(4)},
		{RemoteProductID: "552", Quantity: decimal.NewFromInt(2)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"551"}, result.Updated)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "552", result.Failed[0].ItemID)
	assert.Equal(t, "missing_in_response", result.Failed[0].ErrorCode)
	assert.Equal(t, 2, len(result.Updated)+len(result.Failed))
}

func TestWooCommerceAdapter_BatchLimits(t *testing.T) {
	var calls atomic.Int32
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := adapter.BatchUpdateStock(context.Background(), nil)
	assert.ErrorIs(t, err, integration.ErrBatchEmpty)

	tooMany := make([]integration.StockUpdate, adapter.ChunkSize()+1)
	for i := range tooMany {
		tooMany[i] = integration.StockUpdate{RemoteProductID: strconv.Itoa(i + 1), Quantity: decimal.NewFromInt(1)}
	}
	_, err = adapter.BatchUpdateStock(context.Background(), tooMany)
	assert.ErrorIs(t, err, integration.ErrBatchTooLarge)
	assert.Zero(t, calls.Load())
}

func TestWooCommerceAdapter_RateLimiterHonoursContext(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	adapter.limiter = rate.NewLimiter(rate.Limit(0.001), 1)

	_, err := adapter.ListOrders(context.Background(), "pending", 1, 10)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = adapter.ListOrders(ctx, "pending", 1, 10)
	assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
}
