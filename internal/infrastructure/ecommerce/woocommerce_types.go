package ecommerce

import (
	"time"

	"github.com/shopspring/decimal"
)

// wooTimeLayout is the format of date fields in the WooCommerce REST API
const wooTimeLayout = "2006-01-02T15:04:05"

// wooOrder is the subset of the v3 order resource read by the sync
type wooOrder struct {
	ID             int64           `json:"id"`
	Status         string          `json:"status"`
	Total          decimal.Decimal `json:"total"`
	CustomerNote   string          `json:"customer_note"`
	DateCreatedGMT string          `json:"date_created_gmt"`
	Billing        wooBilling      `json:"billing"`
	LineItems      []wooLineItem   `json:"line_items"`
	CouponLines    []wooCouponLine `json:"coupon_lines"`
}

type wooBilling struct {
	Email string `json:"email"`
}

type wooLineItem struct {
	ProductID int64           `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	// Price is after coupons; Subtotal is the pre-discount line amount
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// unitPrice is the pre-coupon price per unit
func (li wooLineItem) unitPrice() decimal.Decimal {
	if li.Quantity.IsPositive() && !li.Subtotal.IsZero() {
		return li.Subtotal.Div(li.Quantity).Round(4)
	}
	return li.Price
}

// wooCouponLine carries discount_type and nominal_amount on WooCommerce 8.3+
type wooCouponLine struct {
	Code          string          `json:"code"`
	DiscountType  string          `json:"discount_type"`
	NominalAmount decimal.Decimal `json:"nominal_amount"`
}

type wooStatusUpdate struct {
	Status string `json:"status"`
}

type wooBatchRequest struct {
	Update []wooStockItem `json:"update"`
}

type wooStockItem struct {
	ID            int64  `json:"id"`
	StockQuantity int64  `json:"stock_quantity"`
	ManageStock   bool   `json:"manage_stock"`
	DateCreated   string `json:"date_created,omitempty"`
}

type wooBatchResponse struct {
	Update []wooBatchItemResult `json:"update"`
}

type wooBatchItemResult struct {
	ID    int64     `json:"id"`
	Error *wooError `json:"error,omitempty"`
}

// wooError is the error body returned for failed calls and failed batch items
type wooError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func parseWooTime(s string) time.Time {
	t, err := time.ParseInLocation(wooTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
