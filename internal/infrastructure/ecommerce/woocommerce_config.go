package ecommerce

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/erp/stocksync/internal/domain/integration"
)

// WooCommerceConfig holds the storefront REST API settings
type WooCommerceConfig struct {
	// BaseURL is the shop root, e.g. https://shop.example.com
	BaseURL string
	// ConsumerKey and ConsumerSecret are the REST API credentials (HTTP basic auth)
	ConsumerKey    string
	ConsumerSecret string
	// RequestsPerSecond and Burst bound the outbound call rate
	RequestsPerSecond float64
	Burst             int
	// Per-call timeouts
	ListTimeout   time.Duration
	StatusTimeout time.Duration
	BatchTimeout  time.Duration
	// ChunkSize is the largest product batch accepted by the shop
	ChunkSize int
	// MaxResponseSize bounds how much of a response body is read
	MaxResponseSize int64
}

// Errors for WooCommerce configuration
var (
	ErrWooConfigMissingBaseURL = errors.New("woocommerce: base url is required")
	ErrWooConfigInvalidBaseURL = errors.New("woocommerce: base url must be absolute http(s)")
	ErrWooConfigMissingKey     = errors.New("woocommerce: consumer key is required")
	ErrWooConfigMissingSecret  = errors.New("woocommerce: consumer secret is required")
)

// Validate checks required fields and fills defaults
func (c *WooCommerceConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrWooConfigMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrWooConfigInvalidBaseURL
	}
	if c.ConsumerKey == "" {
		return ErrWooConfigMissingKey
	}
	if c.ConsumerSecret == "" {
		return ErrWooConfigMissingSecret
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 4
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.ListTimeout <= 0 {
		c.ListTimeout = 20 * time.Second
	}
	if c.StatusTimeout <= 0 {
		c.StatusTimeout = 8 * time.Second
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 30 * time.Second
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = integration.DefaultChunkSize
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = 10 * 1024 * 1024
	}
	return nil
}
