// Package bootstrap assembles the ledger and storefront sync services from
// configuration. The HTTP server and the operator CLI share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	appintegration "github.com/erp/stocksync/internal/application/integration"
	appledger "github.com/erp/stocksync/internal/application/ledger"
	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/erp/stocksync/internal/infrastructure/cache"
	"github.com/erp/stocksync/internal/infrastructure/config"
	"github.com/erp/stocksync/internal/infrastructure/ecommerce"
	"github.com/erp/stocksync/internal/infrastructure/logger"
	"github.com/erp/stocksync/internal/infrastructure/persistence"
	"github.com/erp/stocksync/internal/infrastructure/storage"
	"github.com/erp/stocksync/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Services holds everything a process needs to read and write the ledger
// and synchronize it with the storefront.
type Services struct {
	Database *persistence.Database
	Ledger   *appledger.Service
	Push     *appintegration.StockPushService
	Pull     *appintegration.OrderPullService
	Runs     integration.SyncRunRepository

	closers []func() error
}

// Build connects to the database, the storefront, Redis and object storage
// and wires the services. meter may be nil. Close releases every connection.
func Build(ctx context.Context, cfg *config.Config, meter metric.Meter, log *zap.Logger) (*Services, error) {
	s := &Services{}

	gormLog := logger.NewGormLogger(log.Named("gorm"), logger.MapGormLogLevel(cfg.Log.Level), 0)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	s.Database = db
	s.closers = append(s.closers, db.Close)

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.DBTraceEnabled, log); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}

	documents := persistence.NewGormDocumentRepository(db.DB)
	stock := persistence.NewGormStockReader(db.DB)
	mappings := persistence.NewGormArticleMappingRepository(db.DB)
	parties := persistence.NewGormPartyRepository(db.DB)
	runs := persistence.NewGormSyncRunRepository(db.DB)
	s.Runs = runs

	s.Ledger = appledger.NewService(
		persistence.NewGormTransactionScope(db.DB),
		documents,
		stock,
		log.Named("ledger"),
	)

	platform, err := ecommerce.NewWooCommerceAdapter(StorefrontConfig(cfg.Storefront), log)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to configure storefront: %w", err)
	}

	archiver, err := storage.NewRunArchiver(ctx, &cfg.Storage, log.Named("archive"))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to configure run archive: %w", err)
	}

	var metrics *telemetry.SyncMetrics
	if meter != nil {
		metrics, err = telemetry.NewSyncMetrics(meter)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to create sync metrics: %w", err)
		}
	}

	// Every storefront call, push or pull, goes through the same policy.
	retry := shared.RetryPolicy{
		Attempts: cfg.Push.RetryAttempts,
		Backoff:  cfg.Push.RetryBackoff,
	}

	s.Push = appintegration.NewStockPushService(platform, stock, mappings, runs, appintegration.PushConfig{
		Retry:            retry,
		UpdateRemoteDate: cfg.Push.UpdateRemoteDate,
	}, log)
	s.Push.SetArchiver(archiver)
	s.Push.SetMetrics(metrics)

	locker, closeLocker := cache.NewRefLocker(ctx, cfg.Redis, log)
	s.closers = append(s.closers, closeLocker)

	s.Pull = appintegration.NewOrderPullService(platform, s.Ledger, documents, mappings, parties, runs, appintegration.PullConfig{
		PageSize:           cfg.Sync.PageSize,
		PendingStatus:      cfg.Sync.PendingStatus,
		WholesaleThreshold: cfg.Sync.WholesaleThreshold,
		WholesalePriceList: cfg.Sync.WholesalePriceList,
		RetailPriceList:    cfg.Sync.RetailPriceList,
		LockTTL:            cfg.Sync.LockTTL,
		CreatedBy:          cfg.Sync.CreatedBy,
		Retry:              retry,
	}, log)
	s.Pull.SetLocker(locker)
	s.Pull.SetArchiver(archiver)
	s.Pull.SetMetrics(metrics)

	return s, nil
}

// StorefrontConfig maps the storefront section onto the adapter settings
func StorefrontConfig(c config.StorefrontConfig) *ecommerce.WooCommerceConfig {
	return &ecommerce.WooCommerceConfig{
		BaseURL:           c.BaseURL,
		ConsumerKey:       c.ConsumerKey,
		ConsumerSecret:    c.ConsumerSecret,
		RequestsPerSecond: c.RequestsPerSec,
		Burst:             c.Burst,
		ListTimeout:       c.ListTimeout,
		StatusTimeout:     c.StatusTimeout,
		BatchTimeout:      c.BatchTimeout,
		ChunkSize:         c.ChunkSize,
		MaxResponseSize:   c.MaxResponseSize,
	}
}

// Close releases connections in reverse order of creation
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}
