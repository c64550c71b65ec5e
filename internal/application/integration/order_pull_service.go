package integration

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	appledger "github.com/erp/stocksync/internal/application/ledger"
	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/erp/stocksync/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Reasons an order is left untouched by a pull, used as a metric attribute
const (
	skipInvalidRef      = "invalid_ref"
	skipLocked          = "locked"
	skipUnknownCustomer = "unknown_customer"
	skipUnmappedSKU     = "unmapped_sku"
	skipFulfilled       = "fulfilled"
	skipDuplicateRef    = "duplicate_ref"
	skipRejected        = "rejected"
)

// pullLockPrefix namespaces the per-order lock key
const pullLockPrefix = "order-pull:"

// DocumentWriter is the part of the ledger service the pull writes through
type DocumentWriter interface {
	CreateDocument(ctx context.Context, in appledger.CreateDocumentInput) (*appledger.DocumentRef, error)
	UpdateDocument(ctx context.Context, number string, in appledger.UpdateDocumentInput) (*appledger.DocumentRef, error)
}

// OrderPullService copies pending storefront orders into the ledger.
// Re-running it against the same orders converges to one document per
// remote reference.
type OrderPullService struct {
	platform  integration.StockPlatform
	writer    DocumentWriter
	documents ledger.DocumentRepository
	mappings  integration.ArticleMappingRepository
	parties   integration.PartyRepository
	runs      integration.SyncRunRepository
	locker    integration.RefLocker
	archiver  integration.RunArchiver
	metrics   *telemetry.SyncMetrics
	config    PullConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderPullService creates a new OrderPullService
func NewOrderPullService(
	platform integration.StockPlatform,
	writer DocumentWriter,
	documents ledger.DocumentRepository,
	mappings integration.ArticleMappingRepository,
	parties integration.PartyRepository,
	runs integration.SyncRunRepository,
	config PullConfig,
	logger *zap.Logger,
) *OrderPullService {
	return &OrderPullService{
		platform:  platform,
		writer:    writer,
		documents: documents,
		mappings:  mappings,
		parties:   parties,
		runs:      runs,
		config:    config.withDefaults(),
		logger:    logger.Named("order_pull"),
		now:       time.Now,
	}
}

// SetLocker sets the per-order lock. Without one orders are not locked and
// the unique remote reference index is the only guard.
func (s *OrderPullService) SetLocker(locker integration.RefLocker) {
	s.locker = locker
}

// SetArchiver sets where finished runs are archived
func (s *OrderPullService) SetArchiver(archiver integration.RunArchiver) {
	s.archiver = archiver
}

// SetMetrics sets the sync instruments
func (s *OrderPullService) SetMetrics(metrics *telemetry.SyncMetrics) {
	s.metrics = metrics
}

// PullPendingOrders runs one pull and returns its messages
func (s *OrderPullService) PullPendingOrders(ctx context.Context) ([]string, error) {
	result, err := s.Pull(ctx)
	if result == nil {
		return nil, err
	}
	return result.Messages, err
}

// Pull walks every page of pending orders and writes each one through the
// ledger. Failures on one order are recorded as messages and the loop goes
// on. Only a failure to list the first page, or a cancelled context, fails
// the run. The result is returned even when err is set.
func (s *OrderPullService) Pull(ctx context.Context) (result *PullResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "integration", "pull_pending_orders",
		attribute.String(telemetry.SpanAttrPlatform, s.platform.Name()))
	run := integration.NewSyncRun(integration.SyncKindOrderPull, s.platform.Name(), s.now())
	span.SetAttributes(attribute.String(telemetry.SpanAttrRunID, run.ID.String()))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("order pull panicked: %v", r)
			s.logger.Error("Order pull panicked",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
		}
		run.Finish(s.now(), err)
		s.record(ctx, run)
		result = newPullResult(run)
		telemetry.EndSpan(span, err)
	}()

	status := s.config.PendingStatus
	for page := 1; ; page++ {
		orders, err := s.listPage(ctx, run, status, page)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("failed to list %s orders: %w", status, err)
			}
			// The unread pages are unaccounted for, so the run cannot be a success.
			run.ErrorCount++
			run.Logf("listing page %d failed, stopping: %v", page, err)
			s.logger.Warn("Order listing failed mid-pull", zap.Int("page", page), zap.Error(err))
			break
		}

		for i := range orders {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s.pullOrder(ctx, run, &orders[i])
		}
		if len(orders) < s.config.PageSize {
			break
		}
	}

	s.logger.Info("Order pull finished",
		zap.Int("seen", run.TotalCount),
		zap.Int("written", run.SuccessCount),
		zap.Int("skipped", run.SkippedCount),
		zap.Int("failed", run.ErrorCount),
	)
	return nil, nil
}

// listPage reads one page of orders through the retry policy. Failed
// attempts are kept in the run messages.
func (s *OrderPullService) listPage(ctx context.Context, run *integration.SyncRun, status string, page int) ([]integration.PlatformOrder, error) {
	orders, outcome, err := shared.Retry(ctx, s.config.Retry, func(ctx context.Context, attempt int) ([]integration.PlatformOrder, error) {
		orders, err := s.platform.ListOrders(ctx, status, page, s.config.PageSize)
		if err != nil {
			run.Logf("listing page %d attempt %d failed: %v", page, attempt, err)
		}
		return orders, err
	})
	if err == nil && outcome.Attempts > 1 {
		s.logger.Info("Order listing recovered after retry",
			zap.Int("page", page),
			zap.Int("attempts", outcome.Attempts),
		)
	}
	return orders, err
}

func (s *OrderPullService) pullOrder(ctx context.Context, run *integration.SyncRun, order *integration.PlatformOrder) {
	run.TotalCount++
	skip, err := s.applyOrder(ctx, run, order)
	switch {
	case err != nil:
		run.ErrorCount++
		run.Logf("order %s failed: %v", order.RemoteID, err)
		s.logger.Error("Order pull failed",
			zap.String("remote_id", order.RemoteID),
			zap.Error(err),
		)
	case skip != "":
		run.SkippedCount++
		s.metrics.RecordOrderSkipped(ctx, s.platform.Name(), skip)
	default:
		run.SuccessCount++
		s.metrics.RecordOrderPulled(ctx, s.platform.Name())
	}
}

// applyOrder writes one order. A non-empty skip reason means the order was
// deliberately left alone and a message explains why.
func (s *OrderPullService) applyOrder(ctx context.Context, run *integration.SyncRun, order *integration.PlatformOrder) (skip string, err error) {
	ref, err := ledger.NormalizeRemoteRef(order.RemoteID)
	if err != nil {
		run.Logf("order with an empty id skipped")
		return skipInvalidRef, nil
	}

	if s.locker != nil {
		release, err := s.locker.TryLock(ctx, pullLockPrefix+ref.String(), s.config.LockTTL)
		if errors.Is(err, integration.ErrLockHeld) {
			run.Logf("order %s skipped: another pull is writing it", ref)
			return skipLocked, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to lock order: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release order lock", zap.String("ref", ref.String()), zap.Error(err))
			}
		}()
	}

	party, err := s.parties.FindByEmail(ctx, order.CustomerEmail)
	if shared.IsNotFound(err) {
		run.Logf("order %s skipped: no customer with email %q", ref, order.CustomerEmail)
		return skipUnknownCustomer, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve customer: %w", err)
	}

	existing, err := s.documents.FindByRemoteRef(ctx, ref)
	if err != nil && !shared.IsNotFound(err) {
		return "", fmt.Errorf("failed to look up document: %w", err)
	}
	if existing != nil {
		fulfilled, err := s.documents.IsFulfilled(ctx, existing.ID)
		if err != nil {
			return "", fmt.Errorf("failed to check fulfilment: %w", err)
		}
		if fulfilled {
			run.Logf("order %s skipped: document %s is already fulfilled", ref, existing.Number)
			return skipFulfilled, nil
		}
	}

	lines, unmapped, err := s.mapItems(ctx, order.Items)
	if err != nil {
		return "", err
	}
	if len(unmapped) > 0 {
		run.Logf("order %s skipped: unmapped SKUs %s", ref, strings.Join(unmapped, ", "))
		return skipUnmappedSKU, nil
	}

	priceList := s.config.priceList(order.Total)
	if existing != nil {
		_, err = s.writer.UpdateDocument(ctx, existing.Number, appledger.UpdateDocumentInput{
			Type:           ledger.DocumentTypeSale,
			CounterpartyID: party.ID,
			RemoteRef:      ref.Ptr(),
			Note:           order.Note,
			DiscountPct:    order.CouponDiscountPct,
			PriceList:      priceList,
			Lines:          lines,
		})
		if err != nil {
			return classifyWriteError(run, ref, err)
		}
		run.Logf("order %s updated document %s", ref, existing.Number)
		return "", nil
	}

	doc, err := s.writer.CreateDocument(ctx, appledger.CreateDocumentInput{
		Type:           ledger.DocumentTypeSale,
		CounterpartyID: party.ID,
		CreatedBy:      s.config.CreatedBy,
		RemoteRef:      ref.Ptr(),
		Note:           order.Note,
		DiscountPct:    order.CouponDiscountPct,
		PriceList:      priceList,
		Lines:          lines,
	})
	if err != nil {
		return classifyWriteError(run, ref, err)
	}
	run.Logf("order %s created document %s", ref, doc.Number)
	return "", nil
}

// classifyWriteError turns expected ledger rejections into skip reasons and
// passes anything else through as a failure.
func classifyWriteError(run *integration.SyncRun, ref ledger.RemoteRef, err error) (string, error) {
	var de *shared.DomainError
	switch {
	case errors.Is(err, shared.ErrDuplicateRemoteRef):
		run.Logf("order %s skipped: written concurrently by another pull", ref)
		return skipDuplicateRef, nil
	case errors.As(err, &de):
		run.Logf("order %s rejected by the ledger: %s", ref, de.Message)
		return skipRejected, nil
	}
	return "", err
}

// mapItems turns storefront items into sale lines. SKUs without an active
// mapping are returned in order of first appearance.
func (s *OrderPullService) mapItems(ctx context.Context, items []integration.PlatformOrderItem) ([]ledger.LineInput, []string, error) {
	skus := make([]string, 0, len(items))
	for _, item := range items {
		if sku := strings.TrimSpace(item.SKU); sku != "" && !slices.Contains(skus, sku) {
			skus = append(skus, sku)
		}
	}

	mapped, err := s.mappings.FindBySKUs(ctx, skus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to map SKUs: %w", err)
	}

	lines := make([]ledger.LineInput, 0, len(items))
	var unmapped []string
	for _, item := range items {
		sku := strings.TrimSpace(item.SKU)
		m, ok := mapped[sku]
		if !ok {
			label := sku
			if label == "" {
				label = fmt.Sprintf("(no SKU: %s)", item.Name)
			}
			if !slices.Contains(unmapped, label) {
				unmapped = append(unmapped, label)
			}
			continue
		}
		lines = append(lines, ledger.LineInput{
			ArticleID: m.ArticleID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Nature:    ledger.NatureSale,
		})
	}
	return lines, unmapped, nil
}

func (s *OrderPullService) record(ctx context.Context, run *integration.SyncRun) {
	recordRun(ctx, s.runs, s.archiver, s.metrics, s.logger, run)
}
