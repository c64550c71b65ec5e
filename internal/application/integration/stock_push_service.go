package integration

import (
	"context"
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

// StockPushService mirrors authoritative stock to the storefront and,
// for confirmed orders, marks the storefront order completed.
type StockPushService struct {
	platform integration.StockPlatform
	stock    ledger.StockReader
	mappings integration.ArticleMappingRepository
	runs     integration.SyncRunRepository
	archiver integration.RunArchiver
	metrics  *telemetry.SyncMetrics
	config   PushConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewStockPushService creates a new StockPushService
func NewStockPushService(
	platform integration.StockPlatform,
	stock ledger.StockReader,
	mappings integration.ArticleMappingRepository,
	runs integration.SyncRunRepository,
	config PushConfig,
	logger *zap.Logger,
) *StockPushService {
	return &StockPushService{
		platform: platform,
		stock:    stock,
		mappings: mappings,
		runs:     runs,
		config:   config,
		logger:   logger.Named("stock_push"),
		now:      time.Now,
	}
}

// SetArchiver sets where finished runs are archived
func (s *StockPushService) SetArchiver(archiver integration.RunArchiver) {
	s.archiver = archiver
}

// SetMetrics sets the sync instruments
func (s *StockPushService) SetMetrics(metrics *telemetry.SyncMetrics) {
	s.metrics = metrics
}

// PushStockAndStatus sends the current stock of req.Articles in chunks.
// Item failures are kept per item in the run; they never abort the push.
// err is set only when the run could not proceed at all, and the result
// is returned in that case too.
func (s *StockPushService) PushStockAndStatus(ctx context.Context, req PushRequest) (result *PushResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "integration", "push_stock",
		attribute.String(telemetry.SpanAttrPlatform, s.platform.Name()),
		attribute.String(telemetry.SpanAttrDocumentNumber, req.DocumentNumber),
		attribute.Int(telemetry.SpanAttrItemCount, len(req.Articles)))

	run := integration.NewSyncRun(integration.SyncKindStockPush, s.platform.Name(), s.now())
	run.DocumentNumber = req.DocumentNumber
	if req.RemoteOrderRef != nil {
		run.RemoteRef = req.RemoteOrderRef.String()
		span.SetAttributes(attribute.String(telemetry.SpanAttrRemoteRef, run.RemoteRef))
	}
	span.SetAttributes(attribute.String(telemetry.SpanAttrRunID, run.ID.String()))

	// unsent holds the updates not yet answered by a finished chunk
	var (
		unsent []integration.StockUpdate
		seq    int
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stock push panicked: %v", r)
			s.logger.Error("Stock push panicked",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
		}
		if err != nil && len(unsent) > 0 {
			run.AddBatch(integration.UnsentBatch(seq+1, unsent, err))
		}
		run.Finish(s.now(), err)
		s.record(ctx, run)
		result = newPushResult(run)
		telemetry.EndSpan(span, err)
	}()

	if req.RemoteOrderRef != nil {
		s.completeOrder(ctx, run, *req.RemoteOrderRef)
	}

	updates, err := s.buildUpdates(ctx, run, req)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		run.Logf("no stock to push")
		return nil, nil
	}

	size := s.platform.ChunkSize()
	if size <= 0 {
		size = integration.DefaultChunkSize
	}
	unsent = updates
	for chunk := range slices.Chunk(updates, size) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch := s.sendChunk(ctx, seq+1, chunk)
		seq++
		unsent = unsent[len(chunk):]
		run.AddBatch(batch)
		s.metrics.RecordPush(ctx, s.platform.Name(), batch.SuccessCount(), batch.ErrorCount())
	}

	s.logger.Info("Stock push finished",
		zap.String("document", req.DocumentNumber),
		zap.Int("chunks", seq),
		zap.Int("updated", run.SuccessCount),
		zap.Int("skipped", run.SkippedCount),
		zap.Int("failed", run.ErrorCount),
	)
	return nil, nil
}

// HandlePushTask runs a push queued after a ledger commit
func (s *StockPushService) HandlePushTask(ctx context.Context, task appledger.PushTask) error {
	date := task.DocumentDate
	result, err := s.PushStockAndStatus(ctx, PushRequest{
		Articles:         task.Articles,
		DocumentNumber:   task.DocumentNumber,
		DocumentDate:     &date,
		UpdateRemoteDate: s.config.UpdateRemoteDate,
	})
	if err != nil {
		return err
	}
	if result.Status != integration.SyncStatusSuccess {
		return fmt.Errorf("stock push for %s ended %s: %d of %d items failed",
			task.DocumentNumber, result.Status, result.Failed, result.Total)
	}
	return nil
}

// completeOrder marks the storefront order completed, retrying transient
// failures. A final failure is recorded and stock propagation continues.
func (s *StockPushService) completeOrder(ctx context.Context, run *integration.SyncRun, ref ledger.RemoteRef) {
	_, outcome, err := shared.Retry(ctx, s.config.Retry, func(ctx context.Context, attempt int) (struct{}, error) {
		err := s.platform.UpdateOrderStatus(ctx, ref.String(), integration.RemoteStatusCompleted)
		if err != nil {
			run.Logf("order %s status attempt %d failed: %v", ref, attempt, err)
		}
		return struct{}{}, err
	})
	if err != nil {
		run.Logf("order %s status not updated after %d attempts: %v", ref, outcome.Attempts, err)
		s.logger.Warn("Storefront order status not updated",
			zap.String("ref", ref.String()),
			zap.Int("attempts", outcome.Attempts),
			zap.Error(err),
		)
		return
	}
	run.Logf("order %s marked %s", ref, integration.RemoteStatusCompleted)
}

// buildUpdates resolves storefront products and reads their stock. Articles
// without an active mapping are counted as skipped.
func (s *StockPushService) buildUpdates(ctx context.Context, run *integration.SyncRun, req PushRequest) ([]integration.StockUpdate, error) {
	articles := make([]string, 0, len(req.Articles))
	for _, id := range req.Articles {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(articles, id) {
			articles = append(articles, id)
		}
	}
	run.TotalCount = len(articles)
	if len(articles) == 0 {
		return nil, nil
	}

	mapped, err := s.mappings.FindByArticleIDs(ctx, articles)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storefront products: %w", err)
	}

	resolved := make([]string, 0, len(articles))
	var unmapped []string
	for _, id := range articles {
		if _, ok := mapped[id]; ok {
			resolved = append(resolved, id)
			continue
		}
		unmapped = append(unmapped, id)
	}
	if len(unmapped) > 0 {
		run.SkippedCount += len(unmapped)
		run.Logf("%d articles have no storefront product: %s", len(unmapped), strings.Join(unmapped, ", "))
	}
	if len(resolved) == 0 {
		return nil, nil
	}

	stock, err := s.stock.CurrentStock(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}

	updates := make([]integration.StockUpdate, 0, len(resolved))
	for _, id := range resolved {
		u := integration.StockUpdate{
			RemoteProductID: mapped[id].RemoteProductID,
			Quantity:        stock[id],
		}
		if req.UpdateRemoteDate && req.DocumentDate != nil {
			date := *req.DocumentDate
			u.DateCreated = &date
		}
		updates = append(updates, u)
	}
	return updates, nil
}

// sendChunk sends one chunk through the retry policy. When every attempt
// fails, each item of the chunk is recorded as a failure.
func (s *StockPushService) sendChunk(ctx context.Context, seq int, chunk []integration.StockUpdate) integration.SyncBatch {
	batch := integration.SyncBatch{
		Seq:      seq,
		Items:    chunk,
		Updated:  make([]string, 0, len(chunk)),
		Failures: make([]integration.SyncFailure, 0),
	}

	res, outcome, err := shared.Retry(ctx, s.config.Retry, func(ctx context.Context, attempt int) (*integration.BatchResult, error) {
		res, err := s.platform.BatchUpdateStock(ctx, chunk)
		if err == nil && res == nil {
			err = integration.ErrPlatformInvalidResponse
		}
		if err != nil {
			s.logger.Warn("Stock chunk attempt failed",
				zap.Int("chunk", seq),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return res, err
	})
	batch.Attempts = outcome.Attempts

	if err != nil {
		batch.Error = err.Error()
		for _, u := range chunk {
			batch.Failures = append(batch.Failures, integration.SyncFailure{
				ItemID:       u.RemoteProductID,
				ErrorCode:    integration.FailureUndelivered,
				ErrorMessage: err.Error(),
			})
		}
		return batch
	}

	batch.Updated = append(batch.Updated, res.Updated...)
	batch.Failures = append(batch.Failures, res.Failed...)
	return batch
}

func (s *StockPushService) record(ctx context.Context, run *integration.SyncRun) {
	recordRun(ctx, s.runs, s.archiver, s.metrics, s.logger, run)
}

// recordRun persists a finished run, archives it and records its metrics.
// None of these may fail the run itself.
func recordRun(
	ctx context.Context,
	runs integration.SyncRunRepository,
	archiver integration.RunArchiver,
	metrics *telemetry.SyncMetrics,
	logger *zap.Logger,
	run *integration.SyncRun,
) {
	ctx = context.WithoutCancel(ctx)

	if err := runs.Save(ctx, run); err != nil {
		logger.Error("Failed to save sync run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
	}
	if archiver != nil {
		if err := archiver.Archive(ctx, run); err != nil {
			logger.Warn("Failed to archive sync run",
				zap.String("run_id", run.ID.String()),
				zap.Error(err),
			)
		}
	}
	metrics.RecordRun(ctx, run.Platform, string(run.Kind), run.Status.String(), run.Duration)

	logger.Info("Sync run recorded",
		zap.String("run_id", run.ID.String()),
		zap.String("kind", string(run.Kind)),
		zap.String("status", run.Status.String()),
		zap.Duration("duration", run.Duration),
	)
}
