package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// SyncMetrics counts what the push and pull services do. A nil *SyncMetrics
// is valid and records nothing.
type SyncMetrics struct {
	itemsPushed   *Counter
	itemsFailed   *Counter
	ordersPulled  *Counter
	ordersSkipped *Counter
	runDuration   *Histogram
	runsTotal     *Counter
}

// NewSyncMetrics creates the sync instruments on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &SyncMetrics{}
	var err error
	if m.itemsPushed, err = NewCounter(meter, "stocksync_stock_items_pushed_total",
		"Stock records accepted by the storefront", "{items}"); err != nil {
		return nil, err
	}
	if m.itemsFailed, err = NewCounter(meter, "stocksync_stock_items_failed_total",
		"Stock records rejected or never delivered", "{items}"); err != nil {
		return nil, err
	}
	if m.ordersPulled, err = NewCounter(meter, "stocksync_orders_pulled_total",
		"Storefront orders written to the ledger", "{orders}"); err != nil {
		return nil, err
	}
	if m.ordersSkipped, err = NewCounter(meter, "stocksync_orders_skipped_total",
		"Storefront orders left untouched by a pull", "{orders}"); err != nil {
		return nil, err
	}
	if m.runsTotal, err = NewCounter(meter, "stocksync_runs_total",
		"Finished sync runs by outcome", "{runs}"); err != nil {
		return nil, err
	}
	if m.runDuration, err = NewHistogram(meter, "stocksync_run_duration_seconds",
		"Sync run wall time", "s", SyncDurationBuckets...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordPush records the item outcome of one stock push chunk.
func (m *SyncMetrics) RecordPush(ctx context.Context, platform string, updated, failed int) {
	if m == nil {
		return
	}
	attrs := AttrPlatform.String(platform)
	m.itemsPushed.Add(ctx, int64(updated), attrs)
	m.itemsFailed.Add(ctx, int64(failed), attrs)
}

// RecordOrderPulled counts an order written to the ledger
func (m *SyncMetrics) RecordOrderPulled(ctx context.Context, platform string) {
	if m == nil {
		return
	}
	m.ordersPulled.Add(ctx, 1, AttrPlatform.String(platform))
}

// RecordOrderSkipped counts an order the pull left alone, by reason
func (m *SyncMetrics) RecordOrderSkipped(ctx context.Context, platform, reason string) {
	if m == nil {
		return
	}
	m.ordersSkipped.Add(ctx, 1, AttrPlatform.String(platform), AttrReason.String(reason))
}

// RecordRun records a finished run
func (m *SyncMetrics) RecordRun(ctx context.Context, platform, kind, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrPlatform.String(platform),
		AttrKind.String(kind),
		AttrStatus.String(status),
	}
	m.runsTotal.Add(ctx, 1, attrs...)
	m.runDuration.RecordDuration(ctx, d, attrs...)
}
