package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of service spans
const TracerName = "stocksync"

// Span attribute keys shared by the application services
const (
	SpanAttrDocumentNumber = "document.number"
	SpanAttrDocumentType   = "document.type"
	SpanAttrRemoteRef      = "remote.ref"
	SpanAttrPlatform       = "sync.platform"
	SpanAttrItemCount      = "sync.items"
	SpanAttrRunID          = "sync.run_id"
)

// StartServiceSpan starts an internal span named "{service}.{method}".
// The caller must End it.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create")
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, fmt.Sprintf("%s.%s", service, method),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TraceID returns the hex trace id of the span in ctx, empty when there is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
