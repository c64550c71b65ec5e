package telemetry

import (
	"errors"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing installs the otelgorm plugin so every query becomes a
// child span of the request or sync run that issued it. Query variables are
// never recorded; they may carry customer data.
func RegisterDBTracing(db *gorm.DB, enabled bool, logger *zap.Logger) error {
	if !enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}

	// Registered ahead of the plugin so these run before its span ends.
	annotate := func(tx *gorm.DB) {
		span := trace.SpanFromContext(tx.Statement.Context)
		if !span.IsRecording() {
			return
		}
		if tx.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
		}
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			span.SetAttributes(attribute.Bool("db.not_found", true))
		}
	}
	cb := db.Callback()
	for _, err := range []error{
		cb.Create().After("gorm:create").Register("stocksync:annotate_create", annotate),
		cb.Query().After("gorm:query").Register("stocksync:annotate_query", annotate),
		cb.Update().After("gorm:update").Register("stocksync:annotate_update", annotate),
		cb.Delete().After("gorm:delete").Register("stocksync:annotate_delete", annotate),
	} {
		if err != nil {
			return err
		}
	}

	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled")
	return nil
}
