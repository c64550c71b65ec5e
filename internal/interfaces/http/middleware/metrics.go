package middleware

import (
	"time"

	"github.com/erp/stocksync/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics returns middleware recording request count and latency per
// route pattern. A nil meter disables it.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }, nil
	}

	requests, err := telemetry.NewCounter(meter,
		"http_server_request_total", "Total number of HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}
	duration, err := telemetry.NewHistogram(meter,
		"http_server_request_duration_seconds", "HTTP request latency in seconds", "s",
		telemetry.HTTPDurationBuckets...)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// FullPath keeps cardinality bounded; unmatched paths share one series.
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		ctx := c.Request.Context()
		method := telemetry.AttrMethod.String(c.Request.Method)
		requests.Add(ctx, 1, method, telemetry.AttrRoute.String(route), telemetry.AttrCode.Int(c.Writer.Status()))
		duration.RecordDuration(ctx, time.Since(start), method, telemetry.AttrRoute.String(route))
	}, nil
}
