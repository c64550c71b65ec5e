package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	l, err := New(&Config{Level: "warn", Format: "json", Output: "stderr"}, core)
	require.NoError(t, err)

	l.Info("hidden from primary core")
	l.Warn("visible")

	// The teed observer has its own level and sees both entries.
	assert.Equal(t, 2, recorded.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestContextHelpers(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, _ = WithUserID(ctx, FromContext(ctx), "u-7")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "u-7", GetUserID(ctx))

	L(ctx).Info("hello")
	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "u-7", fields["user_id"])

	assert.NotNil(t, FromContext(context.Background()))
}

func TestGormLoggerTrace(t *testing.T) {
	tests := []struct {
		name      string
		level     gormlogger.LogLevel
		elapsed   time.Duration
		err       error
		wantLevel zapcore.Level
		wantLogs  int
	}{
		{"error is logged", gormlogger.Warn, 0, errors.New("boom"), zapcore.ErrorLevel, 1},
		{"record not found is ignored", gormlogger.Warn, 0, gorm.ErrRecordNotFound, zapcore.InfoLevel, 0},
		{"slow query warns", gormlogger.Warn, time.Second, nil, zapcore.WarnLevel, 1},
		{"fast query at warn is silent", gormlogger.Warn, 0, nil, zapcore.InfoLevel, 0},
		{"fast query at info is debug", gormlogger.Info, 0, nil, zapcore.DebugLevel, 1},
		{"silent logs nothing", gormlogger.Silent, time.Second, errors.New("boom"), zapcore.InfoLevel, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level, 100*time.Millisecond)

			gl.Trace(context.Background(), time.Now().Add(-tt.elapsed), func() (string, int64) {
				return "SELECT 1", 1
			}, tt.err)

			require.Equal(t, tt.wantLogs, recorded.Len())
			if tt.wantLogs > 0 {
				assert.Equal(t, tt.wantLevel, recorded.All()[0].Level)
			}
		})
	}
}

func TestGormLoggerLogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn, 0)
	clone, ok := gl.LogMode(gormlogger.Info).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Info, clone.level)
	assert.Equal(t, gormlogger.Warn, gl.level)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
}

func TestGinMiddlewareAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)
	l := zap.New(core)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "req-9"); c.Next() })
	r.Use(GinMiddleware(l), Recovery(l))
	r.GET("/ok", func(c *gin.Context) {
		assert.Equal(t, "req-9", GetRequestID(c.Request.Context()))
		GetGinLogger(c).Info("inside handler")
		c.Status(http.StatusNoContent)
	})
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INTERNAL")

	var sawPanic, sawServerError bool
	for _, e := range recorded.All() {
		if e.Message == "Panic recovered" {
			sawPanic = true
		}
		if e.Message == "HTTP Request" && e.Level == zapcore.ErrorLevel {
			sawServerError = true
		}
	}
	assert.True(t, sawPanic)
	assert.True(t, sawServerError)
}
