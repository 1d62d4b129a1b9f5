package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/paydash/internal/observability/context"
	"github.com/smallbiznis/paydash/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(nil, Config{Level: "loud"})
	assert.Error(t, err)
}

func TestWithContextAddsIdentifiers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = correlation.ContextWithCorrelationID(ctx, "cid-1")

	WithContext(ctx, zap.New(core)).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "cid-1", fields["correlation_id"])
	assert.NotContains(t, fields, "trace_id")
}

func TestGinMiddlewareSetsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(GinMiddleware(zap.New(core), MiddlewareConfig{
		ErrorClassifier: func(error) (string, string) { return "validation_error", "bad_input" },
	}))
	r.GET("/api/selection", func(c *gin.Context) {
		assert.Equal(t, "cid-9", correlation.ExtractCorrelationID(c.Request.Context()))
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/selection", nil)
	req.Header.Set(correlation.HeaderName, "cid-9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "cid-9", w.Header().Get(correlation.HeaderName))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/selection", fields["route"])
	assert.Equal(t, int64(http.StatusBadRequest), fields["status"])
	assert.Equal(t, "validation_error", fields["error_type"])
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM payroll_records", 3
	}, nil)
	assert.Zero(t, logs.Len(), "fast queries are not logged at warn level")

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM missing", -1
	}, errors.New("no such table"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "SELECT", logs.All()[0].ContextMap()["operation"])

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 0
	}, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len())

	verbose := gl.LogMode(gormlogger.Info)
	verbose.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Equal(t, 2, logs.Len())
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("with x as (select 1) select * from x"))
	assert.Equal(t, "UNKNOWN", operationFromSQL("   "))
}
