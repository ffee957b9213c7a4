package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/realestate/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

// setupTestTracer installs a recording tracer provider for the test
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func onlySpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := sr.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (string, bool) {
	for _, attr := range span.Attributes() {
		if attr.Key == key {
			return attr.Value.Emit(), true
		}
	}
	return "", false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "test-service"}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracingWithConfig_Enabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"}))
	router.GET("/api/v1/contracts/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/contracts/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	span := onlySpan(t, sr)
	assert.Contains(t, span.Name(), "/api/v1/contracts/:id")
}

func TestTracingAttributeInjector_AddsIdentity(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(DefaultTracingConfig()))
	// Stand-in for the JWT middleware
	router.Use(func(c *gin.Context) {
		c.Set(logger.GinTenantIDKey, "tenant-456")
		c.Set(logger.GinUserIDKey, "user-123")
		c.Next()
	})
	router.Use(TracingAttributeInjector())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "req-789")
	router.ServeHTTP(httptest.NewRecorder(), req)

	span := onlySpan(t, sr)
	for key, want := range map[attribute.Key]string{
		"request_id": "req-789",
		"tenant_id":  "tenant-456",
		"user_id":    "user-123",
	} {
		got, ok := spanAttr(span, key)
		assert.True(t, ok, "%s attribute missing", key)
		assert.Equal(t, want, got)
	}
}

func TestTracingAttributeInjector_IgnoresTenantHeader(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(DefaultTracingConfig()))
	router.Use(TracingAttributeInjector())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Tenant-ID", "11111111-1111-1111-1111-111111111111")
	router.ServeHTTP(httptest.NewRecorder(), req)

	_, ok := spanAttr(onlySpan(t, sr), "tenant_id")
	assert.False(t, ok)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status  int
		code    codes.Code
		message string
	}{
		{http.StatusOK, codes.Unset, ""},
		{http.StatusBadRequest, codes.Error, "Client Error"},
		{http.StatusUnauthorized, codes.Error, "Unauthorized"},
		{http.StatusForbidden, codes.Error, "Forbidden"},
		{http.StatusNotFound, codes.Error, "Not Found"},
		{http.StatusUnprocessableEntity, codes.Error, "Business Rule Violation"},
		// otelgin resets the description of server errors itself
		{http.StatusInternalServerError, codes.Error, ""},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sr := setupTestTracer(t)

			router := gin.New()
			router.Use(TracingWithConfig(DefaultTracingConfig()))
			router.Use(SpanErrorMarker())
			router.GET("/test", func(c *gin.Context) {
				c.Status(tt.status)
			})
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

			span := onlySpan(t, sr)
			if tt.code == codes.Unset {
				assert.NotEqual(t, codes.Error, span.Status().Code)
				return
			}
			assert.Equal(t, tt.code, span.Status().Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, span.Status().Description)
			}
		})
	}
}

func TestTracingMiddleware_WithoutRecordingSpan(t *testing.T) {
	otel.SetTracerProvider(noop.NewTracerProvider())

	router := gin.New()
	router.Use(SpanErrorMarker())
	router.Use(TracingAttributeInjector())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "realestate-ledger", cfg.ServiceName)
}
