package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/realestate/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrs(span sdktrace.ReadOnlySpan) map[string]interface{} {
	out := make(map[string]interface{})
	for _, a := range span.Attributes() {
		out[string(a.Key)] = a.Value.AsInterface()
	}
	return out
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "settlement", "execute",
		telemetry.WithSpanKind(trace.SpanKindServer),
		telemetry.WithAttribute("tenant_id", "t-1"),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "settlement.execute", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, "t-1", attrs(spans[0])["tenant_id"])
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)
	contractID := uuid.New()

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrContractID, contractID,
		telemetry.SpanAttrAmount, "100.00",
		"installments", 3,
		42, "ignored non-string key",
		"dangling",
	)
	telemetry.SetAttribute(span, "paid", true)
	span.End()

	got := attrs(sr.Ended()[0])
	assert.Equal(t, contractID.String(), got["contract_id"])
	assert.Equal(t, "100.00", got["amount"])
	assert.Equal(t, int64(3), got["installments"])
	assert.Equal(t, true, got["paid"])
	assert.NotContains(t, got, "dangling")
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.RecordError(span, errors.New("insufficient balance"))
	telemetry.RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "insufficient balance", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.AddEvent(span, "payment_allocated",
		"installment_id", "inst-123",
		"seq_no", 2,
	)
	telemetry.SetOK(span)
	span.End()

	spans := sr.Ended()
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "payment_allocated", events[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestTraceAndSpanIDs(t *testing.T) {
	setupTestTracer(t)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "parent")
	defer span.End()

	assert.Len(t, telemetry.GetTraceID(ctx), 32)
	assert.Len(t, telemetry.GetSpanID(ctx), 16)
	assert.Equal(t, span, telemetry.SpanFromContext(ctx))

	childCtx, child := telemetry.StartSpan(ctx, "child")
	defer child.End()
	assert.Equal(t, telemetry.GetTraceID(ctx), telemetry.GetTraceID(childCtx))
	assert.NotEqual(t, telemetry.GetSpanID(ctx), telemetry.GetSpanID(childCtx))
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.SetAttribute(nil, "k", "v")
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "e")
	})
}
