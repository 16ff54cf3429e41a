package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	return exporter
}

func slowQueryLogger(t *testing.T, threshold time.Duration) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetSlowQueryLogging(threshold, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })
	return &buf
}

func TestTraceQuery_SpanNameAndAttributes(t *testing.T) {
	exporter := setupTestTracer(t)

	const statement = "SELECT id, name FROM categories WHERE slug = $1"
	_, end := TraceQuery(context.Background(), "CategoryRepository.GetBySlug", statement)
	end(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "db.CategoryRepository.GetBySlug", span.Name)

	attrs := make(map[string]string, len(span.Attributes))
	for _, a := range span.Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	assert.Equal(t, "postgresql", attrs["db.system"])
	assert.Equal(t, "CategoryRepository.GetBySlug", attrs["db.operation"])
	assert.Equal(t, statement, attrs["db.statement"])

	assert.Equal(t, codes.Unset, span.Status.Code)
}

func TestTraceQuery_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceQuery(context.Background(), "ProductRepository.Update", "UPDATE products SET name = $1")
	end(errors.New("connection refused"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, codes.Error, span.Status.Code)
	assert.NotEmpty(t, span.Events, "error should be recorded as a span event")
}

func TestTraceQuery_ChildOfParentSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx, parent := otel.Tracer("test").Start(context.Background(), "handler")
	_, end := TraceQuery(ctx, "OrderRepository.List", "SELECT * FROM order_headers")
	end(nil)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	// The db span inherits the parent's trace.
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func TestSlowQueryLogging_LogsSlowQuery(t *testing.T) {
	setupTestTracer(t)
	buf := slowQueryLogger(t, time.Nanosecond)

	_, end := TraceQuery(context.Background(), "CategoryRepository.list", "SELECT * FROM categories")
	end(nil)

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.Contains(t, out, "CategoryRepository.list")
	assert.Contains(t, out, "SELECT * FROM categories")
}

func TestSlowQueryLogging_QuietBelowThreshold(t *testing.T) {
	setupTestTracer(t)
	buf := slowQueryLogger(t, time.Hour)

	_, end := TraceQuery(context.Background(), "FastSelect", "SELECT 1")
	end(nil)

	assert.Empty(t, buf.String())
}

func TestSlowQueryLogging_IncludesError(t *testing.T) {
	setupTestTracer(t)
	buf := slowQueryLogger(t, time.Nanosecond)

	_, end := TraceQuery(context.Background(), "FeedbackRepository.Create", "INSERT INTO feedback ...")
	end(errors.New("unique constraint violation"))

	assert.Contains(t, buf.String(), "unique constraint violation")
}

func TestSlowQueryLogging_DisabledIsSafe(t *testing.T) {
	setupTestTracer(t)
	SetSlowQueryLogging(0, nil)

	_, end := TraceQuery(context.Background(), "AnyOp", "SELECT 1")
	assert.NotPanics(t, func() { end(nil) })
}

func TestSetSlowQueryLogging_ConcurrentAccess(t *testing.T) {
	setupTestTracer(t)
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			SetSlowQueryLogging(time.Duration(i)*time.Millisecond, logger)
		}
	}()
	for i := 0; i < 100; i++ {
		slowQuerySettings()
	}
	<-done
}
