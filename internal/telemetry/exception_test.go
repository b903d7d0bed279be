package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpanExceptionReporter_RecordsOnActiveSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := Tracer(tp)
	ctx, span := tracer.Start(context.Background(), "unit-test-span")

	reporter := NewSpanExceptionReporter(tp)
	reporter.ReportException(ctx, errors.New("boom"), map[string]string{"conversation_id": "c-1"})
	span.End()

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	events := spans[0].Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Name != "exception" {
		t.Errorf("expected exception event, got %s", events[0].Name)
	}
}

func TestSpanExceptionReporter_NilError(t *testing.T) {
	reporter := NewSpanExceptionReporter(nil)
	// Must not panic even with no active span and a nil error.
	reporter.ReportException(context.Background(), nil, nil)
}

func TestSpanExceptionReporter_NoActiveSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	reporter := NewSpanExceptionReporter(tp)
	reporter.ReportException(context.Background(), errors.New("boom"), nil)

	if len(sr.Ended()) != 1 {
		t.Fatalf("expected a carrier span to be created and ended, got %d", len(sr.Ended()))
	}
}

func TestNoopExceptionReporter(t *testing.T) {
	var r NoopExceptionReporter
	// Must not panic.
	r.ReportException(context.Background(), errors.New("ignored"), map[string]string{"a": "b"})
}
