package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanExceptionReporter records exceptions as span events on the span active
// in the context at call time, following the start/end/fail pattern the rest
// of this package's span handling uses. It is the default, non-trivial
// implementation of the directline.ExceptionReporter interface; callers that
// never set up a TracerProvider can use NoopExceptionReporter instead.
type SpanExceptionReporter struct {
	tracerProvider trace.TracerProvider
}

// NewSpanExceptionReporter returns a SpanExceptionReporter that resolves
// spans from the given TracerProvider. A nil provider falls back to the
// global one, matching Tracer's nil-handling convention.
func NewSpanExceptionReporter(tp trace.TracerProvider) *SpanExceptionReporter {
	return &SpanExceptionReporter{tracerProvider: tp}
}

// ReportException attaches err as an exception event to the span active in
// ctx, tagging it with the supplied key/value pairs. If ctx carries no active
// span, this records a new short-lived span purely to carry the event so the
// exception is never silently dropped.
func (r *SpanExceptionReporter) ReportException(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		tracer := Tracer(r.tracerProvider)
		var newSpan trace.Span
		ctx, newSpan = tracer.Start(ctx, "directline.exception")
		defer newSpan.End()
		span = newSpan
	}

	attrs := make([]attribute.KeyValue, 0, len(tags))
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}

	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
}

// NoopExceptionReporter discards every reported exception. It is the default
// used when a caller does not wire in telemetry.
type NoopExceptionReporter struct{}

// ReportException implements directline.ExceptionReporter by doing nothing.
func (NoopExceptionReporter) ReportException(context.Context, error, map[string]string) {}
