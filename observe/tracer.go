package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallMeta identifies one outbound call for telemetry purposes.
type CallMeta struct {
	Target string // logical endpoint group, e.g. "pms" or "stripe" (required)
	Method string // HTTP method (optional)
	URL    string // resolved request URL (optional)
}

// SpanName returns the deterministic span name for this call.
// Format: outbound.<target>.<method>
func (m CallMeta) SpanName() string {
	name := "outbound." + m.Target
	if m.Method != "" {
		name += "." + m.Method
	}
	return name
}

// Tracer wraps OpenTelemetry tracing with outbound-call span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndCall must be best-effort and must not panic.
type Tracer interface {
	// StartCall starts a new span for an outbound call.
	StartCall(ctx context.Context, meta CallMeta) (context.Context, trace.Span)

	// EndCall ends the span, recording any error.
	EndCall(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartCall starts a new span with call metadata as attributes.
func (t *tracerImpl) StartCall(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("outbound.target", meta.Target),
	}
	if meta.Method != "" {
		attrs = append(attrs, attribute.String("http.request.method", meta.Method))
	}
	if meta.URL != "" {
		attrs = append(attrs, attribute.String("url.full", meta.URL))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndCall ends the span and records the error status if present.
func (t *tracerImpl) EndCall(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// nopTracer does nothing beyond producing non-recording spans.
type nopTracer struct {
	noop trace.Tracer
}

// NopTracer returns a Tracer that produces non-recording spans.
func NopTracer() Tracer {
	return &nopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *nopTracer) StartCall(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *nopTracer) EndCall(span trace.Span, err error) {
	span.End()
}
