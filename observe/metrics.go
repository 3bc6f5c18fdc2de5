package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records outbound call telemetry.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic and must return quickly.
type Metrics interface {
	// RecordCall records one logical call with its duration and outcome.
	RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error)

	// RecordRetry records one counted retry of a logical call.
	RecordRetry(ctx context.Context, meta CallMeta)

	// RecordBreakerTransition records a circuit breaker state change for the
	// given endpoint group.
	RecordBreakerTransition(ctx context.Context, target, from, to string)
}

// otelMetrics is the OpenTelemetry-backed Metrics implementation.
type otelMetrics struct {
	callCount    metric.Int64Counter
	errorCount   metric.Int64Counter
	retryCount   metric.Int64Counter
	breakerCount metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	callCount, err := meter.Int64Counter(
		"outbound.call.total",
		metric.WithDescription("Total number of logical outbound calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"outbound.call.errors",
		metric.WithDescription("Total number of failed outbound calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"outbound.call.retries",
		metric.WithDescription("Total number of counted retries"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	breakerCount, err := meter.Int64Counter(
		"outbound.breaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"outbound.call.duration_ms",
		metric.WithDescription("Logical outbound call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		callCount:    callCount,
		errorCount:   errorCount,
		retryCount:   retryCount,
		breakerCount: breakerCount,
		durationHist: durationHist,
	}, nil
}

func (m *otelMetrics) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(m.callAttrs(meta)...)

	m.callCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

func (m *otelMetrics) RecordRetry(ctx context.Context, meta CallMeta) {
	m.retryCount.Add(ctx, 1, metric.WithAttributes(m.callAttrs(meta)...))
}

func (m *otelMetrics) RecordBreakerTransition(ctx context.Context, target, from, to string) {
	m.breakerCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outbound.target", target),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (m *otelMetrics) callAttrs(meta CallMeta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("outbound.target", meta.Target),
	}
	if meta.Method != "" {
		attrs = append(attrs, attribute.String("http.request.method", meta.Method))
	}
	return attrs
}

// nopMetrics discards everything.
type nopMetrics struct{}

// NopMetrics returns a Metrics implementation that does nothing.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
}
func (nopMetrics) RecordRetry(ctx context.Context, meta CallMeta)                      {}
func (nopMetrics) RecordBreakerTransition(ctx context.Context, target, from, to string) {}
