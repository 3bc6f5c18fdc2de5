package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestCallMeta_SpanName(t *testing.T) {
	tests := []struct {
		meta CallMeta
		want string
	}{
		{CallMeta{Target: "pms", Method: "GET"}, "outbound.pms.GET"},
		{CallMeta{Target: "stripe", Method: "POST"}, "outbound.stripe.POST"},
		{CallMeta{Target: "pms"}, "outbound.pms"},
	}

	for _, tt := range tests {
		if got := tt.meta.SpanName(); got != tt.want {
			t.Errorf("SpanName() = %q, want %q", got, tt.want)
		}
	}
}

func TestTracer_StartEndCall(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	tracer := NewTracer(tp.Tracer("test"))

	_, span := tracer.StartCall(context.Background(), CallMeta{
		Target: "pms",
		Method: "GET",
		URL:    "https://pms.example.com/v1/folio/42",
	})
	tracer.EndCall(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}

	got := spans[0]
	if got.Name() != "outbound.pms.GET" {
		t.Errorf("span name = %q, want %q", got.Name(), "outbound.pms.GET")
	}
	if got.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status().Code)
	}

	attrs := make(map[string]string)
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	if attrs["outbound.target"] != "pms" {
		t.Errorf("outbound.target = %q, want pms", attrs["outbound.target"])
	}
	if attrs["http.request.method"] != "GET" {
		t.Errorf("http.request.method = %q, want GET", attrs["http.request.method"])
	}
	if attrs["url.full"] != "https://pms.example.com/v1/folio/42" {
		t.Errorf("url.full = %q", attrs["url.full"])
	}
}

func TestTracer_EndCallRecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	tracer := NewTracer(tp.Tracer("test"))

	_, span := tracer.StartCall(context.Background(), CallMeta{Target: "stripe", Method: "POST"})
	tracer.EndCall(span, errors.New("gateway timeout"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}

	got := spans[0]
	if got.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status().Code)
	}
	if got.Status().Description != "gateway timeout" {
		t.Errorf("status description = %q, want %q", got.Status().Description, "gateway timeout")
	}
	if len(got.Events()) == 0 {
		t.Error("expected a recorded error event")
	}
}

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx, span := tracer.StartCall(context.Background(), CallMeta{Target: "pms"})
	if ctx == nil {
		t.Fatal("ctx = nil")
	}
	if span.IsRecording() {
		t.Error("nop span should not be recording")
	}
	tracer.EndCall(span, errors.New("ignored"))
}
