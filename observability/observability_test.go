package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("analytics")

	if cfg.ServiceName != "analytics" {
		t.Errorf("expected ServiceName 'analytics', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("analytics")

	if cfg.ServiceName != "analytics" {
		t.Errorf("expected ServiceName 'analytics', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordDispatch(ctx, "sentry", "track", "ok", 10*time.Millisecond)
	metrics.RecordEnqueued(ctx, "sentry", 1)
	metrics.RecordReplay(ctx, "sentry", 3)
	metrics.RecordConsentUpdate(ctx, "sentry", "ok")
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordDispatch(ctx, "a", "track", "ok", time.Millisecond)
	m.RecordEnqueued(ctx, "a", 1)
	m.RecordReplay(ctx, "a", 1)
	m.RecordConsentUpdate(ctx, "a", "ok")
}

func TestStartSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	ctx, span := StartSpan(context.Background(), "dispatch.track")
	SetSpanAttribute(ctx, "provider", "sentry")
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "dispatch.track" {
		t.Errorf("expected span name 'dispatch.track', got %s", spans[0].Name)
	}
}
