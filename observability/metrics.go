package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the metric instruments for the dispatch layer.
type Metrics struct {
	dispatchTotal    metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	queueDepth       metric.Int64UpDownCounter
	replayTotal      metric.Int64Counter
	consentTotal     metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	dispatchTotal, err := meter.Int64Counter("dispatch.total",
		metric.WithDescription("Fan-out operations per provider and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatch.total counter: %w", err)
	}

	dispatchDuration, err := meter.Float64Histogram("dispatch.duration",
		metric.WithDescription("Duration of per-provider dispatch operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatch.duration histogram: %w", err)
	}

	queueDepth, err := meter.Int64UpDownCounter("queue.depth",
		metric.WithDescription("Events buffered for providers that are not ready yet"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue.depth gauge: %w", err)
	}

	replayTotal, err := meter.Int64Counter("queue.replayed",
		metric.WithDescription("Queued events replayed after provider registration"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue.replayed counter: %w", err)
	}

	consentTotal, err := meter.Int64Counter("consent.updates",
		metric.WithDescription("Consent broadcasts per provider and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating consent.updates counter: %w", err)
	}

	return &Metrics{
		dispatchTotal:    dispatchTotal,
		dispatchDuration: dispatchDuration,
		queueDepth:       queueDepth,
		replayTotal:      replayTotal,
		consentTotal:     consentTotal,
	}, nil
}

// RecordDispatch records one per-provider fan-out operation.
func (m *Metrics) RecordDispatch(ctx context.Context, provider, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.dispatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
	))
}

// RecordEnqueued adjusts the buffered-event gauge for a target.
func (m *Metrics) RecordEnqueued(ctx context.Context, target string, delta int64) {
	if m == nil {
		return
	}
	m.queueDepth.Add(ctx, delta, metric.WithAttributes(
		attribute.String("target", target),
	))
}

// RecordReplay counts events replayed to a freshly registered provider.
func (m *Metrics) RecordReplay(ctx context.Context, target string, count int64) {
	if m == nil {
		return
	}
	m.replayTotal.Add(ctx, count, metric.WithAttributes(
		attribute.String("target", target),
	))
}

// RecordConsentUpdate counts one provider's consent broadcast outcome.
func (m *Metrics) RecordConsentUpdate(ctx context.Context, provider, status string) {
	if m == nil {
		return
	}
	m.consentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}
