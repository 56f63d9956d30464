// Package otelmetric is an analytics adapter that turns product events
// into OpenTelemetry metrics. It carries no per-user payloads upstream,
// only aggregate counters, which makes it safe to run alongside stricter
// consent configurations.
package otelmetric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/analyticskit/logger"
	"github.com/kbukum/analyticskit/observability"
	"github.com/kbukum/analyticskit/provider"
)

// ID is the registry identifier of this adapter.
const ID = "otelmetric"

// Metadata describes the adapter for registry listings.
func Metadata() provider.Metadata {
	return provider.Metadata{
		ID:       ID,
		Name:     "OpenTelemetry Metrics",
		Category: provider.CategoryAnalytics,
		Version:  "1.0.0",
		Platforms: []provider.Platform{
			provider.PlatformServer,
		},
	}
}

// Provider counts analytics events on OpenTelemetry instruments.
type Provider struct {
	*provider.Base

	events  metric.Int64Counter
	screens metric.Int64Counter
	users   metric.Int64Counter
	revenue metric.Float64Counter
}

// New creates an uninitialized adapter.
func New(log *logger.Logger) *Provider {
	p := &Provider{}
	p.Base = provider.NewBase(Metadata(), log).WithSetup(p.setup)
	return p
}

// Factory returns a registry factory producing fresh instances.
func Factory(log *logger.Logger) provider.Factory {
	return func() provider.Provider { return New(log) }
}

// setup creates the instruments. Recognized config key: scope (the meter
// scope name, defaulting to the adapter identifier).
func (p *Provider) setup(ctx context.Context, cfg map[string]any) error {
	scope, _ := cfg["scope"].(string)
	if scope == "" {
		scope = "analyticskit/" + ID
	}
	meter := observability.Meter(scope)

	var err error
	if p.events, err = meter.Int64Counter("analytics.events",
		metric.WithDescription("Analytics events by name")); err != nil {
		return fmt.Errorf("otelmetric: %w", err)
	}
	if p.screens, err = meter.Int64Counter("analytics.screen_views",
		metric.WithDescription("Screen views by screen name")); err != nil {
		return fmt.Errorf("otelmetric: %w", err)
	}
	if p.users, err = meter.Int64Counter("analytics.identified_users",
		metric.WithDescription("User identification calls")); err != nil {
		return fmt.Errorf("otelmetric: %w", err)
	}
	if p.revenue, err = meter.Float64Counter("analytics.revenue",
		metric.WithDescription("Revenue amount by currency")); err != nil {
		return fmt.Errorf("otelmetric: %w", err)
	}
	return nil
}

func (p *Provider) Track(ctx context.Context, name string, props map[string]any) error {
	if err := p.EnsureReady(); err != nil {
		return err
	}
	p.events.Add(ctx, 1, metric.WithAttributes(attribute.String("event", name)))
	return nil
}

func (p *Provider) IdentifyUser(ctx context.Context, userID string, traits map[string]any) error {
	if err := p.EnsureReady(); err != nil {
		return err
	}
	p.users.Add(ctx, 1)
	return nil
}

// SetUserProperties is accepted and dropped: aggregate counters carry no
// per-user state.
func (p *Provider) SetUserProperties(ctx context.Context, props map[string]any) error {
	return p.EnsureReady()
}

func (p *Provider) LogRevenue(ctx context.Context, rev provider.Revenue) error {
	if err := p.EnsureReady(); err != nil {
		return err
	}
	p.revenue.Add(ctx, rev.Amount, metric.WithAttributes(
		attribute.String("currency", rev.Currency),
		attribute.String("product", rev.Product),
	))
	return nil
}

func (p *Provider) LogScreenView(ctx context.Context, name string, props map[string]any) error {
	if err := p.EnsureReady(); err != nil {
		return err
	}
	p.screens.Add(ctx, 1, metric.WithAttributes(attribute.String("screen", name)))
	return nil
}
