package otelmetric

import (
	"bytes"
	"context"
	"testing"

	"github.com/kbukum/analyticskit/errors"
	"github.com/kbukum/analyticskit/logger"
	"github.com/kbukum/analyticskit/provider"
)

func testProvider(t *testing.T) *Provider {
	t.Helper()
	p := New(logger.NewWriter(&bytes.Buffer{}, "otelmetric-test"))
	if err := p.Initialize(context.Background(), nil); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return p
}

func TestFullAnalyticsSurface(t *testing.T) {
	p := testProvider(t)
	ctx := context.Background()

	if err := p.Track(ctx, "signup", map[string]any{"plan": "pro"}); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if err := p.IdentifyUser(ctx, "u1", nil); err != nil {
		t.Fatalf("IdentifyUser: %v", err)
	}
	if err := p.SetUserProperties(ctx, map[string]any{"tier": "pro"}); err != nil {
		t.Fatalf("SetUserProperties: %v", err)
	}
	if err := p.LogRevenue(ctx, provider.Revenue{Amount: 9.99, Currency: "USD"}); err != nil {
		t.Fatalf("LogRevenue: %v", err)
	}
	if err := p.LogScreenView(ctx, "checkout", nil); err != nil {
		t.Fatalf("LogScreenView: %v", err)
	}
}

func TestGuardBeforeInitialize(t *testing.T) {
	p := New(logger.NewWriter(&bytes.Buffer{}, "otelmetric-test"))
	err := p.Track(context.Background(), "early", nil)
	if code, _ := errors.CodeOf(err); code != errors.ErrCodeNotInitialized {
		t.Fatalf("code = %v, want %v", code, errors.ErrCodeNotInitialized)
	}
}

func TestLifecycleRoundTrip(t *testing.T) {
	p := testProvider(t)
	ctx := context.Background()

	if err := p.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := p.Track(ctx, "paused", nil); !errors.IsNotReady(err) {
		t.Fatalf("expected not-ready error while paused, got %v", err)
	}
	if err := p.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if p.State() != provider.StateShutDown {
		t.Errorf("state = %v, want shut-down", p.State())
	}
}
