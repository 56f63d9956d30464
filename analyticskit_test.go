package analyticskit

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kbukum/analyticskit/config"
	"github.com/kbukum/analyticskit/consent"
	"github.com/kbukum/analyticskit/dispatch"
	"github.com/kbukum/analyticskit/logger"
	"github.com/kbukum/analyticskit/provider"
)

func TestNewActivatesConfiguredProviders(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		Name:        "kit-test",
		Environment: "production",
		Providers: dispatch.Plan{
			Analytics: []dispatch.Activation{{ID: "console"}},
		},
	}

	c, err := New(context.Background(), cfg, WithLogger(logger.NewWriter(&buf, "kit-test")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close(context.Background())

	if got := c.Manager.ActiveProviders(provider.CategoryAnalytics); len(got) != 1 || got[0] != "console" {
		t.Fatalf("active analytics = %v, want [console]", got)
	}

	c.TrackEvent(context.Background(), "launched", map[string]any{"cold": true})
	if !strings.Contains(buf.String(), "launched") {
		t.Errorf("track output missing: %s", buf.String())
	}
}

func TestNewSkipsUnknownProviders(t *testing.T) {
	cfg := &config.Config{
		Name:        "kit-test",
		Environment: "production",
		Providers: dispatch.Plan{
			Analytics: []dispatch.Activation{{ID: "console"}, {ID: "ghost"}},
		},
	}

	c, err := New(context.Background(), cfg, WithLogger(logger.NewWriter(&bytes.Buffer{}, "kit-test")))
	if err != nil {
		t.Fatalf("New should tolerate unknown providers: %v", err)
	}
	defer c.Close(context.Background())

	if got := c.Manager.ActiveProviders(provider.CategoryAnalytics); len(got) != 1 {
		t.Fatalf("active analytics = %v, want [console]", got)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(context.Background(), &config.Config{}); err == nil {
		t.Fatal("expected validation error for empty config")
	}
	if _, err := New(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestConsentFromConfigDisablesCategory(t *testing.T) {
	cfg := &config.Config{
		Name:        "kit-test",
		Environment: "production",
		Consent:     consent.Settings{Analytics: consent.Bool(false)},
		Providers: dispatch.Plan{
			Analytics: []dispatch.Activation{{ID: "console"}},
		},
	}

	c, err := New(context.Background(), cfg, WithLogger(logger.NewWriter(&bytes.Buffer{}, "kit-test")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close(context.Background())

	if got := c.Manager.ActiveProviders(provider.CategoryAnalytics); len(got) != 0 {
		t.Fatalf("active analytics = %v, want none under denied consent", got)
	}

	c.UpdateConsent(context.Background(), consent.Settings{Analytics: consent.Bool(true)})
	if got := c.Manager.ActiveProviders(provider.CategoryAnalytics); len(got) != 1 {
		t.Fatalf("active analytics after grant = %v, want [console]", got)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	cfg := &config.Config{
		Name:        "kit-test",
		Environment: "production",
		Providers: dispatch.Plan{
			Analytics: []dispatch.Activation{{ID: "console"}},
		},
	}

	c, err := New(context.Background(), cfg, WithLogger(logger.NewWriter(&bytes.Buffer{}, "kit-test")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := c.Manager.Providers(); len(got) != 0 {
		t.Fatalf("instances after close = %v, want none", got)
	}
	// Dispatch after close is a silent no-op.
	c.TrackEvent(context.Background(), "late", nil)
}
