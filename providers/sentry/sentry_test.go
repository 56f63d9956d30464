package sentry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kbukum/analyticskit/errors"
	"github.com/kbukum/analyticskit/logger"
	"github.com/kbukum/analyticskit/provider"
)

func testProvider() *Provider {
	return New(logger.NewWriter(&bytes.Buffer{}, "sentry-test"))
}

func TestSetupRequiresDSN(t *testing.T) {
	p := testProvider()
	err := p.Initialize(context.Background(), map[string]any{})
	if err == nil {
		t.Fatal("expected error without dsn")
	}
	if !strings.Contains(err.Error(), "dsn") {
		t.Errorf("error %q does not mention dsn", err.Error())
	}
	if p.State() != provider.StateUninitialized {
		t.Errorf("state after failed setup = %v, want uninitialized", p.State())
	}
}

func TestGuardBeforeInitialize(t *testing.T) {
	p := testProvider()
	err := p.LogError(context.Background(), context.DeadlineExceeded, nil)
	if code, _ := errors.CodeOf(err); code != errors.ErrCodeNotInitialized {
		t.Fatalf("code = %v, want %v", code, errors.ErrCodeNotInitialized)
	}
}

func TestMetadataCategory(t *testing.T) {
	meta := Metadata()
	if meta.ID != ID {
		t.Errorf("id = %q", meta.ID)
	}
	if meta.Category != provider.CategoryErrorTracking {
		t.Errorf("category = %q, want error-tracking", meta.Category)
	}
	if !meta.SupportsPlatform(provider.PlatformServer) {
		t.Error("server platform missing")
	}
}

func TestFactoryProducesFreshInstances(t *testing.T) {
	factory := Factory(logger.NewWriter(&bytes.Buffer{}, "sentry-test"))
	a := factory()
	b := factory()
	if a == b {
		t.Fatal("factory returned the same instance twice")
	}
}
