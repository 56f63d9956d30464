package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kbukum/analyticskit/errors"
	"github.com/kbukum/analyticskit/logger"
)

func TestTrackWritesStructuredLog(t *testing.T) {
	var buf bytes.Buffer
	p := New(logger.NewWriter(&buf, "console-test"))
	if err := p.Initialize(context.Background(), nil); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if err := p.Track(context.Background(), "signup", map[string]any{"plan": "pro"}); err != nil {
		t.Fatalf("Track: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "signup") || !strings.Contains(out, "pro") {
		t.Errorf("log output missing event data: %s", out)
	}
}

func TestGuardBeforeInitialize(t *testing.T) {
	p := New(logger.NewWriter(&bytes.Buffer{}, "console-test"))
	err := p.Track(context.Background(), "early", nil)
	if code, _ := errors.CodeOf(err); code != errors.ErrCodeNotInitialized {
		t.Fatalf("code = %v, want %v", code, errors.ErrCodeNotInitialized)
	}
}

func TestSuperPropertiesAppearInEvents(t *testing.T) {
	var buf bytes.Buffer
	p := New(logger.NewWriter(&buf, "console-test"))
	if err := p.Initialize(context.Background(), nil); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	p.SetSuperProperty("app_version", "2.1.0")

	if err := p.Track(context.Background(), "signup", nil); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if !strings.Contains(buf.String(), "2.1.0") {
		t.Errorf("super property missing from output: %s", buf.String())
	}
}
