package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNotInitializedIdentifiesPrecondition(t *testing.T) {
	err := NotInitialized("mixpanel")
	if err.Code != ErrCodeNotInitialized {
		t.Errorf("expected NOT_INITIALIZED, got %s", err.Code)
	}
	if !strings.Contains(err.Error(), "mixpanel") {
		t.Errorf("expected provider id in message, got %q", err.Error())
	}
	if !IsNotReady(err) {
		t.Error("NotInitialized must be a not-ready error")
	}
}

func TestDisabledIsNotReady(t *testing.T) {
	if !IsNotReady(Disabled("sentry")) {
		t.Error("Disabled must be a not-ready error")
	}
	if !IsNotReady(Paused("sentry")) {
		t.Error("Paused must be a not-ready error")
	}
	if !IsNotReady(ShutDown("sentry")) {
		t.Error("ShutDown must be a not-ready error")
	}
}

func TestDispatchFailureIsNotNotReady(t *testing.T) {
	err := DispatchFailure("sentry", "track", stderrors.New("boom"))
	if IsNotReady(err) {
		t.Error("dispatch failure is a runtime condition, not a guard violation")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := InitFailure("amplitude", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("register: %w", FactoryFailure("bad", stderrors.New("panic")))
	code, ok := CodeOf(err)
	if !ok {
		t.Fatal("expected CodeOf to find an AppError through wrapping")
	}
	if code != ErrCodeFactoryFailure {
		t.Errorf("expected FACTORY_FAILURE, got %s", code)
	}
}

func TestCodeOfPlainError(t *testing.T) {
	_, ok := CodeOf(stderrors.New("plain"))
	if ok {
		t.Error("expected no code for a plain error")
	}
}

func TestWithDetail(t *testing.T) {
	err := Unavailable("x").WithDetail("reason", "unknown id")
	if err.Details["reason"] != "unknown id" {
		t.Errorf("expected detail set, got %v", err.Details)
	}
}

func TestInvalidStateMessage(t *testing.T) {
	err := InvalidState("p", "shut-down", "ready")
	if !strings.Contains(err.Error(), "shut-down") || !strings.Contains(err.Error(), "ready") {
		t.Errorf("expected both states in message, got %q", err.Error())
	}
}
