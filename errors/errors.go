package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type for the orchestration layer.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Provider is the provider identifier the error relates to, if any.
	Provider string `json:"provider,omitempty"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	switch {
	case e.Provider != "" && e.Cause != nil:
		return fmt.Sprintf("%s: provider %q: %s (cause: %v)", e.Code, e.Provider, e.Message, e.Cause)
	case e.Provider != "":
		return fmt.Sprintf("%s: provider %q: %s", e.Code, e.Provider, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Common Error Constructors ---

// NotInitialized reports a call made before Initialize completed.
func NotInitialized(provider string) *AppError {
	return &AppError{
		Code: ErrCodeNotInitialized, Provider: provider,
		Message: "provider is not initialized",
	}
}

// Disabled reports a call made while the provider is disabled by consent.
func Disabled(provider string) *AppError {
	return &AppError{
		Code: ErrCodeDisabled, Provider: provider,
		Message: "provider is disabled",
	}
}

// Paused reports a call made while the provider is paused.
func Paused(provider string) *AppError {
	return &AppError{
		Code: ErrCodePaused, Provider: provider,
		Message: "provider is paused",
	}
}

// ShutDown reports a call made after Shutdown.
func ShutDown(provider string) *AppError {
	return &AppError{
		Code: ErrCodeShutDown, Provider: provider,
		Message: "provider has been shut down",
	}
}

// InvalidState reports an illegal lifecycle transition.
func InvalidState(provider, from, to string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidState, Provider: provider,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
		Details: map[string]any{"from": from, "to": to},
	}
}

// Unavailable reports an unknown or unconstructible provider identifier.
func Unavailable(provider string) *AppError {
	return &AppError{
		Code: ErrCodeUnavailable, Provider: provider,
		Message: "provider is not available",
	}
}

// FactoryFailure reports a factory that returned an error or panicked.
func FactoryFailure(provider string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeFactoryFailure, Provider: provider,
		Message: "provider construction failed",
		Cause:   cause,
	}
}

// InitFailure reports provider-specific setup that failed.
func InitFailure(provider string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeInitFailure, Provider: provider,
		Message: "provider initialization failed",
		Cause:   cause,
	}
}

// DispatchFailure reports one target's failure during a fan-out call.
func DispatchFailure(provider, operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDispatchFailure, Provider: provider,
		Message: fmt.Sprintf("dispatch %s failed", operation),
		Details: map[string]any{"operation": operation},
		Cause:   cause,
	}
}

// ConsentFailure reports a provider that rejected a consent update.
func ConsentFailure(provider string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConsentFailure, Provider: provider,
		Message: "consent update failed",
		Cause:   cause,
	}
}

// --- Inspection helpers ---

// CodeOf returns the ErrorCode of err if it is (or wraps) an AppError.
func CodeOf(err error) (ErrorCode, bool) {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Code, true
	}
	return "", false
}

// IsNotReady reports whether err is a lifecycle guard error: the provider
// was called outside its ready state.
func IsNotReady(err error) bool {
	code, ok := CodeOf(err)
	return ok && IsNotReadyCode(code)
}
