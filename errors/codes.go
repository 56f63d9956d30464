package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Lifecycle guard errors. These indicate a programming-contract violation:
// a call reached a provider outside its ready state.
const (
	// ErrCodeNotInitialized indicates the provider was never initialized.
	ErrCodeNotInitialized ErrorCode = "NOT_INITIALIZED"
	// ErrCodeDisabled indicates the provider is disabled by consent.
	ErrCodeDisabled ErrorCode = "PROVIDER_DISABLED"
	// ErrCodePaused indicates the provider is temporarily paused.
	ErrCodePaused ErrorCode = "PROVIDER_PAUSED"
	// ErrCodeShutDown indicates the provider has been shut down.
	ErrCodeShutDown ErrorCode = "PROVIDER_SHUT_DOWN"
	// ErrCodeInvalidState indicates an illegal lifecycle transition.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
)

// Orchestration errors. Caught and logged at the manager; never surfaced
// through the dispatch API.
const (
	// ErrCodeUnavailable indicates the provider identifier is unknown or
	// could not be constructed.
	ErrCodeUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	// ErrCodeFactoryFailure indicates the provider factory failed or panicked.
	ErrCodeFactoryFailure ErrorCode = "FACTORY_FAILURE"
	// ErrCodeInitFailure indicates provider-specific setup failed.
	ErrCodeInitFailure ErrorCode = "INIT_FAILURE"
	// ErrCodeDispatchFailure indicates a fan-out operation failed for one target.
	ErrCodeDispatchFailure ErrorCode = "DISPATCH_FAILURE"
	// ErrCodeConsentFailure indicates a provider rejected a consent update.
	ErrCodeConsentFailure ErrorCode = "CONSENT_FAILURE"
)

var notReadyCodes = map[ErrorCode]bool{
	ErrCodeNotInitialized: true,
	ErrCodeDisabled:       true,
	ErrCodePaused:         true,
	ErrCodeShutDown:       true,
}

// IsNotReadyCode returns true if the code identifies a failed readiness
// precondition.
func IsNotReadyCode(code ErrorCode) bool {
	return notReadyCodes[code]
}
