package provider

import (
	"context"
	"time"

	"github.com/kbukum/analyticskit/consent"
)

// Provider is the lifecycle contract every integration adapter satisfies.
type Provider interface {
	// Metadata returns the provider's registered metadata.
	Metadata() Metadata
	// Initialize transitions uninitialized → initializing → ready, running
	// the adapter's setup (which may perform network I/O). Re-invoking on
	// an initialized provider is a logged no-op.
	Initialize(ctx context.Context, cfg map[string]any) error
	// Shutdown tears the provider down and discards all accumulated
	// provider-local state. Terminal; a no-op if never initialized.
	Shutdown(ctx context.Context) error
	// UpdateConsent delivers the current consent settings to the adapter.
	UpdateConsent(settings consent.Settings) error
	// IsReady reports whether the provider may accept calls: ready state,
	// initialized, and enabled.
	IsReady() bool
	// SetEnabled toggles ready ⇄ disabled. Invoked by consent propagation,
	// never directly by application code.
	SetEnabled(enabled bool)
	// SetDebugMode toggles verbose adapter logging. Orthogonal to
	// lifecycle state.
	SetDebugMode(debug bool)
	// Pause suspends dispatch without discarding configuration.
	Pause() error
	// Resume returns a paused provider to ready.
	Resume() error
	// Reset clears accumulated session state without leaving ready.
	Reset()
	// State returns the current lifecycle state.
	State() State
}

// Factory constructs a fresh, uninitialized Provider instance.
type Factory func() Provider

// AnalyticsProvider is the call surface of analytics-category adapters.
type AnalyticsProvider interface {
	Provider
	Track(ctx context.Context, name string, props map[string]any) error
	IdentifyUser(ctx context.Context, userID string, traits map[string]any) error
	SetUserProperties(ctx context.Context, props map[string]any) error
	LogRevenue(ctx context.Context, rev Revenue) error
	LogScreenView(ctx context.Context, name string, props map[string]any) error
}

// ErrorProvider is the call surface of error-tracking adapters.
type ErrorProvider interface {
	Provider
	LogError(ctx context.Context, err error, errCtx map[string]any) error
	SetUserContext(ctx context.Context, user User) error
}

// Revenue describes a purchase or revenue event.
type Revenue struct {
	Amount   float64
	Currency string
	Product  string
	Props    map[string]any
}

// User identifies the current user for error-tracking context.
type User struct {
	ID     string
	Email  string
	Traits map[string]any
}

// Breadcrumb is a trail entry recorded ahead of a potential error report.
type Breadcrumb struct {
	Category  string
	Message   string
	Level     string
	Timestamp time.Time
	Data      map[string]any
}
