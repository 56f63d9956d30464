package provider

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/analyticskit/consent"
	"github.com/kbukum/analyticskit/errors"
	"github.com/kbukum/analyticskit/logger"
)

// maxBreadcrumbs bounds the breadcrumb ring; the oldest entry is dropped
// past this.
const maxBreadcrumbs = 100

// Base is the embeddable lifecycle core shared by every adapter. It owns
// the state machine, the readiness guard, and the accumulated session
// state; adapter-specific behavior plugs in through hook functions.
type Base struct {
	mu   sync.Mutex
	meta Metadata
	log  *logger.Logger

	state       State
	initialized bool
	enabled     bool
	debug       bool
	config      map[string]any
	consent     consent.Settings

	setup     func(ctx context.Context, cfg map[string]any) error
	teardown  func(ctx context.Context) error
	onReset   func()
	onConsent func(settings consent.Settings) error

	superProps  map[string]any
	tags        map[string]string
	breadcrumbs []Breadcrumb
	timers      map[string]time.Time
}

// NewBase creates a Base for the given metadata.
func NewBase(meta Metadata, log *logger.Logger) *Base {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Base{
		meta:       meta,
		log:        log.WithProvider(meta.ID),
		state:      StateUninitialized,
		superProps: make(map[string]any),
		tags:       make(map[string]string),
		timers:     make(map[string]time.Time),
	}
}

// WithSetup sets the adapter's setup hook, run during Initialize.
func (b *Base) WithSetup(fn func(ctx context.Context, cfg map[string]any) error) *Base {
	b.setup = fn
	return b
}

// WithTeardown sets the adapter's teardown hook, run during Shutdown.
func (b *Base) WithTeardown(fn func(ctx context.Context) error) *Base {
	b.teardown = fn
	return b
}

// WithResetHook sets a hook run after Reset clears the session state.
func (b *Base) WithResetHook(fn func()) *Base {
	b.onReset = fn
	return b
}

// WithConsentHook sets a hook run when consent settings are delivered.
func (b *Base) WithConsentHook(fn func(settings consent.Settings) error) *Base {
	b.onConsent = fn
	return b
}

// Metadata returns the provider's metadata.
func (b *Base) Metadata() Metadata { return b.meta.clone() }

// State returns the current lifecycle state.
func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Initialize runs the setup hook and transitions to ready. Calling it on an
// already-initialized provider is a logged no-op. A failing setup reverts
// to uninitialized and returns the error; the manager treats that as
// "provider unavailable", not fatal.
func (b *Base) Initialize(ctx context.Context, cfg map[string]any) error {
	b.mu.Lock()
	if b.state == StateShutDown {
		b.mu.Unlock()
		return errors.ShutDown(b.meta.ID)
	}
	if b.initialized {
		b.mu.Unlock()
		b.log.Debug("already initialized, ignoring")
		return nil
	}
	b.state = StateInitializing
	b.config = cfg
	b.mu.Unlock()

	// Setup runs unlocked: it may await network I/O to fetch or connect
	// the vendor SDK.
	if b.setup != nil {
		if err := b.setup(ctx, cfg); err != nil {
			b.mu.Lock()
			b.state = StateUninitialized
			b.config = nil
			b.mu.Unlock()
			return errors.InitFailure(b.meta.ID, err)
		}
	}

	b.mu.Lock()
	b.state = StateReady
	b.initialized = true
	b.enabled = true
	b.mu.Unlock()

	b.log.Info("provider initialized", logger.Fields(
		logger.FieldCategory, string(b.meta.Category),
	))
	return nil
}

// Shutdown runs the teardown hook, discards all accumulated state, and
// enters the terminal shut-down state. A no-op if never initialized.
func (b *Base) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	if !b.initialized || b.state == StateShutDown {
		b.state = StateShutDown
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	var err error
	if b.teardown != nil {
		err = b.teardown(ctx)
	}

	b.mu.Lock()
	b.state = StateShutDown
	b.initialized = false
	b.enabled = false
	b.config = nil
	b.clearSessionLocked()
	b.mu.Unlock()

	if err != nil {
		return errors.New(errors.ErrCodeInvalidState, "teardown failed").WithCause(err)
	}
	b.log.Info("provider shut down")
	return nil
}

// Pause suspends dispatch without discarding configuration.
func (b *Base) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateReady {
		return errors.InvalidState(b.meta.ID, b.state.String(), StatePaused.String())
	}
	b.state = StatePaused
	return nil
}

// Resume returns a paused provider to ready.
func (b *Base) Resume() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StatePaused {
		return errors.InvalidState(b.meta.ID, b.state.String(), StateReady.String())
	}
	b.state = StateReady
	return nil
}

// SetEnabled toggles ready ⇄ disabled. Driven by consent propagation only.
func (b *Base) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.state == StateShutDown {
		return
	}
	b.enabled = enabled
	if enabled {
		if b.state == StateDisabled {
			b.state = StateReady
		}
	} else {
		if b.state == StateReady || b.state == StatePaused {
			b.state = StateDisabled
		}
	}
}

// SetDebugMode toggles verbose logging. Does not affect lifecycle state.
func (b *Base) SetDebugMode(debug bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.debug = debug
}

// DebugMode reports whether debug logging is on.
func (b *Base) DebugMode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.debug
}

// UpdateConsent records the delivered settings and runs the consent hook.
func (b *Base) UpdateConsent(settings consent.Settings) error {
	b.mu.Lock()
	b.consent = settings
	hook := b.onConsent
	b.mu.Unlock()

	if hook != nil {
		if err := hook(settings); err != nil {
			return errors.ConsentFailure(b.meta.ID, err)
		}
	}
	return nil
}

// Consent returns the most recently delivered settings.
func (b *Base) Consent() consent.Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consent
}

// IsReady is the single predicate dispatch code checks before delivering a
// call: ready state, initialized, and enabled.
func (b *Base) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == StateReady && b.initialized && b.enabled
}

// EnsureReady fails fast with an error naming the failed precondition when
// the provider cannot accept calls. Adapters call it at the top of every
// public method; a call outside ready is never silently swallowed.
func (b *Base) EnsureReady() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.state == StateShutDown:
		return errors.ShutDown(b.meta.ID)
	case !b.initialized:
		return errors.NotInitialized(b.meta.ID)
	case b.state == StateDisabled || !b.enabled:
		return errors.Disabled(b.meta.ID)
	case b.state == StatePaused:
		return errors.Paused(b.meta.ID)
	case b.state != StateReady:
		return errors.NotInitialized(b.meta.ID)
	}
	return nil
}

// Reset clears only the accumulated session state, staying ready.
func (b *Base) Reset() {
	b.mu.Lock()
	b.clearSessionLocked()
	hook := b.onReset
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
	b.log.Debug("session state reset")
}

// clearSessionLocked wipes super properties, tags, breadcrumbs and timers.
// Callers hold b.mu.
func (b *Base) clearSessionLocked() {
	b.superProps = make(map[string]any)
	b.tags = make(map[string]string)
	b.breadcrumbs = nil
	b.timers = make(map[string]time.Time)
}

// Config returns the configuration the provider was initialized with.
func (b *Base) Config() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.config
}

// --- accumulated session state ---

// SetSuperProperty records a property merged into every event.
func (b *Base) SetSuperProperty(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.superProps[key] = value
}

// SuperProperties returns a copy of the current super properties.
func (b *Base) SuperProperties() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]any, len(b.superProps))
	for k, v := range b.superProps {
		out[k] = v
	}
	return out
}

// SetTag records a provider-local tag.
func (b *Base) SetTag(key, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tags[key] = value
}

// Tags returns a copy of the current tags.
func (b *Base) Tags() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string, len(b.tags))
	for k, v := range b.tags {
		out[k] = v
	}
	return out
}

// RecordBreadcrumb appends to the bounded breadcrumb ring.
func (b *Base) RecordBreadcrumb(crumb Breadcrumb) {
	if crumb.Timestamp.IsZero() {
		crumb.Timestamp = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.breadcrumbs) >= maxBreadcrumbs {
		b.breadcrumbs = b.breadcrumbs[1:]
	}
	b.breadcrumbs = append(b.breadcrumbs, crumb)
}

// Breadcrumbs returns a copy of the recorded breadcrumb trail.
func (b *Base) Breadcrumbs() []Breadcrumb {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Breadcrumb, len(b.breadcrumbs))
	copy(out, b.breadcrumbs)
	return out
}

// StartTimedEvent marks the start of a duration-tracked event.
func (b *Base) StartTimedEvent(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timers[name] = time.Now()
}

// EndTimedEvent returns the elapsed time since StartTimedEvent and clears
// the timer. The second return is false if the timer was never started.
func (b *Base) EndTimedEvent(name string) (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	start, ok := b.timers[name]
	if !ok {
		return 0, false
	}
	delete(b.timers, name)
	return time.Since(start), true
}

// Logger returns the provider-tagged logger for adapter use.
func (b *Base) Logger() *logger.Logger { return b.log }
