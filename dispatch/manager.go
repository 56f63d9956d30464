package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kbukum/analyticskit/consent"
	"github.com/kbukum/analyticskit/errors"
	"github.com/kbukum/analyticskit/logger"
	"github.com/kbukum/analyticskit/observability"
	"github.com/kbukum/analyticskit/provider"
	"github.com/kbukum/analyticskit/queue"
)

// Manager orchestrates every registered provider instance: it constructs
// them through the registry, drives their lifecycle, buffers calls for
// providers that are still starting up, and fans dispatch calls out to all
// active instances of the relevant category.
type Manager struct {
	mu       sync.RWMutex
	registry *provider.Registry
	events   *queue.Queue
	consent  *consent.Store
	log      *logger.Logger
	metrics  *observability.Metrics

	instances map[string]*Instance
	// expected holds configured identifiers whose registration has not
	// completed; dispatch calls addressed to them are buffered.
	expected map[string]provider.Category

	regMu    sync.Mutex
	regLocks map[string]*sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics attaches observability instruments to the manager.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// NewManager creates a Manager from its explicit dependencies.
func NewManager(registry *provider.Registry, events *queue.Queue, store *consent.Store, log *logger.Logger, opts ...Option) *Manager {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if store == nil {
		store = consent.NewStore(consent.Settings{})
	}
	if events == nil {
		events = queue.New(queue.DefaultMaxPerTarget, log)
	}
	m := &Manager{
		registry:  registry,
		events:    events,
		consent:   store,
		log:       log.WithComponent("manager"),
		instances: make(map[string]*Instance),
		expected:  make(map[string]provider.Category),
		regLocks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// lockFor returns the per-identifier registration lock, creating it on
// first use. Serializing registration per id keeps two concurrent
// RegisterProvider calls for the same identifier from racing past the
// "not yet present" check.
func (m *Manager) lockFor(id string) *sync.Mutex {
	m.regMu.Lock()
	defer m.regMu.Unlock()
	lock, ok := m.regLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.regLocks[id] = lock
	}
	return lock
}

// RegisterProvider constructs the identified provider, initializes it with
// cfg, installs it as a live instance, and replays any buffered events
// addressed to it, in enqueue order, before returning. Construction or
// initialization failures log the identifier as unavailable and install
// nothing; the returned error exists for wiring code, never for dispatch
// callers.
func (m *Manager) RegisterProvider(ctx context.Context, id string, cfg map[string]any) error {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	_, exists := m.instances[id]
	m.mu.RUnlock()
	if exists {
		m.log.Debug("provider already registered", logger.Fields(logger.FieldProvider, id))
		return nil
	}

	reg, ok := m.registry.Get(id)
	if !ok {
		m.forget(id)
		m.log.Warn("provider unavailable", logger.Fields(
			logger.FieldProvider, id,
			logger.FieldError, "not registered",
		))
		return errors.Unavailable(id)
	}

	// Buffer calls issued while setup is in flight.
	m.mu.Lock()
	m.expected[id] = reg.Metadata.Category
	m.mu.Unlock()

	p, err := m.registry.Create(id)
	if err != nil {
		m.forget(id)
		m.log.Error("provider unavailable", logger.ErrorFields("create", err))
		return err
	}

	// A category mismatch between metadata and the constructed type is a
	// structural defect in the adapter, not a runtime condition.
	if err := checkCategory(p, reg.Metadata.Category); err != nil {
		m.forget(id)
		return err
	}

	if err := p.Initialize(ctx, cfg); err != nil {
		m.forget(id)
		m.log.Error("provider unavailable", logger.ErrorFields("initialize", err))
		return err
	}

	settings := m.consent.Get()
	if err := p.UpdateConsent(settings); err != nil {
		m.log.Warn("initial consent delivery failed", logger.ErrorFields("consent", err))
	}

	state := StateActive
	if !allowsCategory(settings, reg.Metadata.Category) {
		state = StateDisabled
		p.SetEnabled(false)
	}

	inst := &Instance{
		Provider:     p,
		Meta:         reg.Metadata,
		State:        state,
		Config:       cfg,
		consentState: StateActive,
	}

	m.mu.Lock()
	m.instances[id] = inst
	delete(m.expected, id)
	m.mu.Unlock()

	m.log.Info("provider registered", logger.Fields(
		logger.FieldProvider, id,
		logger.FieldCategory, string(reg.Metadata.Category),
		logger.FieldState, state.String(),
	))

	m.replayQueued(ctx, inst)
	return nil
}

// UnregisterProvider shuts the identified instance down and removes it,
// along with anything still buffered for it.
func (m *Manager) UnregisterProvider(ctx context.Context, id string) error {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	inst, ok := m.instances[id]
	delete(m.instances, id)
	delete(m.expected, id)
	m.mu.Unlock()

	m.events.Clear(id)
	if !ok {
		return errors.Unavailable(id)
	}

	if err := inst.Provider.Shutdown(ctx); err != nil {
		m.log.Error("provider shutdown failed", logger.ErrorFields("shutdown", err))
		return err
	}
	m.log.Info("provider unregistered", logger.Fields(logger.FieldProvider, id))
	return nil
}

// ActivateFromConfig registers every configured provider in order. All
// configured identifiers are marked expected up front, so calls issued
// before (or during) their registration are buffered rather than lost.
// Per-provider failures are logged and skipped; the rest still activate.
func (m *Manager) ActivateFromConfig(ctx context.Context, plan Plan) {
	m.mu.Lock()
	for _, act := range plan.Analytics {
		if _, ok := m.instances[act.ID]; !ok {
			m.expected[act.ID] = provider.CategoryAnalytics
		}
	}
	for _, act := range plan.ErrorTracking {
		if _, ok := m.instances[act.ID]; !ok {
			m.expected[act.ID] = provider.CategoryErrorTracking
		}
	}
	m.mu.Unlock()

	for _, act := range append(append([]Activation{}, plan.Analytics...), plan.ErrorTracking...) {
		if err := m.RegisterProvider(ctx, act.ID, act.Config); err != nil {
			m.log.Warn("skipping unavailable provider", logger.Fields(
				logger.FieldProvider, act.ID,
				logger.FieldError, err.Error(),
			))
		}
	}
}

// Shutdown shuts down every instance. A failing or hanging teardown never
// skips the remaining instances; accumulated errors are returned after all
// instances have been attempted.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	instances := m.instances
	m.instances = make(map[string]*Instance)
	m.expected = make(map[string]provider.Category)
	m.mu.Unlock()

	ids := make([]string, 0, len(instances))
	for id := range instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []error
	for _, id := range ids {
		inst := instances[id]
		if err := m.shutdownInstance(ctx, inst); err != nil {
			errs = append(errs, err)
		}
		m.events.Clear(id)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	m.log.Info("all providers shut down")
	return nil
}

func (m *Manager) shutdownInstance(ctx context.Context, inst *Instance) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("provider %q shutdown panic: %v", inst.Meta.ID, rec)
			m.log.Error("provider panicked during shutdown", logger.Fields(
				logger.FieldProvider, inst.Meta.ID,
				logger.FieldError, fmt.Sprint(rec),
			))
		}
	}()
	if err := inst.Provider.Shutdown(ctx); err != nil {
		m.log.Error("provider shutdown failed", logger.ErrorFields("shutdown", err))
		return fmt.Errorf("provider %q: %w", inst.Meta.ID, err)
	}
	return nil
}

// --- dispatch surface ---

// TrackEvent records an analytics event on every active analytics
// provider.
func (m *Manager) TrackEvent(ctx context.Context, name string, props map[string]any) {
	m.fanOut(ctx, provider.CategoryAnalytics, "track", queue.KindTrack,
		map[string]any{"name": name, "props": props},
		func(ctx context.Context, p provider.Provider) error {
			return p.(provider.AnalyticsProvider).Track(ctx, name, props)
		})
}

// IdentifyUser associates the session with a user on every active
// analytics provider.
func (m *Manager) IdentifyUser(ctx context.Context, userID string, traits map[string]any) {
	m.fanOut(ctx, provider.CategoryAnalytics, "identify", queue.KindIdentify,
		map[string]any{"user_id": userID, "traits": traits},
		func(ctx context.Context, p provider.Provider) error {
			return p.(provider.AnalyticsProvider).IdentifyUser(ctx, userID, traits)
		})
}

// SetUserProperties updates user properties on every active analytics
// provider. Not buffered for pending providers: user properties are
// point-in-time state, not an event stream.
func (m *Manager) SetUserProperties(ctx context.Context, props map[string]any) {
	m.fanOut(ctx, provider.CategoryAnalytics, "user_properties", "",
		nil,
		func(ctx context.Context, p provider.Provider) error {
			return p.(provider.AnalyticsProvider).SetUserProperties(ctx, props)
		})
}

// LogRevenue records a revenue event on every active analytics provider.
func (m *Manager) LogRevenue(ctx context.Context, rev provider.Revenue) {
	m.fanOut(ctx, provider.CategoryAnalytics, "revenue", queue.KindRevenue,
		map[string]any{"revenue": rev},
		func(ctx context.Context, p provider.Provider) error {
			return p.(provider.AnalyticsProvider).LogRevenue(ctx, rev)
		})
}

// LogScreenView records a screen view on every active analytics provider.
func (m *Manager) LogScreenView(ctx context.Context, name string, props map[string]any) {
	m.fanOut(ctx, provider.CategoryAnalytics, "screen", queue.KindScreen,
		map[string]any{"name": name, "props": props},
		func(ctx context.Context, p provider.Provider) error {
			return p.(provider.AnalyticsProvider).LogScreenView(ctx, name, props)
		})
}

// LogError reports an error on every active error-tracking provider.
func (m *Manager) LogError(ctx context.Context, err error, errCtx map[string]any) {
	m.fanOut(ctx, provider.CategoryErrorTracking, "error", queue.KindError,
		map[string]any{"error": err, "context": errCtx},
		func(ctx context.Context, p provider.Provider) error {
			return p.(provider.ErrorProvider).LogError(ctx, err, errCtx)
		})
}

// SetUserContext attaches user context on every active error-tracking
// provider.
func (m *Manager) SetUserContext(ctx context.Context, user provider.User) {
	m.fanOut(ctx, provider.CategoryErrorTracking, "user_context", "",
		nil,
		func(ctx context.Context, p provider.Provider) error {
			return p.(provider.ErrorProvider).SetUserContext(ctx, user)
		})
}

// LeaveBreadcrumb records a breadcrumb on every active error-tracking
// provider that supports breadcrumb trails.
func (m *Manager) LeaveBreadcrumb(ctx context.Context, crumb provider.Breadcrumb) {
	m.fanOut(ctx, provider.CategoryErrorTracking, "breadcrumb", "",
		nil,
		func(ctx context.Context, p provider.Provider) error {
			bc, ok := p.(provider.BreadcrumbCapable)
			if !ok {
				return nil
			}
			return bc.AddBreadcrumb(ctx, crumb)
		})
}

// Reset clears accumulated session state on every instance. Per-instance
// failures are logged and never abort the remaining instances.
func (m *Manager) Reset(ctx context.Context) {
	for _, inst := range m.snapshot() {
		func(inst *Instance) {
			defer func() {
				if rec := recover(); rec != nil {
					m.log.Error("provider panicked during reset", logger.Fields(
						logger.FieldProvider, inst.Meta.ID,
						logger.FieldError, fmt.Sprint(rec),
					))
				}
			}()
			inst.Provider.Reset()
		}(inst)
	}
}

// UpdateConsent merges the delta into the consent store, broadcasts the
// effective settings to every registered instance regardless of category,
// and then recomputes each instance's dispatch eligibility. The broadcast
// reaches every instance before this call returns; per-instance failures
// never block propagation to the rest.
func (m *Manager) UpdateConsent(ctx context.Context, delta consent.Settings) {
	effective := m.consent.Update(delta)

	for _, inst := range m.snapshot() {
		m.broadcastConsent(ctx, inst, effective)
	}

	m.mu.Lock()
	if delta.Analytics != nil {
		m.applyConsentLocked(provider.CategoryAnalytics, *delta.Analytics)
	}
	if delta.ErrorTracking != nil {
		m.applyConsentLocked(provider.CategoryErrorTracking, *delta.ErrorTracking)
	}
	m.mu.Unlock()
}

func (m *Manager) broadcastConsent(ctx context.Context, inst *Instance, settings consent.Settings) {
	id := inst.Meta.ID
	defer func() {
		if rec := recover(); rec != nil {
			m.metrics.RecordConsentUpdate(ctx, id, "panic")
			m.log.Error("provider panicked during consent update", logger.Fields(
				logger.FieldProvider, id,
				logger.FieldError, fmt.Sprint(rec),
			))
		}
	}()
	if err := inst.Provider.UpdateConsent(settings); err != nil {
		m.metrics.RecordConsentUpdate(ctx, id, "error")
		m.log.Error("consent update rejected", logger.ErrorFields("consent", err))
		return
	}
	m.metrics.RecordConsentUpdate(ctx, id, "ok")
}

// applyConsentLocked forces instances of cat to disabled or restores the
// state they held before the denial. Instances of other categories are
// left untouched. Callers hold m.mu.
func (m *Manager) applyConsentLocked(cat provider.Category, allowed bool) {
	for _, inst := range m.instances {
		if inst.Meta.Category != cat {
			continue
		}
		if allowed {
			if inst.State != StateDisabled {
				continue
			}
			inst.State = inst.consentState
			inst.Provider.SetEnabled(true)
		} else {
			if inst.State == StateDisabled {
				continue
			}
			inst.consentState = inst.State
			inst.State = StateDisabled
			inst.Provider.SetEnabled(false)
		}
		m.log.Info("consent changed provider state", logger.Fields(
			logger.FieldProvider, inst.Meta.ID,
			logger.FieldState, inst.State.String(),
		))
	}
}

// PauseProvider suspends dispatch to one active instance.
func (m *Manager) PauseProvider(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	if !ok {
		return errors.Unavailable(id)
	}
	if inst.State != StateActive {
		return errors.InvalidState(id, inst.State.String(), StatePaused.String())
	}
	if err := inst.Provider.Pause(); err != nil {
		return err
	}
	inst.State = StatePaused
	return nil
}

// ResumeProvider returns a paused instance to active.
func (m *Manager) ResumeProvider(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	if !ok {
		return errors.Unavailable(id)
	}
	if inst.State != StatePaused {
		return errors.InvalidState(id, inst.State.String(), StateActive.String())
	}
	if err := inst.Provider.Resume(); err != nil {
		return err
	}
	inst.State = StateActive
	return nil
}

// SetDebugMode toggles debug logging on every instance.
func (m *Manager) SetDebugMode(debug bool) {
	for _, inst := range m.snapshot() {
		inst.Provider.SetDebugMode(debug)
	}
}

// --- queries ---

// ActiveProviders returns the sorted identifiers of active instances in
// the given category.
func (m *Manager) ActiveProviders(cat provider.Category) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.instances))
	for id, inst := range m.instances {
		if inst.Meta.Category == cat && inst.State == StateActive {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// ProviderState returns the manager's state for id.
func (m *Manager) ProviderState(id string) (InstanceState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[id]
	if !ok {
		return 0, false
	}
	return inst.State, true
}

// Providers returns metadata for every installed instance, sorted by id.
func (m *Manager) Providers() []provider.Metadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]provider.Metadata, 0, len(m.instances))
	for _, inst := range m.instances {
		out = append(out, inst.Meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- internals ---

// fanOut delivers one independent operation per active instance of cat.
// Targets run concurrently; the call returns once every sibling has
// settled. kind selects the buffered-event kind for pending providers; an
// empty kind skips buffering.
func (m *Manager) fanOut(ctx context.Context, cat provider.Category, op string, kind queue.Kind, payload map[string]any, call func(context.Context, provider.Provider) error) {
	ctx, span := observability.StartSpan(ctx, "dispatch."+op)
	defer span.End()

	m.mu.RLock()
	targets := make([]*Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		if inst.Meta.Category == cat && inst.State == StateActive {
			targets = append(targets, inst)
		}
	}
	var pending []string
	if kind != "" {
		for id, c := range m.expected {
			if c == cat {
				pending = append(pending, id)
			}
		}
	}
	m.mu.RUnlock()

	sort.Strings(pending)
	for _, target := range pending {
		m.events.Enqueue(target, queue.NewEvent(target, kind, payload))
		m.metrics.RecordEnqueued(ctx, target, 1)
		m.log.Debug("buffered call for pending provider", logger.Fields(
			logger.FieldTarget, target,
			logger.FieldOperation, op,
		))
	}

	var wg sync.WaitGroup
	for _, inst := range targets {
		wg.Add(1)
		go func(inst *Instance) {
			defer wg.Done()
			m.deliver(ctx, inst, op, call)
		}(inst)
	}
	wg.Wait()
}

// deliver runs one target's operation, isolating its failure from
// siblings and from the caller.
func (m *Manager) deliver(ctx context.Context, inst *Instance, op string, call func(context.Context, provider.Provider) error) {
	id := inst.Meta.ID
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			m.metrics.RecordDispatch(ctx, id, op, "panic", time.Since(start))
			m.log.Error("provider panicked during dispatch", logger.Fields(
				logger.FieldProvider, id,
				logger.FieldOperation, op,
				logger.FieldError, fmt.Sprint(rec),
			))
		}
	}()

	if err := call(ctx, inst.Provider); err != nil {
		m.metrics.RecordDispatch(ctx, id, op, "error", time.Since(start))
		m.log.Error("dispatch failed", logger.ErrorFields(op, errors.DispatchFailure(id, op, err)))
		return
	}
	m.metrics.RecordDispatch(ctx, id, op, "ok", time.Since(start))
}

// snapshot returns the current instances without holding the lock during
// provider calls.
func (m *Manager) snapshot() []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Instance, 0, len(m.instances))
	ids := make([]string, 0, len(m.instances))
	for id := range m.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, m.instances[id])
	}
	return out
}

// forget drops an identifier from the expected set after a failed
// registration. Anything buffered for it is discarded; there is no
// provider left to replay against.
func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.expected, id)
	m.mu.Unlock()
	if n := m.events.Size(id); n > 0 {
		m.log.Warn("discarding buffered events for unavailable provider", logger.Fields(
			logger.FieldTarget, id,
			logger.FieldQueueDepth, n,
		))
		m.events.Clear(id)
	}
}

func checkCategory(p provider.Provider, cat provider.Category) error {
	switch cat {
	case provider.CategoryAnalytics:
		if _, ok := p.(provider.AnalyticsProvider); !ok {
			return errors.New(errors.ErrCodeInvalidState,
				"analytics provider does not implement the analytics call surface")
		}
	case provider.CategoryErrorTracking:
		if _, ok := p.(provider.ErrorProvider); !ok {
			return errors.New(errors.ErrCodeInvalidState,
				"error-tracking provider does not implement the error call surface")
		}
	}
	return nil
}

func allowsCategory(s consent.Settings, cat provider.Category) bool {
	switch cat {
	case provider.CategoryAnalytics:
		return s.AllowsAnalytics()
	case provider.CategoryErrorTracking:
		return s.AllowsErrorTracking()
	}
	return true
}
