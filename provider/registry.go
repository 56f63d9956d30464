package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/analyticskit/errors"
	"github.com/kbukum/analyticskit/logger"
)

// Registration pairs provider metadata with the factory that constructs
// fresh instances.
type Registration struct {
	Metadata Metadata
	Factory  Factory
}

// Registry maps provider identifiers to registrations. Registration happens
// through an explicit startup table (see the providers package), not
// load-time side effects.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
	log     *logger.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Registry{
		entries: make(map[string]Registration),
		log:     log.WithComponent("registry"),
	}
}

// Register upserts a registration under its metadata identifier.
// Re-registering an identifier overwrites the prior entry (last-write-wins)
// and logs a warning; it is never an error.
func (r *Registry) Register(meta Metadata, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[meta.ID]; exists {
		r.log.Warn("overwriting existing provider registration", logger.Fields(
			logger.FieldProvider, meta.ID,
		))
	}
	r.entries[meta.ID] = Registration{Metadata: meta.clone(), Factory: factory}
}

// Get returns the registration for id.
func (r *Registry) Get(id string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[id]
	if !ok {
		return Registration{}, false
	}
	reg.Metadata = reg.Metadata.clone()
	return reg, true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Unregister removes the registration for id.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// All returns every registration's metadata, sorted by identifier.
func (r *Registry) All() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(Metadata) bool { return true })
}

// ByCategory returns metadata for every provider in the given category.
func (r *Registry) ByCategory(cat Category) []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(m Metadata) bool { return m.Category == cat })
}

// ByPlatform returns metadata for every provider supporting the target.
func (r *Registry) ByPlatform(p Platform) []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(m Metadata) bool { return m.SupportsPlatform(p) })
}

// collect filters entries into a sorted metadata snapshot. Callers hold at
// least a read lock.
func (r *Registry) collect(keep func(Metadata) bool) []Metadata {
	out := make([]Metadata, 0, len(r.entries))
	for _, reg := range r.entries {
		if keep(reg.Metadata) {
			out = append(out, reg.Metadata.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Create constructs a fresh instance via the stored factory. An unknown
// identifier or a panicking factory is reported as an error; construction
// failures never crash the caller.
func (r *Registry) Create(id string) (p Provider, err error) {
	r.mu.RLock()
	reg, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Unavailable(id).WithDetail("reason", "not registered")
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("provider factory panicked", logger.Fields(
				logger.FieldProvider, id,
				logger.FieldError, fmt.Sprint(rec),
			))
			p = nil
			err = errors.FactoryFailure(id, fmt.Errorf("factory panic: %v", rec))
		}
	}()

	p = reg.Factory()
	if p == nil {
		return nil, errors.FactoryFailure(id, fmt.Errorf("factory returned nil"))
	}
	return p, nil
}
