// Package provider defines the lifecycle contract every analytics and
// error-tracking integration satisfies, and the registry that maps provider
// identifiers to factories.
//
// Adapters embed Base, which owns the lifecycle state machine
// (uninitialized → initializing → ready ⇄ {paused, disabled} → shut-down)
// and the accumulated session state (super properties, tags, breadcrumbs,
// timed events). Adapter-specific behavior plugs in through hook functions:
//
//	base := provider.NewBase(meta, log).
//	    WithSetup(func(ctx context.Context, cfg map[string]any) error { ... }).
//	    WithTeardown(func(ctx context.Context) error { ... })
//
// Every public adapter method must call EnsureReady first; the returned
// guard error names the precondition that failed instead of silently
// swallowing the call.
//
// Optional abilities (breadcrumbs, transactions) are modeled as narrow
// capability interfaces checked by type assertion, never by probing for
// method presence.
package provider
