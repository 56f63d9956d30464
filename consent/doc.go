// Package consent holds the cross-cutting permission flags gating which
// provider categories may receive dispatched calls.
//
// Settings uses tri-state flags: a nil pointer means "no change" when
// merging an update, so partial updates never clobber flags they do not
// address. The Store resolves merged updates into the current effective
// state consulted by the dispatch manager.
package consent
