// Package dispatch implements the provider manager: the single public
// surface for recording analytics events and errors while fanning calls
// out to every active provider of the relevant category.
//
// The manager isolates failures per target. Every fan-out call issues one
// independent operation per active instance; a failing or panicking
// provider is logged and counted, and never cancels, delays, or affects
// sibling operations or the caller. Dispatch methods therefore return
// nothing: from the caller's perspective they always succeed, and failures
// are observable only through logs and metrics.
//
// Calls addressed to providers that are configured but still initializing
// are buffered in the event queue and replayed, in order and exactly once,
// when registration completes.
package dispatch
