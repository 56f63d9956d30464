// Package queue buffers dispatch calls issued before their target provider
// finishes startup.
//
// Providers load vendor SDKs over the network, so application code can
// issue calls during an arbitrarily long initialization window. Each target
// gets its own bounded FIFO: events past the cap evict the oldest entry,
// and Drain atomically hands back everything queued for a target, in order,
// exactly once. The queue is strictly a pre-ready buffer; failed dispatches
// are never re-queued.
package queue
