// Package errors provides unified error handling for analyticskit.
// It implements structured error types with machine-readable codes covering
// the orchestration layer's failure taxonomy: construction/initialization
// failures, per-provider dispatch failures, lifecycle guard violations, and
// consent propagation failures.
package errors
