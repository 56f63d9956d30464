package dispatch

import "github.com/kbukum/analyticskit/provider"

// InstanceState is the manager's view of whether an instance should
// receive dispatched calls. It is distinct from the provider's own
// lifecycle flags: the manager's state decides dispatch eligibility, the
// provider's flags decide whether an individual call is accepted.
type InstanceState int

const (
	// StateActive is the only dispatch-eligible state.
	StateActive InstanceState = iota
	// StatePaused is entered via PauseProvider for temporary suppression.
	StatePaused
	// StateDisabled is consent-driven only, never set by application code.
	StateDisabled
)

// String returns the state name.
func (s InstanceState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Instance wraps a live provider owned by the manager.
type Instance struct {
	Provider provider.Provider
	Meta     provider.Metadata
	State    InstanceState
	Config   map[string]any

	// consentState remembers the state an instance held before consent
	// disabled it, so re-granting restores exactly that state.
	consentState InstanceState
}

// Activation names one provider to activate and its opaque configuration,
// passed through to Initialize.
type Activation struct {
	ID     string         `yaml:"id" mapstructure:"id"`
	Config map[string]any `yaml:"config" mapstructure:"config"`
}

// Plan is the startup mapping from category to the ordered providers to
// activate.
type Plan struct {
	Analytics     []Activation `yaml:"analytics" mapstructure:"analytics"`
	ErrorTracking []Activation `yaml:"error_tracking" mapstructure:"error_tracking"`
}
