package provider

// State is a provider's lifecycle state.
type State int

const (
	// StateUninitialized is the state before Initialize is called, and the
	// state a provider reverts to when setup fails.
	StateUninitialized State = iota
	// StateInitializing covers the adapter's setup window, which may await
	// network I/O to fetch or connect a vendor SDK.
	StateInitializing
	// StateReady is the only state in which calls are accepted.
	StateReady
	// StatePaused is a temporary suppression entered via Pause.
	StatePaused
	// StateDisabled is entered when consent denies the provider's category.
	StateDisabled
	// StateShutDown is terminal.
	StateShutDown
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StatePaused:
		return "paused"
	case StateDisabled:
		return "disabled"
	case StateShutDown:
		return "shut-down"
	default:
		return "unknown"
	}
}
