package algorithm

// State is the lifecycle state of a Kernel.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateCancelled
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}
