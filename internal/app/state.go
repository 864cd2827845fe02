package app

import "github.com/bft-labs/entryship/internal/domain"

// State represents the lifecycle state of a pipeline.
type State int

const (
	// StateAccepting means Post and PostingComplete may be called.
	StateAccepting State = iota

	// StateDraining means a batch write is in flight.
	StateDraining

	// StateLocked means posting is over until Reset.
	StateLocked
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateAccepting:
		return "Accepting"
	case StateDraining:
		return "Draining"
	case StateLocked:
		return "Locked"
	default:
		return "Unknown"
	}
}

// validateTransition reports whether a pipeline in state from may move to
// state to. Reset is not a transition; it forces StateAccepting.
func validateTransition(from, to State) error {
	switch from {
	case StateAccepting:
		if to != StateDraining && to != StateLocked {
			return domain.ErrInvalidTransition
		}
	case StateDraining:
		if to == StateDraining {
			return domain.ErrDraining
		}
		if to != StateAccepting && to != StateLocked {
			return domain.ErrInvalidTransition
		}
	case StateLocked:
		return domain.ErrPostingLocked
	default:
		return domain.ErrInvalidTransition
	}
	return nil
}
