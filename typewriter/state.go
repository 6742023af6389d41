package typewriter

// State is the phase of the current typing session.
type State int

const (
	// StateIdle means no text has been set, or the engine was closed.
	StateIdle State = iota
	// StateRevealing means characters are being revealed.
	StateRevealing
	// StateSuspended means the host paused the engine.
	StateSuspended
	// StateCompleted means every character is shown and no cursor blinks.
	StateCompleted
	// StateCursorBlinking means every character is shown and the trailing
	// cursor blinks.
	StateCursorBlinking
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRevealing:
		return "revealing"
	case StateSuspended:
		return "suspended"
	case StateCompleted:
		return "completed"
	case StateCursorBlinking:
		return "cursor-blinking"
	default:
		return "unknown"
	}
}

// stateMachine validates state transitions.
type stateMachine struct {
	current     State
	transitions map[State][]State
	onChange    func(from, to State)
}

func newStateMachine() *stateMachine {
	return &stateMachine{
		current: StateIdle,
		transitions: map[State][]State{
			StateIdle:           {StateRevealing},
			StateRevealing:      {StateRevealing, StateSuspended, StateCompleted, StateIdle},
			StateCompleted:      {StateRevealing, StateCursorBlinking, StateIdle},
			StateCursorBlinking: {StateRevealing, StateSuspended, StateIdle},
			StateSuspended:      {StateRevealing, StateCursorBlinking, StateIdle},
		},
	}
}

// transition moves to the given state if the transition table allows it.
func (sm *stateMachine) transition(to State) bool {
	if !sm.can(to) {
		return false
	}

	from := sm.current
	sm.current = to
	if sm.onChange != nil && from != to {
		sm.onChange(from, to)
	}
	return true
}

// can reports whether a transition to the given state is allowed.
func (sm *stateMachine) can(to State) bool {
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			return true
		}
	}
	return false
}
