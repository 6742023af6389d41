package typewriter

import "testing"

func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		allowed  bool
	}{
		{StateIdle, StateRevealing, true},
		{StateIdle, StateCompleted, false},
		{StateIdle, StateSuspended, false},
		{StateRevealing, StateRevealing, true},
		{StateRevealing, StateSuspended, true},
		{StateRevealing, StateCompleted, true},
		{StateRevealing, StateCursorBlinking, false},
		{StateCompleted, StateCursorBlinking, true},
		{StateCompleted, StateSuspended, false},
		{StateCursorBlinking, StateSuspended, true},
		{StateCursorBlinking, StateCompleted, false},
		{StateSuspended, StateRevealing, true},
		{StateSuspended, StateCursorBlinking, true},
		{StateSuspended, StateCompleted, false},
		{StateSuspended, StateIdle, true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			sm := newStateMachine()
			sm.current = tt.from
			if got := sm.transition(tt.to); got != tt.allowed {
				t.Fatalf("transition = %v, want %v", got, tt.allowed)
			}
			want := tt.from
			if tt.allowed {
				want = tt.to
			}
			if sm.current != want {
				t.Errorf("current = %s, want %s", sm.current, want)
			}
		})
	}
}

func TestStateMachineReportsChanges(t *testing.T) {
	sm := newStateMachine()
	var changes []string
	sm.onChange = func(from, to State) { changes = append(changes, from.String()+">"+to.String()) }

	sm.transition(StateRevealing)
	sm.transition(StateRevealing)
	sm.transition(StateCompleted)
	sm.transition(StateSuspended)

	if len(changes) != 2 || changes[0] != "idle>revealing" || changes[1] != "revealing>completed" {
		t.Errorf("unexpected changes %v", changes)
	}
}

func TestStateString(t *testing.T) {
	if StateCursorBlinking.String() != "cursor-blinking" {
		t.Errorf("got %q", StateCursorBlinking.String())
	}
	if State(42).String() != "unknown" {
		t.Errorf("got %q", State(42).String())
	}
}
