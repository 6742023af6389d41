package typewriter

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

type fakeSuspender struct {
	suspendErr, resumeErr error
	calls                 []string
}

func (f *fakeSuspender) Suspend() error {
	f.calls = append(f.calls, "suspend")
	return f.suspendErr
}

func (f *fakeSuspender) Resume() error {
	f.calls = append(f.calls, "resume")
	return f.resumeErr
}

func TestLifecycleForwards(t *testing.T) {
	target := &fakeSuspender{}
	l := NewLifecycle(target, log.New(io.Discard))

	if err := l.Hidden(); err != nil {
		t.Fatalf("Hidden: %v", err)
	}
	if err := l.Visible(); err != nil {
		t.Fatalf("Visible: %v", err)
	}
	if len(target.calls) != 2 || target.calls[0] != "suspend" || target.calls[1] != "resume" {
		t.Errorf("unexpected calls %v", target.calls)
	}
}

func TestLifecycleSwallowsInvalidState(t *testing.T) {
	target := &fakeSuspender{
		suspendErr: newError("Suspend", ErrInvalidState, "cannot suspend while completed"),
		resumeErr:  fmt.Errorf("wrapped: %w", ErrInvalidState),
	}
	l := NewLifecycle(target, log.New(io.Discard))

	if err := l.Hidden(); err != nil {
		t.Errorf("Hidden: expected nil, got %v", err)
	}
	if err := l.Visible(); err != nil {
		t.Errorf("Visible: expected nil, got %v", err)
	}
}

func TestLifecycleReturnsOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	l := NewLifecycle(&fakeSuspender{suspendErr: boom}, nil)

	if err := l.Hidden(); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestLifecycleDrivesEngine(t *testing.T) {
	e, sched, sink := newTestEngine(t, testConfig())
	l := NewLifecycle(e, log.New(io.Discard))

	// Before any text both events are no-ops.
	if err := l.Hidden(); err != nil {
		t.Fatalf("Hidden while idle: %v", err)
	}

	_ = e.SetTypedText("abc")
	sched.RunNext()
	if err := l.Hidden(); err != nil {
		t.Fatalf("Hidden: %v", err)
	}
	if err := l.Hidden(); err != nil {
		t.Fatalf("second Hidden: %v", err)
	}
	if err := l.Visible(); err != nil {
		t.Fatalf("Visible: %v", err)
	}
	if err := l.Visible(); err != nil {
		t.Fatalf("second Visible: %v", err)
	}
	for sched.RunNext() {
	}
	if sink.last() != "abc" {
		t.Errorf("expected %q, got %q", "abc", sink.last())
	}
}
