package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTeaSchedulerFiresLiveTokens(t *testing.T) {
	s := newTeaScheduler()

	var ran []string
	a := s.Schedule(0, func() { ran = append(ran, "a") })
	b := s.Schedule(time.Millisecond, func() { ran = append(ran, "b") })
	if a == 0 || b == 0 || a == b {
		t.Fatalf("expected distinct non-zero tokens, got %d and %d", a, b)
	}
	if got := s.pending(); got != 2 {
		t.Fatalf("expected 2 pending, got %d", got)
	}

	s.Cancel(b)
	if !s.fire(tickMsg{tok: a}) {
		t.Error("expected live token to fire")
	}
	if s.fire(tickMsg{tok: b}) {
		t.Error("expected canceled token to be dropped")
	}
	if s.fire(tickMsg{tok: a}) {
		t.Error("expected a token to fire only once")
	}
	if len(ran) != 1 || ran[0] != "a" {
		t.Errorf("unexpected callbacks: %v", ran)
	}
}

func TestTeaSchedulerFlush(t *testing.T) {
	s := newTeaScheduler()
	if cmd := s.flush(); cmd != nil {
		t.Error("expected nil command with nothing queued")
	}

	tok := s.Schedule(0, func() {})
	cmd := s.flush()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(tickMsg)
	if !ok {
		t.Fatalf("expected tickMsg, got %T", cmd())
	}
	if msg.tok != tok {
		t.Errorf("expected token %d, got %d", tok, msg.tok)
	}
	if cmd := s.flush(); cmd != nil {
		t.Error("expected the queue to be empty after flush")
	}
}

func TestTeaSchedulerFlushBatches(t *testing.T) {
	s := newTeaScheduler()
	s.Schedule(0, func() {})
	s.Schedule(0, func() {})

	if _, ok := s.flush()().(tea.BatchMsg); !ok {
		t.Error("expected a batch for several queued ticks")
	}
}

func TestTeaSchedulerCancelAll(t *testing.T) {
	s := newTeaScheduler()
	tok := s.Schedule(0, func() { t.Error("canceled callback ran") })
	s.cancelAll()

	if s.fire(tickMsg{tok: tok}) {
		t.Error("expected no callback after cancelAll")
	}
	if s.pending() != 0 || s.flush() != nil {
		t.Error("expected nothing pending or queued")
	}
}
