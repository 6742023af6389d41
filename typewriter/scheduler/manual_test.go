package scheduler

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestManualRunsInDueOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.Schedule(30*time.Millisecond, func() { got = append(got, "c") })
	m.Schedule(10*time.Millisecond, func() { got = append(got, "a") })
	m.Schedule(20*time.Millisecond, func() { got = append(got, "b") })
	m.Schedule(10*time.Millisecond, func() { got = append(got, "a2") })

	if ran := m.Advance(25 * time.Millisecond); ran != 3 {
		t.Fatalf("expected 3 callbacks, got %d", ran)
	}
	if diff := cmp.Diff([]string{"a", "a2", "b"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if m.Now() != 25*time.Millisecond {
		t.Errorf("expected clock at 25ms, got %v", m.Now())
	}
	if m.Pending() != 1 {
		t.Errorf("expected 1 pending, got %d", m.Pending())
	}
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	fired := false
	tok := m.Schedule(time.Millisecond, func() { fired = true })
	m.Cancel(tok)
	m.Cancel(tok)
	m.Cancel(0)

	m.Advance(time.Second)
	if fired {
		t.Error("canceled callback fired")
	}
	if m.Pending() != 0 {
		t.Errorf("expected nothing pending, got %d", m.Pending())
	}
}

func TestManualNestedScheduling(t *testing.T) {
	m := NewManual()
	var at []time.Duration
	var tick func()
	tick = func() {
		at = append(at, m.Now())
		if len(at) < 4 {
			m.Schedule(50*time.Millisecond, tick)
		}
	}
	m.Schedule(50*time.Millisecond, tick)

	m.Advance(time.Second)
	want := []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 150 * time.Millisecond, 200 * time.Millisecond}
	if diff := cmp.Diff(want, at); diff != "" {
		t.Errorf("tick times mismatch (-want +got):\n%s", diff)
	}
}

func TestManualRunNext(t *testing.T) {
	m := NewManual()
	if m.RunNext() {
		t.Fatal("RunNext on empty scheduler should report false")
	}
	if _, ok := m.NextDue(); ok {
		t.Fatal("NextDue on empty scheduler should report false")
	}

	m.Schedule(-5*time.Millisecond, func() {})
	m.Schedule(40*time.Millisecond, func() {})
	due, ok := m.NextDue()
	if !ok || due != 0 {
		t.Fatalf("negative delay should be due immediately, got %v %v", due, ok)
	}
	m.RunNext()
	m.RunNext()
	if m.Now() != 40*time.Millisecond {
		t.Errorf("expected clock at 40ms, got %v", m.Now())
	}
}

func TestTokensAreNeverZero(t *testing.T) {
	m := NewManual()
	if tok := m.Schedule(0, func() {}); tok == 0 {
		t.Error("Manual issued the zero token")
	}
	l := NewLoop()
	if tok := l.Schedule(0, func() {}); tok == 0 {
		t.Error("Loop issued the zero token")
	}
}
