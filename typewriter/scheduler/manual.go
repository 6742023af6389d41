package scheduler

import "time"

// Manual is a Scheduler driven by a virtual clock. Nothing runs until the
// clock is advanced with Advance or RunNext, which makes timing fully
// deterministic. Callbacks run on the goroutine advancing the clock.
type Manual struct {
	now   time.Duration
	seq   uint64
	tasks []manualTask
}

type manualTask struct {
	tok Token
	due time.Duration
	fn  func()
}

// NewManual returns a Manual scheduler with its clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

// Schedule implements Scheduler.
func (m *Manual) Schedule(delay time.Duration, fn func()) Token {
	if delay < 0 {
		delay = 0
	}
	m.seq++
	tok := Token(m.seq)
	m.tasks = append(m.tasks, manualTask{tok: tok, due: m.now + delay, fn: fn})
	return tok
}

// Cancel implements Scheduler.
func (m *Manual) Cancel(tok Token) {
	for i, t := range m.tasks {
		if t.tok == tok {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return
		}
	}
}

// Now returns the virtual time elapsed since the scheduler was created.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of callbacks waiting to run.
func (m *Manual) Pending() int {
	return len(m.tasks)
}

// NextDue returns the virtual time at which the next callback is due.
func (m *Manual) NextDue() (time.Duration, bool) {
	i := m.next()
	if i < 0 {
		return 0, false
	}
	return m.tasks[i].due, true
}

// RunNext moves the clock to the earliest pending callback and runs it.
// It reports false when nothing is pending.
func (m *Manual) RunNext() bool {
	i := m.next()
	if i < 0 {
		return false
	}
	t := m.tasks[i]
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	if t.due > m.now {
		m.now = t.due
	}
	t.fn()
	return true
}

// Advance moves the clock forward by d, running every callback that becomes
// due on the way in due order, including callbacks scheduled by earlier ones.
// It returns the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	target := m.now + d
	ran := 0
	for {
		i := m.next()
		if i < 0 || m.tasks[i].due > target {
			break
		}
		m.RunNext()
		ran++
	}
	m.now = target
	return ran
}

// next returns the index of the earliest task; ties go to the one scheduled
// first.
func (m *Manual) next() int {
	best := -1
	for i, t := range m.tasks {
		if best < 0 || t.due < m.tasks[best].due ||
			(t.due == m.tasks[best].due && t.tok < m.tasks[best].tok) {
			best = i
		}
	}
	return best
}
