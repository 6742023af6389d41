package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/typedtext/typewriter/scheduler"
)

// tickMsg fires a scheduled engine callback. The token is checked against
// the live set, so ticks canceled after their command was issued are
// dropped when they arrive.
type tickMsg struct {
	tok scheduler.Token
}

// teaScheduler runs engine callbacks inside Update. Schedule queues a
// tea.Tick; the queued commands are handed to Bubble Tea by flush after
// every Update.
type teaScheduler struct {
	seq    scheduler.Token
	live   map[scheduler.Token]func()
	queued []tea.Cmd
}

var _ scheduler.Scheduler = (*teaScheduler)(nil)

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{live: make(map[scheduler.Token]func())}
}

func (s *teaScheduler) Schedule(delay time.Duration, fn func()) scheduler.Token {
	s.seq++
	tok := s.seq
	s.live[tok] = fn
	s.queued = append(s.queued, tea.Tick(max(delay, 0), func(time.Time) tea.Msg {
		return tickMsg{tok: tok}
	}))
	return tok
}

func (s *teaScheduler) Cancel(tok scheduler.Token) {
	delete(s.live, tok)
}

// fire runs the callback for msg if it is still live.
func (s *teaScheduler) fire(msg tickMsg) bool {
	fn, ok := s.live[msg.tok]
	if !ok {
		return false
	}
	delete(s.live, msg.tok)
	fn()
	return true
}

// pending reports the number of live callbacks.
func (s *teaScheduler) pending() int {
	return len(s.live)
}

// flush returns the commands queued since the last flush.
func (s *teaScheduler) flush() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}

// cancelAll drops every live callback.
func (s *teaScheduler) cancelAll() {
	clear(s.live)
	s.queued = nil
}
