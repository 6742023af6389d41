package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLoopStopped is returned by Do once the loop is no longer running.
var ErrLoopStopped = errors.New("scheduler loop stopped")

// Loop is a real-time Scheduler backed by a single goroutine. Schedule,
// Cancel, Post and Do are safe to call from any goroutine; callbacks always
// run on the goroutine executing Run, one at a time.
type Loop struct {
	mu     sync.Mutex
	seq    uint64
	timers timerHeap
	live   map[Token]func()
	posted []func()

	wake    chan struct{}
	done    chan struct{}
	started bool
	now     func() time.Time
}

// NewLoop creates a loop. Callbacks run once Run is called.
func NewLoop() *Loop {
	return &Loop{
		live: make(map[Token]func()),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		now:  time.Now,
	}
}

// Schedule implements Scheduler.
func (l *Loop) Schedule(delay time.Duration, fn func()) Token {
	if delay < 0 {
		delay = 0
	}
	l.mu.Lock()
	l.seq++
	tok := Token(l.seq)
	l.live[tok] = fn
	heap.Push(&l.timers, timerEntry{tok: tok, due: l.now().Add(delay)})
	l.mu.Unlock()
	l.notify()
	return tok
}

// Cancel implements Scheduler.
func (l *Loop) Cancel(tok Token) {
	l.mu.Lock()
	delete(l.live, tok)
	l.mu.Unlock()
}

// Post queues fn to run on the loop goroutine as soon as possible.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	l.notify()
}

// Do runs fn on the loop goroutine and waits for it to return. It must not
// be called from a loop callback.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run executes callbacks until ctx is canceled. A Loop can be run once.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return errors.New("scheduler loop already started")
	}
	l.started = true
	l.mu.Unlock()
	defer close(l.done)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		posted, due, wait := l.collect()
		for _, fn := range posted {
			fn()
		}
		for _, tok := range due {
			if fn := l.take(tok); fn != nil {
				fn()
			}
		}
		if len(posted) > 0 || len(due) > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}

		var timerC <-chan time.Time
		if wait >= 0 {
			timer.Reset(wait)
			timerC = timer.C
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-timerC:
		}
	}
}

// collect drains posted work and the tokens that are due, and returns how
// long to wait for the next timer (-1 when none is pending).
func (l *Loop) collect() ([]func(), []Token, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	posted := l.posted
	l.posted = nil

	now := l.now()
	var due []Token
	for l.timers.Len() > 0 {
		next := l.timers[0]
		if _, ok := l.live[next.tok]; !ok {
			heap.Pop(&l.timers)
			continue
		}
		if next.due.After(now) {
			break
		}
		heap.Pop(&l.timers)
		due = append(due, next.tok)
	}

	wait := time.Duration(-1)
	if l.timers.Len() > 0 {
		wait = l.timers[0].due.Sub(now)
	}
	return posted, due, wait
}

// take removes tok and returns its callback if it was not canceled in the
// meantime.
func (l *Loop) take(tok Token) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn, ok := l.live[tok]
	if !ok {
		return nil
	}
	delete(l.live, tok)
	return fn
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

type timerEntry struct {
	tok Token
	due time.Time
}

type timerHeap []timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].tok < h[j].tok
	}
	return h[i].due.Before(h[j].due)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(timerEntry)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
