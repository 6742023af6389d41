package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l, cancel
}

func TestLoopRunsCallbacksInOrder(t *testing.T) {
	l, _ := startLoop(t)
	var (
		mu  sync.Mutex
		got []int
	)
	done := make(chan struct{})
	record := func(n int) func() {
		return func() {
			mu.Lock()
			got = append(got, n)
			mu.Unlock()
			if n == 3 {
				close(done)
			}
		}
	}
	l.Schedule(30*time.Millisecond, record(3))
	l.Schedule(10*time.Millisecond, record(1))
	l.Schedule(20*time.Millisecond, record(2))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callbacks did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoopCancel(t *testing.T) {
	l, _ := startLoop(t)
	fired := make(chan struct{}, 1)
	tok := l.Schedule(20*time.Millisecond, func() { fired <- struct{}{} })
	l.Cancel(tok)

	sentinel := make(chan struct{})
	l.Schedule(60*time.Millisecond, func() { close(sentinel) })
	<-sentinel

	select {
	case <-fired:
		t.Error("canceled callback fired")
	default:
	}
}

func TestLoopCancelFromEarlierCallback(t *testing.T) {
	l, _ := startLoop(t)
	var second Token
	fired := false
	done := make(chan struct{})

	err := l.Do(context.Background(), func() {
		l.Schedule(10*time.Millisecond, func() { l.Cancel(second) })
		second = l.Schedule(10*time.Millisecond, func() { fired = true })
		l.Schedule(40*time.Millisecond, func() { close(done) })
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	<-done

	var sawFired bool
	if err := l.Do(context.Background(), func() { sawFired = fired }); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if sawFired {
		t.Error("callback canceled by an earlier callback in the same batch still ran")
	}
}

func TestLoopDoAfterStop(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do on running loop failed: %v", err)
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled from Run, got %v", err)
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrLoopStopped) {
		t.Errorf("expected ErrLoopStopped, got %v", err)
	}
	if err := l.Run(context.Background()); err == nil {
		t.Error("second Run should fail")
	}
}
