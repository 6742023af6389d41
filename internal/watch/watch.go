// Package watch reports changes to a single file.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// ErrClosed is returned by Next once the watcher is closed.
var ErrClosed = errors.New("watcher closed")

const (
	// settle is how long a change must be quiet before it is reported, so
	// editors that truncate then write produce one reload of the final
	// contents.
	settle = 100 * time.Millisecond
	// minInterval spaces consecutive reports.
	minInterval = 500 * time.Millisecond
)

// Watcher watches one file. The parent directory is watched so that
// editors replacing the file through a rename are noticed.
type Watcher struct {
	fs      *fsnotify.Watcher
	path    string
	limiter *rate.Limiter
	settle  time.Duration
}

// New starts watching path.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
	}
	log.Debug("fsnotify watching dir", "dir", dir, "file", abs)

	return &Watcher{
		fs:      fs,
		path:    abs,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		settle:  settle,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Next blocks until the file was written or replaced.
func (w *Watcher) Next(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return ErrClosed
			}
			if !w.relevant(event) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			if err := w.quiet(ctx); err != nil {
				return err
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return err
			}
			return nil

		case err, ok := <-w.fs.Errors:
			if !ok {
				return ErrClosed
			}
			log.Debug("fsnotify error", "file", w.path, "error", err)
		}
	}
}

// quiet waits until no relevant event arrived for the settle period.
func (w *Watcher) quiet(ctx context.Context) error {
	timer := time.NewTimer(w.settle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return ErrClosed
			}
			if w.relevant(event) {
				timer.Reset(w.settle)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
