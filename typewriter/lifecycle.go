package typewriter

import (
	"errors"

	"github.com/charmbracelet/log"
)

// Lifecycle translates host visibility changes into Suspend and Resume calls.
type Lifecycle struct {
	target Suspender
	logger *log.Logger
}

// NewLifecycle returns a Lifecycle driving target. A nil logger uses the
// default logger.
func NewLifecycle(target Suspender, logger *log.Logger) *Lifecycle {
	if logger == nil {
		logger = log.Default().WithPrefix("lifecycle")
	}
	return &Lifecycle{target: target, logger: logger}
}

// Visible reports that the host is shown again.
func (l *Lifecycle) Visible() error {
	return l.swallow("visible", l.target.Resume())
}

// Hidden reports that the host was hidden or stopped.
func (l *Lifecycle) Hidden() error {
	return l.swallow("hidden", l.target.Suspend())
}

func (l *Lifecycle) swallow(event string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidState) {
		l.logger.Debug("ignoring lifecycle event", "event", event, "err", err)
		return nil
	}
	return err
}
