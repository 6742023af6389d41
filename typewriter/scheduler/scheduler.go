// Package scheduler provides single-threaded delayed-task execution for the
// typewriter engine. A callback is scheduled after a delay and identified by
// a Token; canceling the token guarantees the callback will not run.
package scheduler

import "time"

// Token identifies a scheduled callback. The zero Token is never issued, so
// it can be used to mean "nothing pending".
type Token uint64

// Scheduler runs callbacks after a delay. Implementations run every callback
// on a single goroutine and never two at the same time.
type Scheduler interface {
	// Schedule arranges for fn to run once after delay. Negative delays are
	// treated as zero.
	Schedule(delay time.Duration, fn func()) Token

	// Cancel prevents the callback for tok from running. Canceling a token
	// that already ran, was already canceled, or is zero is a no-op.
	Cancel(tok Token)
}
