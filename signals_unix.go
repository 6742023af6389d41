//go:build !windows

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// jobControlSignals are caught so typing pauses while the process is
// stopped from the shell.
var jobControlSignals = []os.Signal{unix.SIGTSTP, unix.SIGCONT}

func isSuspendSignal(sig os.Signal) bool  { return sig == unix.SIGTSTP }
func isContinueSignal(sig os.Signal) bool { return sig == unix.SIGCONT }

// stopSelf stops the process the way the default SIGTSTP action would.
func stopSelf() error {
	return unix.Kill(unix.Getpid(), unix.SIGSTOP) //nolint:wrapcheck
}
