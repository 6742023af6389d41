//go:build windows

package main

import "os"

var jobControlSignals []os.Signal

func isSuspendSignal(os.Signal) bool  { return false }
func isContinueSignal(os.Signal) bool { return false }

func stopSelf() error { return nil }
