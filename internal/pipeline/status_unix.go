// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build unix

package pipeline

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// statusFromState classifies a reaped process.
func statusFromState(state *os.ProcessState) Status {
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return Exited(state.ExitCode())
	}

	sig := ws.Signal()

	name := unix.SignalName(sig)
	if name == "" {
		name = sig.String()
	}

	return Status{
		Kind:   StatusSignaled,
		Code:   SignalExitBase + int(sig),
		Signal: name,
	}
}
