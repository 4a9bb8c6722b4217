// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"os"
	"sync/atomic"
)

var (
	// ErrAlreadyReaped is returned when a handle is waited on a second time.
	ErrAlreadyReaped = errors.New("stage already reaped")
	// ErrNoProcess is returned for a handle that has neither a process nor a final status,
	// such as the zero value.
	ErrNoProcess = errors.New("stage has no process")
)

// Handle is one stage of a running pipeline.
// A stage that never executed its program has no process and carries its final status.
type Handle struct {
	Stage   int      // position in the pipeline, starting at 0
	Args    []string // argument vector of the stage
	process *os.Process
	preset  *Status
	reaped  atomic.Bool
}

func startedHandle(stage int, args []string, ps *os.Process) *Handle {
	return &Handle{Stage: stage, Args: args, process: ps}
}

func failedHandle(stage int, args []string, code int) *Handle {
	st := Failed(code)
	return &Handle{Stage: stage, Args: args, preset: &st}
}

// Pid returns the process id of the stage, or 0 if no process was started.
func (h *Handle) Pid() int {
	if h.process == nil {
		return 0
	}

	return h.process.Pid
}

// Started reports whether a process exists for the stage.
func (h *Handle) Started() bool {
	return h.process != nil
}

// wait blocks until the stage has terminated and releases its process table entry.
// It may be called once.
func (h *Handle) wait() (Status, error) {
	if h.reaped.Swap(true) {
		return Status{}, ErrAlreadyReaped
	}

	if h.process == nil {
		if h.preset == nil {
			return Status{}, ErrNoProcess
		}

		return *h.preset, nil
	}

	state, err := h.process.Wait()
	if err != nil {
		return Status{}, err
	}

	return statusFromState(state), nil
}
