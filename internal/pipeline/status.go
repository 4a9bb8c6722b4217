// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"fmt"
	"strconv"
)

// Distinguished exit codes for stages that never ran their program.
const (
	ExitRedirectFailed  = 125 // standard streams could not be redirected
	ExitNotExecutable   = 126 // program found but cannot be executed
	ExitCommandNotFound = 127 // program not found
	// SignalExitBase is added to the signal number of a stage terminated by a signal.
	SignalExitBase = 128
)

// ErrUnknownStatusKind is returned when a status kind name is not recognised.
var ErrUnknownStatusKind = errors.New("unknown status kind")

// StatusKind classifies how a stage ended.
type StatusKind int

const (
	// StatusExited means the program exited normally, with any code.
	StatusExited StatusKind = iota
	// StatusSignaled means the program was terminated by a signal.
	StatusSignaled
	// StatusFailed means the program was never executed.
	StatusFailed
)

var statusKindNames = map[StatusKind]string{
	StatusExited:   "exited",
	StatusSignaled: "signaled",
	StatusFailed:   "failed",
}

func (k StatusKind) String() string {
	if s, ok := statusKindNames[k]; ok {
		return s
	}

	return "StatusKind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (k StatusKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *StatusKind) UnmarshalText(b []byte) error {
	for kind, name := range statusKindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownStatusKind, string(b))
}

// Status is the outcome of one stage.
type Status struct {
	Kind StatusKind `yaml:"kind"`
	// Code is the exit code, 128+signal for StatusSignaled, or one of the Exit* constants for StatusFailed.
	Code int `yaml:"code"`
	// Signal is the name of the terminating signal for StatusSignaled.
	Signal string `yaml:"signal,omitempty"`
}

// Exited returns the status of a program that exited with code.
func Exited(code int) Status {
	return Status{Kind: StatusExited, Code: code}
}

// Failed returns the status of a stage that never executed its program.
func Failed(code int) Status {
	return Status{Kind: StatusFailed, Code: code}
}

// Success reports whether the stage exited normally with code 0.
func (s Status) Success() bool {
	return s.Kind == StatusExited && s.Code == 0
}

func (s Status) String() string {
	switch s.Kind {
	case StatusSignaled:
		return fmt.Sprintf("terminated by %s (exit code %d)", s.Signal, s.Code)
	case StatusFailed:
		return fmt.Sprintf("not executed (exit code %d)", s.Code)
	default:
		return fmt.Sprintf("exit code %d", s.Code)
	}
}
