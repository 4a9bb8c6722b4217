// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/matt-FFFFFF/mexec/internal/color"
	"github.com/matt-FFFFFF/mexec/internal/ctxlog"
)

const badFd = ^uintptr(0)

// ErrRedirect is the cause recorded for a stage whose streams could not be redirected.
var ErrRedirect = errors.New("cannot redirect standard streams")

// startProcess forks and executes a program. The child receives attr.Files as
// descriptors 0, 1 and 2; every other descriptor of the parent is close-on-exec.
// It is a variable so tests can simulate fork failure.
var startProcess = os.StartProcess

// startStage makes the stage at position stage run args with stdin and stdout as its
// standard input and output. Redirection is checked before anything is executed.
// A stage that cannot execute its program gets a handle with a failed status and a
// diagnostic on stderr, the same line the child would have printed.
// Only failures to create the process at all are returned as errors.
func (o *Orchestrator) startStage(ctx context.Context, stage int, args []string, stdin, stdout *os.File) (*Handle, error) {
	logger := ctxlog.Logger(ctx).With("stage", stage)

	if len(args) == 0 {
		logger.Debug("empty argument vector")
		return failedHandle(stage, args, ExitCommandNotFound), nil
	}

	if !usable(stdin) || !usable(stdout) {
		o.diagnose(args[0], ErrRedirect)
		return failedHandle(stage, args, ExitRedirectFailed), nil
	}

	path, code, err := lookPath(args[0], o.Dir, o.searchPath())
	if err != nil {
		logger.Debug("program lookup failed", "program", args[0], "error", err)
		o.diagnose(args[0], err)

		return failedHandle(stage, args, code), nil
	}

	logger.Debug("starting process", "path", path, "args", args)

	ps, err := startProcess(path, args, &os.ProcAttr{
		Dir:   o.Dir,
		Env:   o.Env,
		Files: []*os.File{stdin, stdout, o.stderr()},
	})
	if err != nil {
		if code, ok := stageFailureCode(err); ok {
			logger.Debug("exec failed", "path", path, "error", err)
			o.diagnose(args[0], err)

			return failedHandle(stage, args, code), nil
		}

		return nil, err
	}

	logger.Debug("process started", "pid", ps.Pid)

	return startedHandle(stage, args, ps), nil
}

// stageFailureCode maps an exec error to the exit code the child would have reported.
// Errors that are not about the program or its streams are not stage failures.
func stageFailureCode(err error) (int, bool) {
	switch {
	case errors.Is(err, syscall.ENOENT):
		return ExitCommandNotFound, true
	case errors.Is(err, syscall.EACCES),
		errors.Is(err, syscall.EPERM),
		errors.Is(err, syscall.ENOEXEC),
		errors.Is(err, syscall.EISDIR),
		errors.Is(err, syscall.ENOTDIR):
		return ExitNotExecutable, true
	case errors.Is(err, syscall.EBADF):
		return ExitRedirectFailed, true
	}

	return 0, false
}

func usable(f *os.File) bool {
	return f != nil && f.Fd() != badFd
}

// diagnose writes "mexec: <program>: <reason>" to the stage's standard error.
func (o *Orchestrator) diagnose(program string, cause error) {
	msg := fmt.Sprintf("mexec: %s: %s", program, cause)
	fmt.Fprintln(o.stderr(), color.Colorize(msg, color.FgRed)) //nolint:errcheck
}
