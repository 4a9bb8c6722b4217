// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/mexec/internal/argv"
	"github.com/matt-FFFFFF/mexec/internal/ctxlog"
)

var (
	// ErrCreatePipe is returned when a pipe between two stages cannot be created.
	ErrCreatePipe = errors.New("failed to create pipe")
	// ErrStartStage is returned when the process for a stage cannot be created.
	ErrStartStage = errors.New("failed to start stage")
)

// Orchestrator starts the stages of a pipeline.
// The zero value uses the standard streams of the current process.
type Orchestrator struct {
	Stdin  *os.File // read by the first stage, os.Stdin if nil
	Stdout *os.File // written by the last stage, os.Stdout if nil
	Stderr *os.File // shared by every stage, os.Stderr if nil
	Dir    string   // working directory of every stage, the current one if empty
	Env    []string // environment of every stage, the current one if nil
}

// New returns an Orchestrator wired to the standard streams of the current process.
func New() *Orchestrator {
	return &Orchestrator{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts one stage per line, connecting the output of each stage to the input of the next.
// Each line is tokenized when its stage is started. Run returns as soon as the last stage has
// been started, without waiting; the handles must be passed to Aggregate.
//
// If a pipe or process cannot be created, Run closes every descriptor it holds, starts nothing
// more and returns ErrCreatePipe or ErrStartStage together with the handles of the stages
// already started. Those stages keep running and still have to be reaped.
func (o *Orchestrator) Run(ctx context.Context, lines []string) ([]*Handle, error) {
	logger := ctxlog.Logger(ctx).With("runnableType", "Pipeline")
	n := len(lines)
	handles := make([]*Handle, 0, n)

	logger.Debug("starting pipeline", "stages", n)

	// upstream is the read end of the pipe feeding stage i, nil for the first stage.
	var upstream *os.File

	for i, line := range lines {
		var downstream *pipe

		if i < n-1 {
			p, err := openPipe()
			if err != nil {
				logger.Error("pipe creation failed", "stage", i, "error", err)
				return handles, abort(ErrCreatePipe, i, err, upstream)
			}

			downstream = p
		}

		stdin := o.stdin()
		if upstream != nil {
			stdin = upstream
		}

		stdout := o.stdout()
		if downstream != nil {
			stdout = downstream.w
		}

		h, err := o.startStage(ctx, i, argv.Tokenize(line), stdin, stdout)
		if err != nil {
			logger.Error("stage start failed", "stage", i, "error", err)

			if downstream != nil {
				return handles, abort(ErrStartStage, i, err, upstream, downstream.r, downstream.w)
			}

			return handles, abort(ErrStartStage, i, err, upstream)
		}

		handles = append(handles, h)

		// The child has its own copies now.
		closeFile(ctx, upstream)
		upstream = nil

		if downstream != nil {
			closeFile(ctx, downstream.w)
			upstream = downstream.r
		}
	}

	closeFile(ctx, upstream)

	logger.Debug("all stages started", "stages", len(handles))

	return handles, nil
}

// Execute runs the pipeline and waits for every stage.
// When Run fails, the stages it did start are reaped before its error is returned.
func (o *Orchestrator) Execute(ctx context.Context, lines []string) (*Result, error) {
	handles, runErr := o.Run(ctx, lines)

	res, waitErr := Aggregate(ctx, handles)
	if runErr != nil {
		return res, runErr
	}

	return res, waitErr
}

func (o *Orchestrator) stdin() *os.File {
	if o.Stdin == nil {
		return os.Stdin
	}

	return o.Stdin
}

func (o *Orchestrator) stdout() *os.File {
	if o.Stdout == nil {
		return os.Stdout
	}

	return o.Stdout
}

func (o *Orchestrator) stderr() *os.File {
	if o.Stderr == nil {
		return os.Stderr
	}

	return o.Stderr
}

// abort releases held descriptors and builds the orchestration error.
// Close failures are appended to the error.
func abort(kind error, stage int, cause error, held ...*os.File) error {
	err := fmt.Errorf("%w: stage %d: %w", kind, stage, cause)

	var closeErrs *multierror.Error

	for _, f := range held {
		if f == nil {
			continue
		}

		if cerr := f.Close(); cerr != nil {
			closeErrs = multierror.Append(closeErrs, cerr)
		}
	}

	if closeErrs == nil {
		return err
	}

	merr := multierror.Append(err, closeErrs.Errors...)
	merr.ErrorFormat = oneLineErrors

	return merr
}

func oneLineErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}

	return strings.Join(msgs, "; ")
}

func closeFile(ctx context.Context, f *os.File) {
	if f == nil {
		return
	}

	if err := f.Close(); err != nil {
		ctxlog.Warn(ctx, "failed to close pipe end", "name", f.Name(), "error", err)
	}
}
