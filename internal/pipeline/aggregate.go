// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/mexec/internal/ctxlog"
)

// ErrWaitStage is returned when a stage cannot be reaped.
var ErrWaitStage = errors.New("failed to wait for stage")

type outcome struct {
	handle *Handle
	status Status
	err    error
}

// Aggregate waits for every handle exactly once and returns the pipeline result.
// Stages are observed in the order they finish, not in pipeline order, and the code of
// the last failing stage observed becomes the pipeline exit code. With no failure the
// exit code is 0, which is also the result for no handles at all.
//
// A handle that cannot be waited for is an error, returned after all other handles have
// been reaped.
func Aggregate(ctx context.Context, handles []*Handle) (*Result, error) {
	logger := ctxlog.Logger(ctx)
	res := &Result{
		Stages:    make([]StageResult, 0, len(handles)),
		DecidedBy: -1,
	}

	outcomes := make(chan outcome, len(handles))
	wg := &sync.WaitGroup{}

	for _, h := range handles {
		wg.Add(1)

		go func(h *Handle) {
			defer wg.Done()

			st, err := h.wait()
			outcomes <- outcome{handle: h, status: st, err: err}
		}(h)
	}

	var errs *multierror.Error

	for range handles {
		o := <-outcomes

		if o.err != nil {
			logger.Error("wait failed", "stage", o.handle.Stage, "error", o.err)
			errs = multierror.Append(errs, fmt.Errorf("%w: stage %d: %w", ErrWaitStage, o.handle.Stage, o.err))

			continue
		}

		logger.Debug("stage finished",
			"stage", o.handle.Stage,
			"pid", o.handle.Pid(),
			"status", o.status.String())

		res.Stages = append(res.Stages, StageResult{
			Stage:  o.handle.Stage,
			Args:   o.handle.Args,
			Pid:    o.handle.Pid(),
			Status: o.status,
		})

		if !o.status.Success() {
			res.ExitCode = o.status.Code
			res.DecidedBy = o.handle.Stage
		}
	}

	wg.Wait()

	if errs != nil {
		errs.ErrorFormat = oneLineErrors
		return res, errs
	}

	return res, nil
}
