// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"os/signal"

	"github.com/matt-FFFFFF/mexec/internal/ctxlog"
)

// ReleaseFunc returns a signal to its default action.
type ReleaseFunc func(os.Signal)

// DefaultRelease restores the default action for sig.
func DefaultRelease(sig os.Signal) {
	signal.Reset(sig)
}

// Watch logs every signal received on sigCh until the channel is closed or ctx is done.
// The second signal of a given type is passed to release.
func Watch(ctx context.Context, sigCh <-chan os.Signal, release ReleaseFunc) {
	logger := ctxlog.Logger(ctx)
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				logger.Warn("watchdog", "detail", "received second signal of type, next one terminates", "signal", sig.String())
				release(sig)

				continue
			}

			seen[sig] = struct{}{}

			logger.Info("watchdog", "detail", "received signal, waiting for stages to exit", "signal", sig.String())
		}
	}
}
