// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware logger built on log/slog.
//
// Every handler in this package writes to standard error: standard output of
// the process is inherited by the last stage of a pipeline and must carry only
// that stage's bytes. The default handler is a pretty console handler that
// renders attributes as indented JSON; a plain JSON handler is also available.
//
// The level is read from the MEXEC_LOG_LEVEL environment variable at start-up
// and can be changed later with SetLevel.
package ctxlog
