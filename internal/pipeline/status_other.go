// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !unix

package pipeline

import "os"

func statusFromState(state *os.ProcessState) Status {
	return Exited(state.ExitCode())
}
