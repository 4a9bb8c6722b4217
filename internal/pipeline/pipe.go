// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"os"
)

// newPipe creates an operating system pipe. Both ends are close-on-exec.
// It is a variable so tests can simulate descriptor exhaustion.
var newPipe = os.Pipe

// pipe connects stage i to stage i+1. The parent owns both ends until stage i has started,
// then it keeps r for stage i+1 and closes w.
type pipe struct {
	r *os.File
	w *os.File
}

func openPipe() (*pipe, error) {
	r, w, err := newPipe()
	if err != nil {
		return nil, err
	}

	return &pipe{r: r, w: w}, nil
}
