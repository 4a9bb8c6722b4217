// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrCommandNotFound is the cause recorded for a program that does not exist.
	ErrCommandNotFound = errors.New("command not found")
	// ErrNotExecutable is the cause recorded for a program that exists but cannot be executed.
	ErrNotExecutable = errors.New("permission denied")
	// ErrIsDirectory is the cause recorded for a program name that resolves to a directory.
	ErrIsDirectory = errors.New("is a directory")
)

// lookPath resolves name to an executable file the way execvp does, as seen by a process
// started in dir with searchPath as its PATH. An empty dir is the current working directory.
// A name containing a path separator is used as given; a bare name is searched in every
// searchPath directory in order, an empty element meaning the working directory.
// Relative results are returned relative to dir, since that is where they will be executed.
// When nothing executable is found, a candidate that exists but cannot be executed wins
// over not found. The returned code is 0, ExitNotExecutable or ExitCommandNotFound.
func lookPath(name, dir, searchPath string) (string, int, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		return checkExecutable(name, dir)
	}

	var denied error

	for _, elem := range filepath.SplitList(searchPath) {
		if elem == "" {
			elem = "."
		}

		candidate := filepath.Join(elem, name)
		if !strings.ContainsRune(candidate, os.PathSeparator) {
			candidate = "." + string(os.PathSeparator) + candidate
		}

		path, code, err := checkExecutable(candidate, dir)
		if err == nil {
			return path, 0, nil
		}

		if code == ExitNotExecutable && denied == nil {
			denied = err
		}
	}

	if denied != nil {
		return "", ExitNotExecutable, denied
	}

	return "", ExitCommandNotFound, ErrCommandNotFound
}

// searchPath returns the PATH the stages of o will see.
// With an explicit environment only its PATH entry counts, the last one if repeated.
func (o *Orchestrator) searchPath() string {
	if o.Env == nil {
		return os.Getenv("PATH")
	}

	var path string

	for _, kv := range o.Env {
		if v, ok := strings.CutPrefix(kv, "PATH="); ok {
			path = v
		}
	}

	return path
}

// checkExecutable stats path as resolved from dir and returns it unchanged if it can be executed.
func checkExecutable(path, dir string) (string, int, error) {
	resolved := path
	if dir != "" && !filepath.IsAbs(path) {
		resolved = filepath.Join(dir, path)
	}

	info, err := os.Stat(resolved)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", ExitCommandNotFound, ErrCommandNotFound
	case err != nil:
		return "", ExitNotExecutable, fmt.Errorf("%w: %w", ErrNotExecutable, err)
	case info.IsDir():
		return "", ExitNotExecutable, ErrIsDirectory
	case runtime.GOOS != "windows" && info.Mode()&0o111 == 0:
		return "", ExitNotExecutable, ErrNotExecutable
	}

	return path, 0, nil
}
