// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain verifies that no test leaves a waiting goroutine behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const pipelineTimeout = 30 * time.Second

// testStreams wires an orchestrator to temporary files so tests can feed standard input
// and inspect what the last stage wrote.
type testStreams struct {
	o      *Orchestrator
	stdout string
	stderr string
}

func newTestStreams(t *testing.T, input string) *testStreams {
	t.Helper()

	dir := t.TempDir()
	inPath := filepath.Join(dir, "stdin")
	outPath := filepath.Join(dir, "stdout")
	errPath := filepath.Join(dir, "stderr")

	require.NoError(t, os.WriteFile(inPath, []byte(input), 0o600))

	stdin, err := os.Open(inPath)
	require.NoError(t, err)

	stdout, err := os.Create(outPath)
	require.NoError(t, err)

	stderr, err := os.Create(errPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = stdin.Close()
		_ = stdout.Close()
		_ = stderr.Close()
	})

	return &testStreams{
		o: &Orchestrator{
			Stdin:  stdin,
			Stdout: stdout,
			Stderr: stderr,
		},
		stdout: outPath,
		stderr: errPath,
	}
}

func (s *testStreams) output(t *testing.T) string {
	t.Helper()

	b, err := os.ReadFile(s.stdout)
	require.NoError(t, err)

	return string(b)
}

func (s *testStreams) diagnostics(t *testing.T) string {
	t.Helper()

	b, err := os.ReadFile(s.stderr)
	require.NoError(t, err)

	return string(b)
}

// execute runs lines and fails the test instead of hanging when a descriptor was left open.
func execute(t *testing.T, o *Orchestrator, lines []string) (*Result, error) {
	t.Helper()

	type ret struct {
		res *Result
		err error
	}

	done := make(chan ret, 1)

	go func() {
		res, err := o.Execute(context.Background(), lines)
		done <- ret{res: res, err: err}
	}()

	select {
	case r := <-done:
		return r.res, r.err
	case <-time.After(pipelineTimeout):
		t.Fatalf("pipeline %q did not finish within %s", lines, pipelineTimeout)
	}

	return nil, nil
}

// openFDs counts the descriptors open in this process.
func openFDs(t *testing.T) int {
	t.Helper()

	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("counting descriptors needs /proc/self/fd")
	}

	return len(entries)
}

// warmUp runs a two stage pipeline once so descriptors the runtime opens lazily
// (poller, pidfd support check) exist before a test starts counting.
func warmUp(t *testing.T) {
	t.Helper()

	s := newTestStreams(t, "")
	_, err := execute(t, s.o, []string{"true", "true"})
	require.NoError(t, err)
}

// writeScript creates an executable shell script in a temporary directory and returns its path.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	return path
}
