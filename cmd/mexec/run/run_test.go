// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/mexec/internal/color"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	color.SetEnabled(false)
	goleak.VerifyTestMain(m)
}

type harness struct {
	cmd         *cli.Command
	diagnostics *bytes.Buffer
	stdoutPath  string
	stderrPath  string
}

// newHarness builds a fresh command whose pipeline reads input and writes to temporary files.
func newHarness(t *testing.T, input string) *harness {
	t.Helper()

	dir := t.TempDir()
	h := &harness{
		diagnostics: &bytes.Buffer{},
		stdoutPath:  filepath.Join(dir, "stdout"),
		stderrPath:  filepath.Join(dir, "stderr"),
	}

	inPath := filepath.Join(dir, "stdin")
	require.NoError(t, os.WriteFile(inPath, []byte(input), 0o600))

	in, err := os.Open(inPath)
	require.NoError(t, err)

	out, err := os.Create(h.stdoutPath)
	require.NoError(t, err)

	errf, err := os.Create(h.stderrPath)
	require.NoError(t, err)

	stubs := gostub.Stub(&stdin, in).Stub(&stdout, out).Stub(&stderr, errf)

	t.Cleanup(func() {
		stubs.Reset()

		_ = in.Close()
		_ = out.Close()
		_ = errf.Close()
	})

	h.cmd = &cli.Command{
		Name:            "mexec",
		Flags:           Flags(),
		Action:          Action,
		Writer:          io.Discard,
		ErrWriter:       h.diagnostics,
		HideHelpCommand: true,
		ExitErrHandler:  func(context.Context, *cli.Command, error) {},
	}

	return h
}

func (h *harness) run(args ...string) error {
	return h.cmd.Run(context.Background(), append([]string{"mexec"}, args...))
}

func (h *harness) stdout(t *testing.T) string {
	t.Helper()

	b, err := os.ReadFile(h.stdoutPath)
	require.NoError(t, err)

	return string(b)
}

func (h *harness) stageStderr(t *testing.T) string {
	t.Helper()

	b, err := os.ReadFile(h.stderrPath)
	require.NoError(t, err)

	return string(b)
}

func exitCodeOf(t *testing.T, err error) int {
	t.Helper()

	if err == nil {
		return 0
	}

	var ec cli.ExitCoder
	require.ErrorAs(t, err, &ec)

	return ec.ExitCode()
}

func writeList(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "commands.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	return path
}

func TestAction_RunsPipeline(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(writeList(t, "echo hello", "tr a-z A-Z"))
	require.NoError(t, err)
	assert.Equal(t, "HELLO\n", h.stdout(t))
	assert.Empty(t, h.diagnostics.String())
}

func TestAction_ExitCodeIsPipelineStatus(t *testing.T) {
	testCases := []struct {
		name  string
		lines []string
		code  int
	}{
		{name: "success", lines: []string{"echo a", "cat"}, code: 0},
		{name: "first stage fails", lines: []string{"false", "true"}, code: 1},
		{name: "missing program", lines: []string{"nonexistent-cmd-xyz", "cat"}, code: 127},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, "")

			err := h.run(writeList(t, tc.lines...))
			assert.Equal(t, tc.code, exitCodeOf(t, err))
			assert.Empty(t, h.diagnostics.String())
		})
	}
}

func TestAction_MissingProgramDiagnostic(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(writeList(t, "nonexistent-cmd-xyz"))
	assert.Equal(t, 127, exitCodeOf(t, err))
	assert.Contains(t, h.stageStderr(t), "mexec: nonexistent-cmd-xyz: command not found")
}

func TestAction_EmptyList(t *testing.T) {
	h := newHarness(t, "")

	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	require.NoError(t, h.run(path))
	assert.Empty(t, h.stdout(t))
}

func TestAction_ReadsStdin(t *testing.T) {
	h := newHarness(t, "echo from-stdin\ncat\n")

	require.NoError(t, h.run())
	assert.Equal(t, "from-stdin\n", h.stdout(t))
}

func TestAction_TooManyArguments(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(writeList(t, "echo a"), writeList(t, "echo b"))
	assert.Equal(t, ExitUsage, exitCodeOf(t, err))
	assert.Contains(t, h.diagnostics.String(), ErrTooManyArguments.Error())
	assert.Empty(t, h.stdout(t))
}

func TestAction_SetupErrors(t *testing.T) {
	testCases := []struct {
		name string
		args func(t *testing.T) []string
		want string
	}{
		{
			name: "missing file",
			args: func(t *testing.T) []string {
				return []string{filepath.Join(t.TempDir(), "missing.txt")}
			},
			want: "failed to read command list",
		},
		{
			name: "blank line",
			args: func(t *testing.T) []string {
				return []string{writeList(t, "echo a", "", "echo b")}
			},
			want: "empty command: line 2",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, "")

			err := h.run(tc.args(t)...)
			assert.Equal(t, ExitSetup, exitCodeOf(t, err))

			diag := h.diagnostics.String()
			assert.Contains(t, diag, tc.want)
			assert.True(t, strings.HasPrefix(diag, "mexec: "))
			assert.Equal(t, 1, strings.Count(diag, "\n"), "diagnostic is a single line")
			assert.Empty(t, h.stdout(t))
		})
	}
}

func TestAction_InvalidLogging(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "format", args: []string{"--log-format", "xml"}, want: "unknown log format"},
		{name: "level", args: []string{"--log-level", "loud"}, want: "unknown log level"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, "")

			err := h.run(append(tc.args, writeList(t, "echo a"))...)
			assert.Equal(t, ExitUsage, exitCodeOf(t, err))
			assert.Contains(t, h.diagnostics.String(), tc.want)
			assert.Empty(t, h.stdout(t))
		})
	}
}

func TestAction_JSONLogFormat(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run("--log-format", "json", writeList(t, "echo a")))
	assert.Equal(t, "a\n", h.stdout(t))
}

func TestAction_Report(t *testing.T) {
	fs := afero.NewMemMapFs()
	stubs := gostub.StubFunc(&FsFactory, fs)
	defer stubs.Reset()

	h := newHarness(t, "")

	// cat exits 0 once the missing program's pipe is closed, so only stage 0 fails.
	err := h.run("--report", "/report.yaml", writeList(t, "nonexistent-cmd-xyz", "cat"))
	assert.Equal(t, 127, exitCodeOf(t, err))

	b, err := afero.ReadFile(fs, "/report.yaml")
	require.NoError(t, err)

	report := string(b)
	assert.Contains(t, report, "run_id: ")
	assert.Contains(t, report, "exit_code: 127")
	assert.Contains(t, report, "decided_by: 0")
	assert.Contains(t, report, "kind: failed")
	assert.Contains(t, report, "- nonexistent-cmd-xyz")
}

func TestAction_ReportFromEnvironment(t *testing.T) {
	fs := afero.NewMemMapFs()
	stubs := gostub.StubFunc(&FsFactory, fs)
	defer stubs.Reset()

	t.Setenv("MEXEC_REPORT", "/env-report.yaml")

	h := newHarness(t, "")
	require.NoError(t, h.run(writeList(t, "true")))

	exists, err := afero.Exists(fs, "/env-report.yaml")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAction_ReportWriteFailure(t *testing.T) {
	stubs := gostub.StubFunc(&FsFactory, afero.NewReadOnlyFs(afero.NewMemMapFs()))
	defer stubs.Reset()

	h := newHarness(t, "")

	err := h.run("--report", "/report.yaml", writeList(t, "echo a"))
	assert.Equal(t, ExitSetup, exitCodeOf(t, err))
	assert.Contains(t, h.diagnostics.String(), "failed to write report")

	// The pipeline has already run.
	assert.Equal(t, "a\n", h.stdout(t))
}

func TestAction_Summary(t *testing.T) {
	h := newHarness(t, "")

	// Neither stage writes, so no stage can be killed by SIGPIPE.
	err := h.run("--summary", writeList(t, "true", "false"))
	assert.Equal(t, 1, exitCodeOf(t, err))

	want := "✓ [0] true: exit code 0\n" +
		"✗ [1] false: exit code 1\n" +
		"pipeline exit code 1 (from stage 1)\n"
	assert.Equal(t, want, h.diagnostics.String())
}

func TestAction_SummaryFromEnvironment(t *testing.T) {
	t.Setenv("MEXEC_SUMMARY", "true")

	h := newHarness(t, "")

	require.NoError(t, h.run(writeList(t, "true")))
	assert.Contains(t, h.diagnostics.String(), "pipeline exit code 0")
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "stdin", sourceName(""))
	assert.Equal(t, "list.txt", sourceName("list.txt"))
}
