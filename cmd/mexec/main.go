// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the mexec command-line interface (CLI).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/mexec"
	"github.com/matt-FFFFFF/mexec/cmd/mexec/run"
	"github.com/matt-FFFFFF/mexec/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:      "mexec",
		Usage:     "run a list of commands as a pipeline",
		ArgsUsage: "[FILE|URL]",
		Description: `mexec reads a list of commands, one per line, and runs them as a pipeline:
the standard output of each command is the standard input of the next, like
cmd1 | cmd2 | ... | cmdN in a shell. Arguments are separated by whitespace,
there is no quoting, redirection or variable expansion.

The list is read from FILE, from a URL in Hashicorp's go-getter syntax, or from
standard input when no argument is given. On a terminal an interactive prompt
collects the commands until Ctrl-D.

The exit code is the exit code of the last failing stage to finish,
or 0 when every stage succeeded.`,
		Flags:           run.Flags(),
		Action:          run.Action,
		Writer:          os.Stdout,
		ErrWriter:       os.Stderr,
		Version:         fmt.Sprintf("%s (commit: %s)", mexec.Version, mexec.Commit),
		Copyright:       "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		HideHelpCommand: true,

		// Exit codes are decided by main.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func main() {
	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)

	err := newRootCmd().Run(ctx, os.Args)
	if err != nil {
		ctxlog.Logger(ctx).Debug("command finished with error", "error", err)
	}

	os.Exit(exitCode(err))
}

// exitCode maps the error returned by the command to the process exit code.
// Errors that carry no exit code come from argument parsing.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}

	return run.ExitUsage
}
