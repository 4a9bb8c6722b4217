// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the action of the mexec command: load a command list,
// run it as a pipeline and turn the pipeline status into the exit code.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matt-FFFFFF/mexec/internal/color"
	"github.com/matt-FFFFFF/mexec/internal/commandlist"
	"github.com/matt-FFFFFF/mexec/internal/ctxlog"
	"github.com/matt-FFFFFF/mexec/internal/pipeline"
	"github.com/matt-FFFFFF/mexec/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

const (
	reportFlag    = "report"
	summaryFlag   = "summary"
	logFormatFlag = "log-format"
	logLevelFlag  = "log-level"
	cliExitStr    = ""
)

// Exit codes of the command itself, as opposed to the pipeline exit code.
const (
	ExitSetup = 1 // the command list could not be loaded or the pipeline could not be built
	ExitUsage = 2 // the command line is invalid
)

// ErrTooManyArguments is returned when more than one command list is given.
var ErrTooManyArguments = errors.New("expected at most one command list")

// Streams handed to the pipeline. Variables so tests can use files of their own.
var (
	stdin  = os.Stdin
	stdout = os.Stdout
	stderr = os.Stderr
)

// Flags returns the flags of the mexec command. Every flag can also be set from the environment.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      reportFlag,
			Usage:     "Write a YAML report of every stage to `FILE` after the run",
			TakesFile: true,
			OnlyOnce:  true,
			Sources:   cli.EnvVars("MEXEC_REPORT"),
		},
		&cli.BoolFlag{
			Name:        summaryFlag,
			Usage:       "Write a summary of every stage to stderr after the run",
			DefaultText: "false",
			OnlyOnce:    true,
			Sources:     cli.EnvVars("MEXEC_SUMMARY"),
		},
		&cli.StringFlag{
			Name:     logFormatFlag,
			Usage:    "Log format, pretty or json. Logs are always written to stderr",
			Value:    ctxlog.FormatPretty,
			OnlyOnce: true,
			Sources:  cli.EnvVars("MEXEC_LOG_FORMAT"),
		},
		&cli.StringFlag{
			Name:        logLevelFlag,
			Usage:       "Log level, one of debug, info, warn or error",
			DefaultText: "warn",
			OnlyOnce:    true,
			Sources:     cli.EnvVars("MEXEC_LOG_LEVEL"),
		},
	}
}

// Action loads the command list named by the only argument, or standard input when there is
// none, and runs it. A failing pipeline is returned as a cli.ExitCoder carrying its exit code.
func Action(ctx context.Context, cmd *cli.Command) error {
	if n := cmd.Args().Len(); n > 1 {
		return fail(cmd, ExitUsage,
			fmt.Errorf("%w, got %d (usage: %s [flags] [FILE|URL])", ErrTooManyArguments, n, cmd.Name))
	}

	ctx, err := configureLogging(ctx, cmd)
	if err != nil {
		return fail(cmd, ExitUsage, err)
	}

	ctx, runID := ctxlog.WithRunID(ctx)
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	src := cmd.Args().First()

	lines, err := commandlist.Load(ctx, src, stdin)
	if err != nil {
		return fail(cmd, ExitSetup, err)
	}

	logger.Info("command list loaded", "source", sourceName(src), "stages", len(lines))

	res, err := execute(ctx, lines)
	if err != nil {
		return fail(cmd, ExitSetup, err)
	}

	res.RunID = runID

	if path := cmd.String(reportFlag); path != "" {
		if err := writeReport(path, res); err != nil {
			return fail(cmd, ExitSetup, err)
		}

		logger.Info("report written", "path", path)
	}

	if cmd.Bool(summaryFlag) {
		if err := res.WriteText(cmd.Root().ErrWriter); err != nil {
			return fail(cmd, ExitSetup, err)
		}
	}

	if res.ExitCode != 0 {
		logger.Info("pipeline failed", "exitCode", res.ExitCode, "stage", res.DecidedBy)
		return cli.Exit(cliExitStr, res.ExitCode)
	}

	logger.Info("pipeline succeeded")

	return nil
}

// execute runs the pipeline with termination signals captured,
// so the stages are reaped even when the terminal interrupts them.
func execute(ctx context.Context, lines []string) (*pipeline.Result, error) {
	sigCh := signalbroker.New(ctx)
	watching := make(chan struct{})

	go func() {
		defer close(watching)
		signalbroker.Watch(ctx, sigCh, signalbroker.DefaultRelease)
	}()

	defer func() {
		signalbroker.Stop(sigCh)
		<-watching
	}()

	o := &pipeline.Orchestrator{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	return o.Execute(ctx, lines)
}

func configureLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := ctxlog.SetLevel(cmd.String(logLevelFlag)); err != nil {
		return ctx, err
	}

	logger, err := ctxlog.ForFormat(cmd.String(logFormatFlag))
	if err != nil {
		return ctx, err
	}

	return ctxlog.New(ctx, logger), nil
}

// fail writes err as a single diagnostic line and returns the exit code to use.
// Joined errors are written on the same line.
func fail(cmd *cli.Command, code int, err error) error {
	msg := fmt.Sprintf("%s: %s", cmd.Name, strings.ReplaceAll(err.Error(), "\n", ": "))
	fmt.Fprintln(cmd.Root().ErrWriter, color.Colorize(msg, color.FgRed)) //nolint:errcheck

	return cli.Exit(cliExitStr, code)
}

func sourceName(src string) string {
	if src == "" {
		return "stdin"
	}

	return src
}
