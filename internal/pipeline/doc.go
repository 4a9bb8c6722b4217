// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pipeline runs a list of commands as a process pipeline, the way a shell runs
// cmd1 | cmd2 | ... | cmdN.
//
// The Orchestrator creates one pipe between each pair of adjacent stages and starts one
// process per stage with its standard input and output wired to the right pipe ends.
// The first stage reads the orchestrator's standard input and the last stage writes its
// standard output. After each start the orchestrator closes every pipe end it no longer
// needs, so at any time it holds at most the read end of the most recent pipe. A write end
// left open anywhere would keep the next stage from ever seeing end of input.
//
// Aggregate reaps every started stage exactly once, in completion order, and derives the
// pipeline exit code from the last failure it observed.
//
// Stages that cannot be executed (program not found, not executable, or streams that
// cannot be redirected) are not orchestration errors: they are recorded with the
// conventional shell exit codes 127, 126 and 125 and only surface in the exit code.
package pipeline
