// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/mexec/internal/color"
)

var (
	// ErrWriteReport is returned when the YAML report cannot be written.
	ErrWriteReport = errors.New("failed to write report")
	// ErrWriteSummary is returned when the text summary cannot be written.
	ErrWriteSummary = errors.New("failed to write summary")
)

// Result is the outcome of a whole pipeline.
type Result struct {
	RunID string `yaml:"run_id,omitempty"`
	// ExitCode is the code of the last failing stage observed, or 0.
	ExitCode int `yaml:"exit_code"`
	// DecidedBy is the position of the stage that set ExitCode, -1 if none failed.
	DecidedBy int `yaml:"decided_by"`
	// Stages holds one entry per reaped stage, in the order they were observed.
	Stages []StageResult `yaml:"stages"`
}

// StageResult is the outcome of one stage.
type StageResult struct {
	Stage  int      `yaml:"stage"`
	Args   []string `yaml:"args"`
	Pid    int      `yaml:"pid,omitempty"`
	Status Status   `yaml:"status"`
}

// HasError reports whether any stage did not succeed.
func (r *Result) HasError() bool {
	for _, s := range r.Stages {
		if !s.Status.Success() {
			return true
		}
	}

	return false
}

// ByPosition returns the stage results sorted by pipeline position.
func (r *Result) ByPosition() []StageResult {
	stages := slices.Clone(r.Stages)
	slices.SortFunc(stages, func(a, b StageResult) int {
		return cmp.Compare(a.Stage, b.Stage)
	})

	return stages
}

// WriteYAML writes the result as a YAML document.
func (r *Result) WriteYAML(w io.Writer) error {
	b, err := yaml.MarshalWithOptions(r, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return errors.Join(ErrWriteReport, err)
	}

	if _, err := w.Write(b); err != nil {
		return errors.Join(ErrWriteReport, err)
	}

	return nil
}

// WriteText writes one line per stage in pipeline order, followed by the pipeline exit code.
func (r *Result) WriteText(w io.Writer) error {
	var sb strings.Builder

	for _, s := range r.ByPosition() {
		var mark string

		var markColour color.Code

		switch {
		case s.Status.Success():
			mark, markColour = "✓", color.FgGreen
		case s.Status.Kind == StatusFailed:
			mark, markColour = "?", color.FgYellow
		default:
			mark, markColour = "✗", color.FgRed
		}

		label := strings.Join(s.Args, " ")
		if label == "" {
			label = "[empty]"
		}

		fmt.Fprintf(&sb, "%s %s %s: %s\n",
			color.Colorize(mark, markColour),
			color.Colorize(fmt.Sprintf("[%d]", s.Stage), color.Bold),
			label,
			s.Status)
	}

	exit := fmt.Sprintf("pipeline exit code %d", r.ExitCode)
	if r.DecidedBy >= 0 {
		exit += fmt.Sprintf(" (from stage %d)", r.DecidedBy)
	}

	if r.ExitCode == 0 {
		sb.WriteString(color.Colorize(exit, color.FgGreen))
	} else {
		sb.WriteString(color.Colorize(exit, color.FgRed))
	}

	sb.WriteString("\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Join(ErrWriteSummary, err)
	}

	return nil
}
