// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandlist

import (
	"context"
	"errors"
	"io"

	"github.com/matt-FFFFFF/mexec/internal/argv"
	"github.com/matt-FFFFFF/mexec/internal/ctxlog"
	"github.com/peterh/liner"
)

const prompt = "mexec> "

// ErrPromptAborted is returned when the interactive prompt is aborted with Ctrl+C.
var ErrPromptAborted = errors.New("prompt aborted")

// readInteractive prompts for one command per line until end of input (Ctrl+D).
// Blank entries are not added to the list.
func readInteractive(ctx context.Context) ([]string, error) {
	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)

	lines := make([]string, 0)

	for {
		input, err := line.Prompt(prompt)

		switch {
		case err == nil:
			if argv.IsBlank(input) {
				continue
			}

			line.AppendHistory(input)

			lines = append(lines, input)

		case errors.Is(err, io.EOF):
			ctxlog.Debug(ctx, "end of interactive input", "commands", len(lines))
			return lines, nil

		case errors.Is(err, liner.ErrPromptAborted):
			return nil, ErrPromptAborted

		default:
			return nil, errors.Join(ErrReadCommandList, err)
		}
	}
}
