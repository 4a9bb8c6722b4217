// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandlist

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matt-FFFFFF/mexec/internal/argv"
	"github.com/matt-FFFFFF/mexec/internal/ctxlog"
	"golang.org/x/term"
)

var (
	// ErrReadCommandList is returned when the command list cannot be read from its source.
	ErrReadCommandList = errors.New("failed to read command list")
	// ErrEmptyCommand is returned when a line of the command list has no arguments.
	ErrEmptyCommand = errors.New("empty command")
)

// isTerminal is replaced in tests.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Load returns the command lines found at src.
// An empty src reads from stdin, prompting for lines when both stdin and stdout are terminals.
// A src in go-getter syntax (e.g. https://, git::) is downloaded first,
// anything else is a path on the filesystem returned by FsFactory.
func Load(ctx context.Context, src string, stdin *os.File) ([]string, error) {
	logger := ctxlog.Logger(ctx).With("source", src)

	switch {
	case src == "" && isTerminal(stdin) && isTerminal(os.Stdout):
		logger.Debug("reading command list from interactive prompt")
		return readInteractive(ctx)

	case src == "":
		logger.Debug("reading command list from stdin")
		return Read(stdin)

	case isRemote(src):
		logger.Debug("fetching command list")

		data, err := fetch(ctx, src)
		if err != nil {
			return nil, err
		}

		return Read(bytes.NewReader(data))
	}

	logger.Debug("reading command list from file")

	f, err := FsFactory().Open(src)
	if err != nil {
		return nil, errors.Join(ErrReadCommandList, err)
	}

	defer f.Close() //nolint:errcheck

	return Read(f)
}

// Read returns every line of r, in order, with the line terminator removed.
// Both "\n" and "\r\n" terminators are accepted and a final line without a
// terminator is kept. A line with no arguments is an error naming its 1-based
// line number.
func Read(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	lines := make([]string, 0)

	for n := 1; ; n++ {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Join(ErrReadCommandList, err)
		}

		if line == "" && err != nil {
			return lines, nil
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		if argv.IsBlank(line) {
			return nil, fmt.Errorf("%w: line %d", ErrEmptyCommand, n)
		}

		lines = append(lines, line)

		if err != nil {
			return lines, nil
		}
	}
}
