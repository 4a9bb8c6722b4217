// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package argv turns one command line into an argument vector.
// There is no quoting, escaping or expansion: a line is split on runs of
// whitespace and every remaining field is one argument.
package argv

import "strings"

// Tokenize splits line into its arguments, discarding empty fields.
// The returned slice is freshly allocated on every call and is owned by the caller.
// A line that contains only whitespace yields an empty, non-nil slice.
func Tokenize(line string) []string {
	fields := strings.Fields(line)
	if fields == nil {
		return []string{}
	}

	return fields
}

// IsBlank reports whether line would tokenize to zero arguments.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
