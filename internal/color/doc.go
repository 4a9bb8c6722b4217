// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color colours diagnostic text with ANSI escape codes.
// Colour is decided once at start-up: NO_COLOR disables it, FORCE_COLOR forces it,
// otherwise it is enabled when standard error is a terminal. Standard error is the
// stream that matters because every diagnostic of the program is written there.
package color
