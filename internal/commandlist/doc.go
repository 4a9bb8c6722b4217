// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandlist loads the ordered list of raw command lines that make up a pipeline.
// Lines can come from a local file, a remote source in go-getter syntax, a stream,
// or an interactive terminal prompt. One line is one command; a line with no
// arguments is rejected while loading so it never reaches the orchestrator.
package commandlist
