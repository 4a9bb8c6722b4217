// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

const (
	mexecLogLevelEnvVar = "MEXEC_LOG_LEVEL"

	// FormatPretty selects the pretty console handler.
	FormatPretty = "pretty"
	// FormatJSON selects the slog JSON handler.
	FormatJSON = "json"
)

// ErrUnknownLevel is returned when a log level name is not recognised.
var ErrUnknownLevel = errors.New("unknown log level")

// ErrUnknownFormat is returned when a log format name is not recognised.
var ErrUnknownFormat = errors.New("unknown log format")

type loggerKey struct{}

// LevelVar is shared by every logger created by this package.
var LevelVar = &slog.LevelVar{}

// DefaultLogger is the pretty logger used when the context carries none.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
	Level: LevelVar,
},
	WithAutoColour(),
	WithDestinationWriter(os.Stderr),
))

// JSONLogger writes one JSON object per record to standard error.
var JSONLogger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
	Level: LevelVar,
}))

func init() {
	LevelVar.Set(logLevelFromEnv())
}

// New returns a context carrying logger. A nil logger means DefaultLogger.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// ForFormat returns the package logger for the named format.
func ForFormat(format string) (*slog.Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatPretty:
		return DefaultLogger, nil
	case FormatJSON:
		return JSONLogger, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WithRunID returns a context whose logger tags every record with a new run identifier.
// The identifier is returned so it can be reported elsewhere.
func WithRunID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return New(ctx, Logger(ctx).With("run", id)), id
}

// Logger returns the logger from the context, or DefaultLogger if there is none.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// Info logs an info message with the given context.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Debug logs a debug message with the given context.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Warn logs a warning message with the given context.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs an error message with the given context.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

// SetLevel sets the level of every logger in this package by name.
// An empty name leaves the level unchanged.
func SetLevel(name string) error {
	if name == "" {
		return nil
	}

	level, ok := parseLevel(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}

	LevelVar.Set(level)

	return nil
}

func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}

	return slog.LevelWarn, false
}

// logLevelFromEnv reads MEXEC_LOG_LEVEL, anything unset or unknown is WARN.
func logLevelFromEnv() slog.Level {
	level, _ := parseLevel(os.Getenv(mexecLogLevelEnvVar))
	return level
}
