// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for Proofdesk components.
//
// The package wraps Go's standard library slog with a small amount of
// policy: stderr output by default (CLI convention), optional JSON
// output for service deployments, and a `service` attribute stamped on
// every record so multi-service log streams stay attributable.
//
// # Basic Usage
//
//	logger := logging.Default()
//	logger.Info("evaluation started", "run_id", runID)
//	logger.Error("tagging failed", "error", err)
//
// # Service Configuration
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelDebug,
//	    Service: "evaluation",
//	    JSON:    true,
//	})
//
// # Log Levels
//
// Four levels are supported, matching slog conventions:
//
//   - Debug: development troubleshooting, verbose output
//   - Info: normal operations (evaluation start/end, state changes)
//   - Warn: recoverable issues (extractor anomalies, degraded mode)
//   - Error: operation failures (but the system continues)
//
// # Thread Safety
//
// Logger is safe for concurrent use; the underlying slog.Logger is
// thread-safe and Logger holds no mutable state after construction.
//
// # Security Considerations
//
// This package does NOT automatically redact sensitive data. Callers
// must ensure candidate PII and API tokens are not logged:
//
//	// BAD: logs sensitive data
//	logger.Info("tagging", "api_key", key)
//
//	// GOOD: log metadata only
//	logger.Info("tagging", "api_key_present", key != "")
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level represents log severity levels.
//
// Levels follow the slog convention and are ordered by severity:
// Debug < Info < Warn < Error. Setting a minimum level filters out
// all logs below that level.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for potentially problematic situations the system
	// can recover from.
	LevelWarn

	// LevelError is for operation failures.
	LevelError
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// toSlogLevel converts our Level to slog.Level.
func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures Logger behavior.
//
// All fields have sensible defaults. A zero-value Config creates a
// logger that writes Info+ messages to stderr in text format.
type Config struct {
	// Level sets the minimum log level.
	// Messages below this level are discarded. Default: LevelInfo.
	Level Level

	// Service is stamped on every record as the `service` attribute.
	// Default: "proofdesk".
	Service string

	// JSON switches output to JSON format (one object per line).
	// Default: false (human-readable text).
	JSON bool

	// Writer overrides the output destination.
	// Default: os.Stderr. Primarily used by tests.
	Writer io.Writer
}

// Logger is a thin wrapper around slog.Logger with Proofdesk policy
// applied. Construct with New or Default; the zero value is not usable.
type Logger struct {
	slog *slog.Logger
}

// New creates a Logger from the given Config.
//
// Inputs:
//
//	config - Logger configuration; zero value is valid.
//
// Outputs:
//
//	*Logger - The configured logger. Never nil.
func New(config Config) *Logger {
	w := config.Writer
	if w == nil {
		w = os.Stderr
	}
	service := config.Service
	if service == "" {
		service = "proofdesk"
	}

	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		slog: slog.New(handler).With("service", service),
	}
}

// Default returns a logger suitable for CLI usage: Info level, text
// format, stderr output.
func Default() *Logger {
	return New(Config{})
}

// Discard returns a logger that drops all records. Used in tests where
// log output is noise.
func Discard() *Logger {
	return New(Config{Level: LevelError, Writer: io.Discard})
}

// Debug logs at LevelDebug with alternating key/value args.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs at LevelInfo with alternating key/value args.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs at LevelWarn with alternating key/value args.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs at LevelError with alternating key/value args.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// With returns a child logger with the given attributes attached to
// every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Slog exposes the underlying slog.Logger for libraries that accept
// one directly (BadgerDB, HTTP middleware).
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}
