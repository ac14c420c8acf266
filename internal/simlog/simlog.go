// Package simlog defines the hierarchical diagnostic log used across the
// simulator: one category per major component (PE, Buffer, SystolicArray),
// gated by a caller-supplied flag so that silent simulation runs pay none of
// the formatting cost of a fully traced one.
//
// The level scheme extends stdlib log/slog the way core/util.go does in the
// teacher codebase (LevelTrace, LevelWaveform as slog.LevelInfo+N): here
// LevelCritical sits above slog.LevelError for the construction-time
// failures the specification calls "fatal".
package simlog

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LevelCritical is reserved for construction-time validation failures:
// shape mismatches and invalid buffer depths. It is strictly louder than
// slog.LevelError so that critical-only filtering is possible.
const LevelCritical slog.Level = slog.LevelError + 4

const (
	categoryPE            = "PE"
	categoryBuffer        = "Buffer"
	categorySystolicArray = "SystolicArray"
)

// Logger bundles the three category loggers named in the specification's
// diagnostics section. The Logger returned by Discard writes nowhere and its
// Enabled reports false. Enabled and Critical are also safe to call on a
// nil *Logger.
type Logger struct {
	PE            *slog.Logger
	Buffer        *slog.Logger
	SystolicArray *slog.Logger
	enabled       bool
}

// New builds a Logger writing level-appropriate records to w. When enabled
// is false, the returned Logger still exposes working category loggers, but
// callers are expected to check Enabled() before formatting — see
// package doc.
func New(w io.Writer, enabled bool) *Logger {
	level := LevelCritical
	if enabled {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	base := slog.New(handler)

	return &Logger{
		PE:            base.With("component", categoryPE),
		Buffer:        base.With("component", categoryBuffer),
		SystolicArray: base.With("component", categorySystolicArray),
		enabled:       enabled,
	}
}

// Discard returns a Logger that never emits anything, used wherever a
// simulation is constructed with log=false and no writer is needed at all.
func Discard() *Logger {
	return New(io.Discard, false)
}

// Enabled reports whether full tracing is active. Callers should guard
// expensive argument formatting with this, mirroring the `if log:` guards
// throughout the original simulator.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Critical logs a construction-time fatal error on the SystolicArray
// category logger regardless of the enabled flag — critical diagnostics are
// never silenced.
func (l *Logger) Critical(msg string, args ...any) {
	if l == nil {
		return
	}
	l.SystolicArray.Log(context.Background(), LevelCritical, msg, args...)
}

// Default returns a Logger writing to stderr, used by the CLI when no
// explicit writer is configured.
func Default(enabled bool) *Logger {
	return New(os.Stderr, enabled)
}
