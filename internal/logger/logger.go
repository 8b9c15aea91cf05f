// Package logger provides the small context-carried leveled logger used
// throughout this module, modeled on the call-site conventions of the
// teacher's tools/lib/logger package (logger.WithLogger, logger.Infof,
// logger.Errorf, ...itself not present in the retrieved pack). This module
// sets no logging policy of its own: callers attach a *Logger to the
// context they pass to Runtime.Run; if none is attached, lines at InfoLevel
// and above go to os.Stderr.
package logger

import (
	"context"
	"io"
	"log"
	"os"
)

// Level is a logging verbosity level, ordered least to most verbose.
type Level int

const (
	ErrorLevel Level = iota
	WarningLevel
	InfoLevel
	DebugLevel
)

// Logger writes leveled, prefixed lines to an io.Writer.
type Logger struct {
	level  Level
	prefix string
	out    *log.Logger
}

// NewLogger returns a Logger that writes to out at the given level. prefix
// is prepended to every line, matching the teacher's per-component prefix
// convention (e.g. "upgrade-test: ").
func NewLogger(level Level, out io.Writer, prefix string) *Logger {
	return &Logger{level: level, prefix: prefix, out: log.New(out, prefix, log.LstdFlags)}
}

func (l *Logger) logf(level Level, tag string, format string, args ...any) {
	if l == nil || level > l.level {
		return
	}
	l.out.Printf("%s "+format, append([]any{tag}, args...)...)
}

type contextKey struct{}

// WithLogger attaches l to ctx; retrieve it with FromContext.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the Logger attached to ctx, or a Logger writing to
// os.Stderr at InfoLevel if none was attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(contextKey{}).(*Logger); ok && l != nil {
		return l
	}
	return NewLogger(InfoLevel, os.Stderr, "")
}

func Debugf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).logf(DebugLevel, "[DEBUG]", format, args...)
}

func Infof(ctx context.Context, format string, args ...any) {
	FromContext(ctx).logf(InfoLevel, "[INFO]", format, args...)
}

func Warningf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).logf(WarningLevel, "[WARN]", format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).logf(ErrorLevel, "[ERROR]", format, args...)
}
