// Package logging provides the levelled logger handle that autoscribe passes
// into each component. There is no package-level default logger: callers
// construct one with New (or Discard in tests) and hand it down explicitly.
package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level is the minimum severity a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

var (
	debugLabel   = color.New(color.FgHiBlack)
	infoLabel    = color.New(color.FgCyan)
	warnLabel    = color.New(color.FgYellow, color.Bold)
	errorLabel   = color.New(color.FgRed, color.Bold)
	successLabel = color.New(color.FgGreen)
)

// Logger writes levelled, optionally coloured lines to a writer.
// It is safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	w        io.Writer
	level    Level
	useColor bool
}

// New creates a Logger writing to w at the given minimum level.
func New(w io.Writer, level Level, useColor bool) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{w: w, level: level, useColor: useColor}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, LevelError+1, false)
}

// Level returns the logger's minimum level.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelError + 1
	}
	return l.level
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.log(LevelDebug, debugLabel, "debug", format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.log(LevelInfo, infoLabel, "info", format, args...)
}

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.log(LevelWarn, warnLabel, "warn", format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.log(LevelError, errorLabel, "error", format, args...)
}

// Successf logs an info-level line prefixed with a check mark.
func (l *Logger) Successf(format string, args ...any) {
	l.log(LevelInfo, successLabel, "✓", format, args...)
}

func (l *Logger) log(level Level, label *color.Color, name, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}

	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.useColor {
		fmt.Fprintf(l.w, "%s %s\n", label.Sprint(name), msg)
		return
	}
	fmt.Fprintf(l.w, "%s %s\n", name, msg)
}
