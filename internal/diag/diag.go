// Package diag provides the leveled diagnostic logger used by stretch
// engines. Debug levels follow the engine convention: 0 reports warnings and
// errors only, 1 adds lifecycle information, 2 adds per-call debug detail,
// and 3 adds per-frame trace messages.
package diag

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/google/uuid"
)

// LevelTrace is the slog level used for per-frame messages.
const LevelTrace = slog.LevelDebug - 4

// MaxLevel is the most verbose debug level.
const MaxLevel = 3

// defaultLevel is read by New when an engine is constructed.
var defaultLevel atomic.Int32

// SetDefaultLevel sets the process-wide debug level used by loggers created
// afterwards. Values are clamped to [0, MaxLevel].
func SetDefaultLevel(level int) {
	defaultLevel.Store(int32(clampLevel(level)))
}

// DefaultLevel returns the process-wide debug level.
func DefaultLevel() int {
	return int(defaultLevel.Load())
}

// Logger is a component logger with its own debug level.
type Logger struct {
	level atomic.Int32
	id    string
	log   *slog.Logger
}

// New returns a Logger for component, tagged with a fresh instance id. A nil
// base logs text to stderr at trace verbosity, leaving filtering to the
// debug level.
func New(base *slog.Logger, component string) *Logger {
	if base == nil {
		base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: LevelTrace}))
	}

	id := uuid.NewString()
	l := &Logger{
		id: id,
		log: base.With(
			slog.String("component", component),
			slog.String("engine", id),
		),
	}
	l.level.Store(int32(DefaultLevel()))

	return l
}

// Discard returns a Logger that drops every message.
func Discard() *Logger {
	return New(slog.New(slog.DiscardHandler), "discard")
}

// ID returns the instance id attached to every message.
func (l *Logger) ID() string {
	return l.id
}

// SetLevel sets this logger's debug level, clamped to [0, MaxLevel].
func (l *Logger) SetLevel(level int) {
	l.level.Store(int32(clampLevel(level)))
}

// Level returns this logger's debug level.
func (l *Logger) Level() int {
	return int(l.level.Load())
}

// Enabled reports whether messages at debug level would be emitted.
func (l *Logger) Enabled(level int) bool {
	return l != nil && level <= l.Level()
}

// Log emits msg at the slog level matching debug level when enabled.
func (l *Logger) Log(level int, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	l.log.Log(context.Background(), slogLevel(level), msg, args...)
}

// Warn emits msg regardless of the debug level.
func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		return
	}
	l.log.Warn(msg, args...)
}

func slogLevel(level int) slog.Level {
	switch {
	case level <= 1:
		return slog.LevelInfo
	case level == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

func clampLevel(level int) int {
	return min(max(level, 0), MaxLevel)
}
