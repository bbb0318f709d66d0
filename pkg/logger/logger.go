// Package logger defines the logging interface used across the server and
// a zerolog-backed implementation of it.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the minimal leveled logger the server components depend on.
// Args are alternating key/value pairs.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// ZeroLogger implements Logger on top of zerolog.
type ZeroLogger struct {
	logger zerolog.Logger
}

// New creates a ZeroLogger writing to w at the given level. An empty or
// unknown level means info.
func New(w io.Writer, level string) *ZeroLogger {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return FromZerolog(zerolog.New(w).Level(lvl).With().Timestamp().Logger())
}

// FromZerolog wraps an existing zerolog.Logger, for callers that already
// configured one.
func FromZerolog(l zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{logger: l}
}

func (z *ZeroLogger) Error(msg string, args ...any) { emit(z.logger.Error(), msg, args) }
func (z *ZeroLogger) Warn(msg string, args ...any)  { emit(z.logger.Warn(), msg, args) }
func (z *ZeroLogger) Info(msg string, args ...any)  { emit(z.logger.Info(), msg, args) }
func (z *ZeroLogger) Debug(msg string, args ...any) { emit(z.logger.Debug(), msg, args) }

func emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}

// Nop discards everything. Useful as a default in tests.
type Nop struct{}

func (Nop) Error(msg string, args ...any) {}
func (Nop) Warn(msg string, args ...any)  {}
func (Nop) Info(msg string, args ...any)  {}
func (Nop) Debug(msg string, args ...any) {}
