// Package zerolog adapts github.com/rs/zerolog to the domain Logger interface.
package zerolog

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/ochairo/xrelease/internal/domain/interfaces"
)

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// ParseLevel converts a level name to a zerolog.Level
func ParseLevel(name string) (zerolog.Level, error) {
	level, ok := logLevels[strings.ToLower(name)]
	if !ok {
		return zerolog.NoLevel, eris.Errorf("invalid log level %q (must be one of debug, info, warn or error)", name)
	}
	return level, nil
}

// Logger implements interfaces.Logger on top of a zerolog.Logger
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a logger writing JSON events to w at the given level.
// Pass a ConsoleWriter as w for human-readable output.
func NewLogger(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{
		zl: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// Debug logs debug-level messages
func (l *Logger) Debug(msg string, fields ...interfaces.Field) {
	emit(l.zl.Debug(), msg, fields)
}

// Info logs informational messages
func (l *Logger) Info(msg string, fields ...interfaces.Field) {
	emit(l.zl.Info(), msg, fields)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, fields ...interfaces.Field) {
	emit(l.zl.Warn(), msg, fields)
}

// Error logs error messages
func (l *Logger) Error(msg string, fields ...interfaces.Field) {
	emit(l.zl.Error(), msg, fields)
}

// With returns a child logger carrying fields on every event
func (l *Logger) With(fields ...interfaces.Field) interfaces.Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		switch v := f.Value.(type) {
		case error:
			ctx = ctx.AnErr(f.Key, v)
		case string:
			ctx = ctx.Str(f.Key, v)
		case fmt.Stringer:
			ctx = ctx.Str(f.Key, v.String())
		default:
			ctx = ctx.Interface(f.Key, v)
		}
	}
	return &Logger{zl: ctx.Logger()}
}

func emit(evt *zerolog.Event, msg string, fields []interfaces.Field) {
	// disabled levels return a nil event
	if evt == nil {
		return
	}

	for _, f := range fields {
		switch v := f.Value.(type) {
		case error:
			evt = evt.AnErr(f.Key, v)
		case string:
			evt = evt.Str(f.Key, v)
		case fmt.Stringer:
			evt = evt.Str(f.Key, v.String())
		default:
			evt = evt.Interface(f.Key, v)
		}
	}
	evt.Msg(msg)
}

func init() {
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, false)
	}
}
