package reqflow

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the structured logging surface used by the client for debug
// output. keysAndValues alternate key, value.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ZerologLogger adapts a zerolog.Logger to Logger.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps l.
func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{log: l}
}

// NewSimpleLogger logs human-readable lines to stderr at debug level.
func NewSimpleLogger() *ZerologLogger {
	return NewConsoleLogger(os.Stderr, zerolog.DebugLevel)
}

// NewConsoleLogger logs human-readable lines to w at level and above.
func NewConsoleLogger(w io.Writer, level zerolog.Level) *ZerologLogger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return &ZerologLogger{
		log: zerolog.New(out).Level(level).With().Timestamp().Str("component", "reqflow").Logger(),
	}
}

func (l *ZerologLogger) Debug(msg string, keysAndValues ...any) {
	l.event(l.log.Debug(), msg, keysAndValues)
}

func (l *ZerologLogger) Info(msg string, keysAndValues ...any) {
	l.event(l.log.Info(), msg, keysAndValues)
}

func (l *ZerologLogger) Warn(msg string, keysAndValues ...any) {
	l.event(l.log.Warn(), msg, keysAndValues)
}

func (l *ZerologLogger) Error(msg string, keysAndValues ...any) {
	l.event(l.log.Error(), msg, keysAndValues)
}

// Zerolog returns the wrapped logger.
func (l *ZerologLogger) Zerolog() zerolog.Logger { return l.log }

func (l *ZerologLogger) event(e *zerolog.Event, msg string, keysAndValues []any) {
	if e == nil {
		return
	}
	if len(keysAndValues)%2 == 1 {
		keysAndValues = append(keysAndValues, "(MISSING)")
	}
	e.Fields(keysAndValues).Msg(msg)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
