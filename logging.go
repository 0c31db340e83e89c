package archway

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the structured-logging seam installed with World.SetLogger.
// The execution graph logs one Debug line as each system starts; nothing
// else is logged through it. It is satisfied by *zerolog.Logger directly.
type Logger interface {
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	Debug() *zerolog.Event
}

// zlogAdapter wraps zerolog.Logger to satisfy Logger (zerolog's own
// method set already matches; the adapter exists so callers can pass a
// bare zerolog.Logger value without needing a pointer receiver).
type zlogAdapter struct {
	l zerolog.Logger
}

func (z zlogAdapter) Info() *zerolog.Event  { return z.l.Info() }
func (z zlogAdapter) Warn() *zerolog.Event  { return z.l.Warn() }
func (z zlogAdapter) Error() *zerolog.Event { return z.l.Error() }
func (z zlogAdapter) Debug() *zerolog.Event { return z.l.Debug() }

// NewLogger builds a console-writer zerolog Logger at the given level,
// suitable for World.SetLogger during development.
func NewLogger(level zerolog.Level) Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return zlogAdapter{l: zl}
}

// noopLogger is the World default — every call is a cheap no-op so a
// World built without SetLogger pays nothing for diagnostics.
type noopLogger struct{}

func (noopLogger) Info() *zerolog.Event  { return disabledEvent }
func (noopLogger) Warn() *zerolog.Event  { return disabledEvent }
func (noopLogger) Error() *zerolog.Event { return disabledEvent }
func (noopLogger) Debug() *zerolog.Event { return disabledEvent }

var disabledEvent = zerolog.New(nil).Level(zerolog.Disabled).Info()
