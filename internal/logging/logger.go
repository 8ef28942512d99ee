// Package logging provides structured logging for panelctl.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Format selects how log lines are written.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

const consoleTimeFormat = "15:04:05"

// Logger wraps zerolog. Logs go to stderr by default so stdout stays
// reserved for tables and --json output.
type Logger struct {
	zlog zerolog.Logger
}

// NewLogger creates a logger writing to w in the given format. Unknown
// formats are written as console lines.
func NewLogger(format Format, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	if format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	}
	return &Logger{zlog: zerolog.New(w).With().Timestamp().Logger()}
}

// Setup builds the CLI logger from the logging settings and applies the
// level globally. debug forces debug level regardless of level.
func Setup(format, level string, debug bool, w io.Writer) *Logger {
	l := NewLogger(Format(strings.ToLower(format)), w)
	lvl := ParseLevel(level)
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return l
}

// NewDefaultCLILogger creates a console logger on stderr.
func NewDefaultCLILogger() *Logger {
	return NewLogger(FormatConsole, os.Stderr)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

func (l *Logger) Info() *zerolog.Event { return l.zlog.Info() }
func (l *Logger) Error() *zerolog.Event { return l.zlog.Error() }
func (l *Logger) Debug() *zerolog.Event { return l.zlog.Debug() }
func (l *Logger) Warn() *zerolog.Event { return l.zlog.Warn() }

// Named returns a child logger tagged with a component field.
func (l *Logger) Named(component string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("component", component).Logger()}
}

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: consoleTimeFormat})
}
