// Package logging configures the zerolog loggers of the janitor.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLogLevel overrides the log level (debug, info, warn, error, disabled).
const EnvLogLevel = "JANITOR_LOG_LEVEL"

// New creates a human readable logger on stdout for component.
// The level is info, debug when verbose, unless EnvLogLevel says otherwise.
func New(component string, verbose bool) zerolog.Logger {
	return NewWithWriter(os.Stdout, component, level(os.Getenv(EnvLogLevel), verbose))
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, component string, lvl zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}
	return zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

func level(raw string, verbose bool) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	}
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
