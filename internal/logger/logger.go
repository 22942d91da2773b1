// Package logger provides a configured zerolog logger.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a service-tagged logger writing JSON to w. A nil w logs to
// stdout; pass io.Discard when stdout carries a protocol transport.
func New(serviceName string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return zerolog.New(w).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// NewConsole returns a human-friendly logger for interactive use.
func NewConsole(serviceName string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
