// Package logger builds the zerolog loggers used by the notecrypt CLI.
package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a human-readable console logger writing to w at lvl
func New(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("role", "cli").
		Logger()
}

// Nop returns a logger that discards everything
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
