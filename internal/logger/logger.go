package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger and returns it. Debug mode logs
// human readable output with callers, otherwise output is JSON.
func Setup(debug bool) zerolog.Logger {
	log.Logger = setup(os.Stderr, debug)
	return log.Logger
}

func setup(w io.Writer, debug bool) zerolog.Logger {
	if debug {
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Caller().Logger()
	}

	return zerolog.New(w).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
}
