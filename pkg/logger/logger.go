// Package logger provides the shared zerolog logger for the service.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a console logger at the given level ("debug", "info", "warn", "error").
// An unknown or empty level falls back to info.
func New(level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	log := zerolog.New(output).With().Timestamp().Logger()

	switch level {
	case "debug":
		log = log.Level(zerolog.DebugLevel)
	case "warn":
		log = log.Level(zerolog.WarnLevel)
	case "error":
		log = log.Level(zerolog.ErrorLevel)
	default:
		log = log.Level(zerolog.InfoLevel)
	}

	return log
}
