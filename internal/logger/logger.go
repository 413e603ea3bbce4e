package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Development gets human-readable console
// output at debug level; production gets JSON at info level.
func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if env == "production" {
		return zerolog.New(os.Stdout).
			Level(zerolog.InfoLevel).
			With().Timestamp().Logger()
	}

	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(writer).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}
