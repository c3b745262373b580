package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development gets a human console writer,
// everything else structured JSON.
func New(environment string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Str("service", "giacomo-api").
		Logger()
}
