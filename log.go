package smpp

import (
	"os"

	"github.com/rs/zerolog"
)

// NewDefaultLogger returns a console-formatted zerolog.Logger writing to
// stderr at info level. Pass it as Config.Logger when a disabled (zero
// value) Logger is not what's wanted.
func NewDefaultLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}
