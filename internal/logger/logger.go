package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger: console output in development, JSON
// with unix timestamps elsewhere. Unknown levels fall back to info.
func Init(env, level string) {
	InitWithWriter(env, level, os.Stderr)
}

func InitWithWriter(env, level string, w io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "development" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// New returns a child of the global logger tagged with component.
func New(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
