package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger for a job.
// Console output is used on developer machines, JSON everywhere else.
// debug overrides the configured level.
func Setup(job, level string, console, debug bool) {
	SetupWriter(os.Stdout, job, level, console, debug)
}

// SetupWriter is Setup with an explicit destination
func SetupWriter(out io.Writer, job, level string, console, debug bool) {
	if console {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("job", job).Logger()

	zerolog.SetGlobalLevel(ParseLevel(level, debug))

	log.Debug().
		Str("level", zerolog.GlobalLevel().String()).
		Msg("Logger initialized")
}

// ParseLevel resolves a configured level name, falling back to info
func ParseLevel(level string, debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}

	lvl := strings.ToLower(strings.TrimSpace(level))
	if lvl == "" {
		return zerolog.InfoLevel
	}

	parsed, err := zerolog.ParseLevel(lvl)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
