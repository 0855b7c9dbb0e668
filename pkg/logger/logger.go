package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level string
	// JSON selects structured output; otherwise a console writer is used
	JSON   bool
	Output io.Writer
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// New creates a zerolog logger from cfg
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "appointment-scheduler").
		Logger()
}

// Setup installs the logger globally. Contexts without a logger of their
// own fall back to it.
func Setup(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = New(cfg)
	zerolog.DefaultContextLogger = &log.Logger
}
