// Package logging builds the leveled zerolog loggers used across lunas.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel parses a log level string. Unknown values fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warning":
		return zerolog.WarnLevel
	case "":
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// New creates a logger writing to w. With pretty set the output is the
// human-readable console format, otherwise one JSON object per line.
func New(level zerolog.Level, w io.Writer, pretty bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Setup configures the global logger for env and returns it. Local and
// development environments get console output.
func Setup(env string, level zerolog.Level, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(level)

	logger := New(level, w, IsDevelopment(env))
	log.Logger = logger
	return logger
}

// IsDevelopment reports whether env selects console logging.
func IsDevelopment(env string) bool {
	switch strings.ToLower(env) {
	case "local", "development", "dev":
		return true
	}
	return false
}

// Discard returns a logger that discards all output.
func Discard() zerolog.Logger {
	return zerolog.Nop()
}
