// Package logging sets up the zerolog logger used for diagnostics. User
// facing output goes to stdout/stderr directly; the logger only carries
// debug traces such as git invocations.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel is the environment variable overriding the configured level.
const EnvLevel = "GIT_WORKLOG_LOG_LEVEL"

// ParseLevel parses a level name, falling back to warn for empty or
// unknown names.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return level
}

// ResolveLevel returns the first non-empty of the given level names, in
// priority order.
func ResolveLevel(names ...string) zerolog.Level {
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			return ParseLevel(n)
		}
	}
	return zerolog.WarnLevel
}

// New creates a console logger writing to w.
func New(w io.Writer, level zerolog.Level, color bool) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !color,
		TimeFormat: time.TimeOnly,
	}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
