// Package logging builds the process zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // console output instead of JSON
}

// New creates a logger writing to w, or stderr when w is nil. Unknown
// levels fall back to info.
func New(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Component returns a child logger tagged with component.
func Component(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
