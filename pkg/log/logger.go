// Package log builds the slog loggers used by stepflow binaries and sinks.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vnykmshr/stepflow/pkg/common/validation"
)

// Config selects the level and encoding of a logger.
type Config struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | text

	// Output defaults to os.Stdout.
	Output io.Writer `mapstructure:"-"`
}

// Validate rejects unknown levels and formats. Empty values are allowed.
func (c Config) Validate() error {
	if err := validation.ValidateOneOf("log", "level", strings.ToLower(c.Level), "debug", "info", "warn", "error"); err != nil {
		return err
	}
	return validation.ValidateOneOf("log", "format", strings.ToLower(c.Format), "json", "text")
}

// NewLogger creates a logger from cfg. A nil cfg yields an info-level JSON
// logger on stdout.
func NewLogger(cfg *Config) (*slog.Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler = slog.NewJSONHandler(out, opts)
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), nil
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
