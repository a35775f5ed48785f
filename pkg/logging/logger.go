// Package logging provides structured logging for zip2addr using zerolog.
// Terminals get human-readable console output; pipes and files get JSON.
//
// Components never reach for a global logger on their own: the CLI builds a
// logger from configuration and injects it, and library code falls back to
// Default only when nothing was injected.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("file", "KEN_ALL.CSV").Int("records", 124000).Msg("Merged source")
//
//	ctx := logging.WithRunID(context.Background(), runID)
//	logging.FromContext(ctx).Warn().Int("line", 12).Msg("Skipped unparseable row")
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger = newDefaultLogger()

// newDefaultLogger reads LOG_LEVEL, LOG_FORMAT and NO_COLOR so library code
// used without the CLI still logs sensibly. DEBUG=1 is a shortcut for debug.
func newDefaultLogger() zerolog.Logger {
	level := os.Getenv("LOG_LEVEL")
	if level == "" && os.Getenv("DEBUG") != "" {
		level = "debug"
	}
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "auto"
	}

	cfg := DefaultConfig()
	cfg.Format = format
	out, terminal := openOutput(cfg.Output)
	return zerolog.New(writerFor(out, terminal, cfg)).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's log.Logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// OrDefault returns logger, or the default logger when logger is nil.
func OrDefault(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		return Default()
	}
	return logger
}
