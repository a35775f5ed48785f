// Package save writes merged zip code records to disk and reads them back.
//
// Existing files are never overwritten in place: BackupIfExists first moves
// them aside, and new content is written to a temporary file in the same
// directory and renamed over the target.
package save

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zip2addr/zip2addr/pkg/logging"
)

// Format is the structured-text encoding of a dump.
type Format int

// Format constants.
const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
)

// IsValid checks if the format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatAuto, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// FormatFromPath picks YAML for .yaml and .yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Options is the configuration for save.
type Options struct {
	writer       io.Writer
	format       Format
	logger       *zerolog.Logger
	backupSuffix string
	noBackup     bool
}

// Writer returns the writer for the save options.
func (s *Options) Writer() io.Writer {
	return s.writer
}

// Format returns the format for the save options.
func (s *Options) Format() Format {
	return s.format
}

// Logger returns the configured logger, or the default one.
func (s *Options) Logger() *zerolog.Logger {
	return logging.OrDefault(s.logger)
}

// resolveFormat returns the explicit format, or the one implied by path.
func (s *Options) resolveFormat(path string) Format {
	if s.format == FormatAuto {
		return FormatFromPath(path)
	}
	return s.format
}

// Defaults returns the default save options.
func Defaults() *Options {
	return &Options{
		format: FormatAuto,
	}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(s)
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithFormat for custom output format.
func WithFormat(f Format) Option {
	return func(s *Options) {
		s.format = f
	}
}

// WithWriter sends the encoded records to w instead of a file.
func WithWriter(w io.Writer) Option {
	return func(s *Options) {
		s.writer = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Options) {
		s.logger = logger
	}
}

// WithBackupSuffix fixes the suffix used when an existing dump is moved aside.
func WithBackupSuffix(suffix string) Option {
	return func(s *Options) {
		s.backupSuffix = suffix
	}
}

// WithoutBackup overwrites an existing dump without keeping a copy.
func WithoutBackup() Option {
	return func(s *Options) {
		s.noBackup = true
	}
}
