// Package app provides the application context and dependency management
// for the zip2addr CLI. It centralizes configuration, logging and store
// access, and hands itself to commands as an application.Application.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zip2addr/zip2addr/cmd/application"
	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/ingest"
	"github.com/zip2addr/zip2addr/pkg/store"
)

// App represents the zip2addr application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the environment and the
// default config file locations; options override it.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value, empty for auto-detection.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// IngestConfig returns pipeline settings from the configuration, with the
// application logger attached.
func (a *App) IngestConfig() ingest.Config {
	cfg := a.config.IngestConfig()
	cfg.Logger = a.logger
	return cfg
}

// Store opens the store at path read-only. An empty path means the
// configured db_path.
func (a *App) Store(ctx context.Context, path string) (store.ReadCloser, error) {
	if path == "" {
		path = a.config.DBPath
	}
	s, err := store.Open(ctx, path, true)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("db", path).Msg("Opened store")
	return s, nil
}

// Shutdown performs graceful shutdown of the application. Commands own the
// stores they open, so there is nothing shared to release.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Application shutdown")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
