// Package application provides the application interface for zip2addr commands.
//
// The Application interface is the contract between the App struct in
// cmd/zip2addr/app and the command implementations. Commands accept the
// interface so they can be tested against application.Mock.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            reader, err := app.Store(cmd.Context(), "")
//	            if err != nil {
//	                return err
//	            }
//	            // ... query reader
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zip2addr/zip2addr/pkg/ingest"
	"github.com/zip2addr/zip2addr/pkg/store"
)

// Application provides what commands need from the running program.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// IngestConfig returns the pipeline configuration assembled from
	// config files, environment and defaults. Commands overlay their
	// flags on top of the returned value.
	IngestConfig() ingest.Config

	// Store opens the address store at path in read-only mode.
	// An empty path means the configured db_path. The caller owns the
	// returned reader and must close it.
	Store(ctx context.Context, path string) (store.ReadCloser, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
