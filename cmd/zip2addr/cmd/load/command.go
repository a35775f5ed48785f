// Package load provides the load command: load a JSON dump into the store.
package load

import (
	"github.com/spf13/cobra"

	"github.com/zip2addr/zip2addr/cmd/application"
	"github.com/zip2addr/zip2addr/internal/cmd/cmdutil"
	"github.com/zip2addr/zip2addr/internal/cmd/format"
	"github.com/zip2addr/zip2addr/pkg/store"
)

// NewCommand creates the load command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "load",
		GroupID: "management",
		Short:   "Load a JSON dump into the store",
		Long: `Load the records of a JSON (or YAML) dump into a new SQLite store.

The store is built next to the target and renamed into place, so readers
never see a partial store. An existing store is kept with a timestamp
suffix. A missing or empty dump is reported and nothing is written.`,
		Example: `  zip2addr load --json data/zipcodes.json --db data/zipcodes.db`,
		Args:    cobra.NoArgs,
	}

	outputs := cmdutil.AddOutputFlags(cmd, cmdutil.FlagDB, true)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := app.IngestConfig()
		outputs.Apply(cmd, &cfg)

		res, err := store.LoadIntoStore(cmd.Context(), cfg.JSONPath, cfg.DBPath,
			store.WithLogger(app.Logger()),
			store.WithCommitEvery(cfg.CommitEvery),
		)
		if err != nil {
			return err
		}

		return format.Value(cmd.OutOrStdout(), res, app.OutputFormat())
	}

	return cmd
}
