// Package initdb provides the initdb command: the full pipeline from the
// Japan Post zip archives to a queryable store.
package initdb

import (
	"github.com/spf13/cobra"

	"github.com/zip2addr/zip2addr/cmd/application"
	"github.com/zip2addr/zip2addr/internal/cmd/cmdutil"
	"github.com/zip2addr/zip2addr/internal/cmd/format"
	"github.com/zip2addr/zip2addr/pkg/ingest"
)

// NewCommand creates the initdb command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "initdb",
		GroupID: "core",
		Short:   "Build the zip code store from the Japan Post archives",
		Long: `Extract KEN_ALL_ROME.CSV and KEN_ALL.CSV from their zip archives, merge
them by zip code, dump the merged records as JSON and load the dump into
a SQLite store.

An existing JSON dump or store is renamed with a timestamp suffix before
being replaced.`,
		Example: `  # Archives in ./data, outputs in ./data
  zip2addr initdb -d data

  # CSV files already extracted
  zip2addr initdb -d data --skip-extract

  # Custom output locations
  zip2addr initdb -d data --json /tmp/zip.json -O /var/lib/zip2addr/zipcodes.db`,
		Args: cobra.NoArgs,
	}

	sources := cmdutil.AddSourceFlags(cmd)
	archives := cmdutil.AddArchiveFlags(cmd)
	outputs := cmdutil.AddOutputFlags(cmd, cmdutil.FlagOut, true)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := app.IngestConfig()
		sources.Apply(cmd, &cfg)
		archives.Apply(cmd, &cfg)
		outputs.Apply(cmd, &cfg)

		res, err := ingest.Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		app.Logger().Info().
			Str("run_id", res.RunID).
			Int("records", res.Records).
			Str("db", res.Store.Path).
			Msg("initdb finished")

		return format.Value(cmd.OutOrStdout(), summarize(res), app.OutputFormat())
	}

	return cmd
}

// Summary is the printed result of a run.
type Summary struct {
	RunID   string `json:"run_id" yaml:"run_id"`
	Empty   bool   `json:"empty" yaml:"empty"`
	Records int    `json:"records" yaml:"records"`
	JSON    string `json:"json" yaml:"json"`
	DB      string `json:"db" yaml:"db"`
	Backup  string `json:"backup,omitempty" yaml:"backup,omitempty"`
	Skipped bool   `json:"load_skipped" yaml:"load_skipped"`
}

func summarize(res ingest.Result) Summary {
	return Summary{
		RunID:   res.RunID,
		Empty:   res.Empty,
		Records: res.Records,
		JSON:    res.JSONPath,
		DB:      res.Store.Path,
		Backup:  res.Store.Backup,
		Skipped: res.Store.Skipped,
	}
}
