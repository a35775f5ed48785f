// Package convert provides the convert command: merge the roman and kana
// CSV files and dump the result as JSON or YAML.
package convert

import (
	"github.com/spf13/cobra"

	"github.com/zip2addr/zip2addr/cmd/application"
	"github.com/zip2addr/zip2addr/internal/cmd/cmdutil"
	"github.com/zip2addr/zip2addr/internal/cmd/format"
	"github.com/zip2addr/zip2addr/pkg/ingest"
)

// NewCommand creates the convert command.
func NewCommand(app application.Application) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "convert",
		GroupID: "management",
		Short:   "Merge the CSV files and dump them as JSON",
		Long: `Parse the Shift-JIS encoded KEN_ALL_ROME.CSV and KEN_ALL.CSV files from
--datadir, merge rows by zip code and write the merged records to --out.
A .yaml or .yml extension writes YAML instead of JSON.`,
		Example: `  zip2addr convert -d data -O data/zipcodes.json`,
		Args:    cobra.NoArgs,
	}

	sources := cmdutil.AddSourceFlags(cmd)
	cmd.Flags().StringVarP(&out, cmdutil.FlagOut, "O", "zipcodes.json", "Dump path")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := app.IngestConfig()
		sources.Apply(cmd, &cfg)
		if cmd.Flags().Changed(cmdutil.FlagOut) {
			cfg.JSONPath = out
		}
		cfg.SkipExtract = true
		cfg.SkipLoad = true

		res, err := ingest.Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		if res.Empty {
			app.Logger().Warn().Msg("Nothing was written")
		}
		return format.FileStats(cmd.OutOrStdout(), res.Files, app.OutputFormat())
	}

	return cmd
}
