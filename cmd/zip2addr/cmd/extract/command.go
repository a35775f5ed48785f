// Package extract provides the extract command.
package extract

import (
	"github.com/spf13/cobra"

	"github.com/zip2addr/zip2addr/cmd/application"
	"github.com/zip2addr/zip2addr/internal/cmd/format"
	"github.com/zip2addr/zip2addr/pkg/archive"
)

// Result is the printed outcome.
type Result struct {
	Archive string `json:"archive" yaml:"archive"`
	Member  string `json:"member" yaml:"member"`
	Path    string `json:"path" yaml:"path"`
}

// NewCommand creates the extract command.
func NewCommand(app application.Application) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:     "extract <archive> <member>",
		GroupID: "management",
		Short:   "Extract one CSV file from a zip archive",
		Example: `  zip2addr extract data/ken_all.zip KEN_ALL.CSV --outdir data`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := archive.ExtractFile(args[0], outDir, args[1])
			if err != nil {
				return err
			}

			app.Logger().Info().
				Str("archive", args[0]).
				Str("member", args[1]).
				Str("path", path).
				Msg("Extracted")

			return format.Value(cmd.OutOrStdout(), Result{Archive: args[0], Member: args[1], Path: path}, app.OutputFormat())
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", ".", "Directory to extract into")

	return cmd
}
