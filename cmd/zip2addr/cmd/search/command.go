// Package search provides the search command: zip code lookups against
// the store.
package search

import (
	"github.com/spf13/cobra"

	"github.com/zip2addr/zip2addr/cmd/application"
	"github.com/zip2addr/zip2addr/internal/cmd/cmdutil"
	"github.com/zip2addr/zip2addr/internal/cmd/format"
	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/store"
)

// NewCommand creates the search command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		dbPath string
		exact  bool
	)

	cmd := &cobra.Command{
		Use:     "search <zipcode-or-prefix>",
		Aliases: []string{"lookup"},
		GroupID: "core",
		Short:   "Look up addresses by zip code",
		Long: `Look up addresses in the store. A full 7-digit zip code returns its
address; fewer digits list every zip code starting with them. A hyphen as
in 086-1834 is ignored.`,
		Example: `  zip2addr search 0861834
  zip2addr search 086 --limit 20 -o wide
  zip2addr search 1000001 -o json`,
		Args: cobra.ExactArgs(1),
	}

	page := cmdutil.AddPageFlags(cmd)
	cmd.Flags().StringVar(&dbPath, cmdutil.FlagDB, "", "Store path (default: configured db_path)")
	cmd.Flags().BoolVar(&exact, "exact", false, "Require an exact 7-digit match")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		query, err := normalize(args[0])
		if err != nil {
			return err
		}
		if exact && len(query) != constants.ZipcodeLength {
			return errors.NewValidationError("zipcode", args[0], "--exact needs 7 digits")
		}

		reader, err := app.Store(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		defer func() { _ = reader.Close() }()

		entries, err := lookup(cmd, reader, query, page)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.NewNotFoundError("zipcode", query)
		}

		return format.Entries(cmd.OutOrStdout(), entries, app.OutputFormat())
	}

	return cmd
}

func lookup(cmd *cobra.Command, reader store.Reader, query string, page *cmdutil.PageFlags) ([]store.Entry, error) {
	if len(query) == constants.ZipcodeLength {
		e, err := reader.FindByZip(cmd.Context(), query)
		if err != nil {
			return nil, err
		}
		return []store.Entry{e}, nil
	}
	return reader.FindByPrefix(cmd.Context(), query, page.Skip, page.Limit)
}

// normalize strips hyphens and checks the query is 1 to 7 digits.
func normalize(arg string) (string, error) {
	out := make([]byte, 0, len(arg))
	for i := range len(arg) {
		c := arg[i]
		switch {
		case c == '-':
			continue
		case c >= '0' && c <= '9':
			out = append(out, c)
		default:
			return "", errors.NewValidationError("zipcode", arg, "must be digits")
		}
	}
	if len(out) == 0 || len(out) > constants.ZipcodeLength {
		return "", errors.NewValidationError("zipcode", arg, "must be 1 to 7 digits")
	}
	return string(out), nil
}
