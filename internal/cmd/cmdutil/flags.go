// Package cmdutil provides shared flags for the zip2addr pipeline commands.
// Flag values overlay the configured ingest.Config only when the user set
// them, so config file and environment settings survive otherwise.
package cmdutil

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/ingest"
)

// Flag names shared across commands.
const (
	FlagDataDir     = "datadir"
	FlagRoman       = "roman"
	FlagKana        = "kana"
	FlagRomanZip    = "roman-zip"
	FlagKanaZip     = "kana-zip"
	FlagWorkDir     = "workdir"
	FlagSkipExtract = "skip-extract"
	FlagJSON        = "json"
	FlagOut         = "out"
	FlagDB          = "db"
	FlagCommitEvery = "commit-every"
	FlagSkip        = "skip"
	FlagLimit       = "limit"
)

// SourceFlags names the CSV inputs.
type SourceFlags struct {
	DataDir string
	Roman   string
	Kana    string
}

// AddSourceFlags adds --datadir, --roman and --kana.
func AddSourceFlags(cmd *cobra.Command) *SourceFlags {
	flags := &SourceFlags{}

	cmd.Flags().StringVarP(&flags.DataDir, FlagDataDir, "d", constants.DefaultDataDir,
		"Directory holding the input files; default outputs are written here too")
	cmd.Flags().StringVarP(&flags.Roman, FlagRoman, "R", constants.RomanCSVFilename,
		"Roman CSV file name")
	cmd.Flags().StringVarP(&flags.Kana, FlagKana, "K", constants.KanaCSVFilename,
		"Kana CSV file name")

	return flags
}

// Apply overlays the flags the user set onto cfg. Output paths that were
// derived from the old data directory move with --datadir.
func (f *SourceFlags) Apply(cmd *cobra.Command, cfg *ingest.Config) {
	if cmd.Flags().Changed(FlagDataDir) {
		old := cfg.DataDir
		cfg.DataDir = f.DataDir
		cfg.JSONPath = rebase(cfg.JSONPath, old, f.DataDir)
		cfg.DBPath = rebase(cfg.DBPath, old, f.DataDir)
	}
	if cmd.Flags().Changed(FlagRoman) {
		cfg.RomanCSV = f.Roman
	}
	if cmd.Flags().Changed(FlagKana) {
		cfg.KanaCSV = f.Kana
	}
}

// ArchiveFlags names the zip archives and extraction behavior.
type ArchiveFlags struct {
	RomanZip    string
	KanaZip     string
	WorkDir     string
	SkipExtract bool
}

// AddArchiveFlags adds --roman-zip, --kana-zip, --workdir and --skip-extract.
func AddArchiveFlags(cmd *cobra.Command) *ArchiveFlags {
	flags := &ArchiveFlags{}

	cmd.Flags().StringVar(&flags.RomanZip, FlagRomanZip, constants.RomanZipFilename,
		"Roman zip archive file name")
	cmd.Flags().StringVar(&flags.KanaZip, FlagKanaZip, constants.KanaZipFilename,
		"Kana zip archive file name")
	cmd.Flags().StringVar(&flags.WorkDir, FlagWorkDir, "",
		"Directory for extracted CSV files (default: temporary directory, removed afterwards)")
	cmd.Flags().BoolVar(&flags.SkipExtract, FlagSkipExtract, false,
		"Use CSV files already present in --datadir")

	return flags
}

// Apply overlays the flags the user set onto cfg.
func (f *ArchiveFlags) Apply(cmd *cobra.Command, cfg *ingest.Config) {
	if cmd.Flags().Changed(FlagRomanZip) {
		cfg.RomanZip = f.RomanZip
	}
	if cmd.Flags().Changed(FlagKanaZip) {
		cfg.KanaZip = f.KanaZip
	}
	if cmd.Flags().Changed(FlagWorkDir) {
		cfg.WorkDir = f.WorkDir
	}
	if f.SkipExtract {
		cfg.SkipExtract = true
	}
}

// OutputFlags names the JSON dump and the store file.
type OutputFlags struct {
	JSON        string
	DB          string
	CommitEvery int

	dbFlag string
}

// AddOutputFlags adds --json, the store path flag and optionally
// --commit-every. dbFlag is FlagOut (with -O) or FlagDB.
func AddOutputFlags(cmd *cobra.Command, dbFlag string, withCommit bool) *OutputFlags {
	flags := &OutputFlags{dbFlag: dbFlag}

	cmd.Flags().StringVar(&flags.JSON, FlagJSON, constants.JSONFilename, "JSON dump path")
	if dbFlag == FlagOut {
		cmd.Flags().StringVarP(&flags.DB, FlagOut, "O", constants.DatabaseFilename, "Store (SQLite) path")
	} else {
		cmd.Flags().StringVar(&flags.DB, dbFlag, constants.DatabaseFilename, "Store (SQLite) path")
	}
	if withCommit {
		cmd.Flags().IntVar(&flags.CommitEvery, FlagCommitEvery, 0,
			"Commit every N records (0 commits the whole load at once)")
	}

	return flags
}

// Apply overlays the flags the user set onto cfg.
func (f *OutputFlags) Apply(cmd *cobra.Command, cfg *ingest.Config) {
	if cmd.Flags().Changed(FlagJSON) {
		cfg.JSONPath = f.JSON
	}
	if cmd.Flags().Changed(f.dbFlag) {
		cfg.DBPath = f.DB
	}
	if cmd.Flags().Lookup(FlagCommitEvery) != nil && cmd.Flags().Changed(FlagCommitEvery) {
		cfg.CommitEvery = f.CommitEvery
	}
}

// PageFlags holds --skip and --limit.
type PageFlags struct {
	Skip  int
	Limit int
}

// AddPageFlags adds --skip and --limit.
func AddPageFlags(cmd *cobra.Command) *PageFlags {
	flags := &PageFlags{}

	cmd.Flags().IntVar(&flags.Skip, FlagSkip, 0, "Number of results to skip")
	cmd.Flags().IntVarP(&flags.Limit, FlagLimit, "l", constants.DefaultPageSize,
		"Maximum number of results")

	return flags
}

// rebase moves path from oldDir to newDir when it sits directly in oldDir.
func rebase(path, oldDir, newDir string) string {
	if path == "" || filepath.Join(oldDir, filepath.Base(path)) != filepath.Clean(path) {
		return path
	}
	return filepath.Join(newDir, filepath.Base(path))
}
