// Package ingest runs the full zip code pipeline: extract the Japan Post
// archives, merge the CSV files, dump the merged records and load the dump
// into a store.
package ingest

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zip2addr/zip2addr/pkg/archive"
	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/logging"
	"github.com/zip2addr/zip2addr/pkg/postal"
	"github.com/zip2addr/zip2addr/pkg/save"
	"github.com/zip2addr/zip2addr/pkg/store"
)

// Config names the inputs and outputs of a run.
type Config struct {
	// DataDir holds the zip archives, or the CSV files with SkipExtract.
	DataDir string
	// WorkDir receives the extracted CSV files. Empty means a temporary
	// directory under DataDir that is removed after the run.
	WorkDir string

	RomanZip string
	KanaZip  string
	RomanCSV string
	KanaCSV  string

	JSONPath string
	DBPath   string

	// SkipExtract reads RomanCSV and KanaCSV straight from DataDir.
	SkipExtract bool
	// SkipLoad stops after the JSON dump; DBPath is not used.
	SkipLoad bool
	// CommitEvery is passed to store.WithCommitEvery.
	CommitEvery int

	Logger *zerolog.Logger
}

// DefaultConfig returns the Japan Post file names rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir:  dataDir,
		RomanZip: constants.RomanZipFilename,
		KanaZip:  constants.KanaZipFilename,
		RomanCSV: constants.RomanCSVFilename,
		KanaCSV:  constants.KanaCSVFilename,
		JSONPath: filepath.Join(dataDir, constants.JSONFilename),
		DBPath:   filepath.Join(dataDir, constants.DatabaseFilename),
	}
}

// Result summarizes a run.
type Result struct {
	RunID string `json:"run_id" yaml:"run_id"`
	// Empty is set when neither source produced a record; nothing was written.
	Empty   bool `json:"empty" yaml:"empty"`
	Records int  `json:"records" yaml:"records"`
	// JSONPath is set once the dump is written.
	JSONPath string             `json:"json_path,omitempty" yaml:"json_path,omitempty"`
	Files    []postal.FileStats `json:"files" yaml:"files"`
	Store    store.LoadResult   `json:"store" yaml:"store"`
}

// Run executes the pipeline described by cfg.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}

	res := Result{RunID: uuid.NewString()}

	ctx = logging.WithRunID(logging.WithLogger(ctx, cfg.Logger), res.RunID)
	logger := logging.FromContext(ctx)

	csvDir := cfg.DataDir
	if !cfg.SkipExtract {
		dir, cleanup, err := cfg.workDir()
		if err != nil {
			return res, err
		}
		defer cleanup()

		logging.FromContext(logging.WithStage(ctx, "extract")).Info().Str("dir", dir).Msg("Extracting archives")
		if _, err := archive.ExtractAll(
			[]string{filepath.Join(cfg.DataDir, cfg.RomanZip), filepath.Join(cfg.DataDir, cfg.KanaZip)},
			dir,
			[]string{cfg.RomanCSV, cfg.KanaCSV},
		); err != nil {
			return res, err
		}
		csvDir = dir
	}

	mergeCtx := logging.WithStage(ctx, "merge")
	records, stats, err := postal.MergeWithStats(mergeCtx, csvDir,
		[]postal.Schema{postal.RomanSchema(), postal.KanaSchema()},
		[]string{cfg.RomanCSV, cfg.KanaCSV},
	)
	res.Files = stats
	if err != nil {
		return res, err
	}

	res.Records = len(records)
	if len(records) == 0 {
		logging.FromContext(mergeCtx).Error().
			Str("roman", filepath.Join(csvDir, cfg.RomanCSV)).
			Str("kana", filepath.Join(csvDir, cfg.KanaCSV)).
			Msg("No records found in either source file")
		res.Empty = true
		return res, nil
	}

	dumpLogger := logging.FromContext(logging.WithStage(ctx, "dump"))
	if err := save.Dump(records, cfg.JSONPath, save.WithLogger(dumpLogger)); err != nil {
		return res, err
	}
	res.JSONPath = cfg.JSONPath

	if cfg.SkipLoad {
		logger.Info().
			Int("records", res.Records).
			Str("json", cfg.JSONPath).
			Msg("Conversion complete")
		return res, nil
	}

	loaded, err := store.LoadIntoStore(logging.WithStage(ctx, "load"), cfg.JSONPath, cfg.DBPath,
		store.WithCommitEvery(cfg.CommitEvery),
	)
	res.Store = loaded
	if err != nil {
		return res, err
	}

	logger.Info().
		Int("records", res.Records).
		Str("json", cfg.JSONPath).
		Str("db", cfg.DBPath).
		Msg("Ingestion complete")
	return res, nil
}

func (cfg Config) validate() error {
	type field struct{ name, value string }
	required := []field{
		{"data_dir", cfg.DataDir},
		{"roman_csv", cfg.RomanCSV},
		{"kana_csv", cfg.KanaCSV},
		{"json_path", cfg.JSONPath},
	}
	if !cfg.SkipLoad {
		required = append(required, field{"db_path", cfg.DBPath})
	}
	if !cfg.SkipExtract {
		required = append(required, field{"roman_zip", cfg.RomanZip}, field{"kana_zip", cfg.KanaZip})
	}
	for _, f := range required {
		if f.value == "" {
			return errors.NewValidationError(f.name, f.value, "must not be empty")
		}
	}
	return nil
}

// workDir returns the extraction directory and a cleanup func.
func (cfg Config) workDir() (string, func(), error) {
	if cfg.WorkDir != "" {
		if err := os.MkdirAll(cfg.WorkDir, constants.DirPermissions); err != nil {
			return "", nil, errors.WrapIO("create", cfg.WorkDir, err)
		}
		return cfg.WorkDir, func() {}, nil
	}

	if err := os.MkdirAll(cfg.DataDir, constants.DirPermissions); err != nil {
		return "", nil, errors.WrapIO("create", cfg.DataDir, err)
	}
	dir, err := os.MkdirTemp(cfg.DataDir, ".extract-")
	if err != nil {
		return "", nil, errors.WrapIO("create", cfg.DataDir, err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}
