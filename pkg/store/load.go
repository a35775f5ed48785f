package store

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/logging"
	"github.com/zip2addr/zip2addr/pkg/postal"
	"github.com/zip2addr/zip2addr/pkg/save"
)

// LoadResult describes the outcome of LoadIntoStore.
type LoadResult struct {
	// Skipped is set when the dump was missing or empty and no store was written.
	Skipped bool `json:"skipped" yaml:"skipped"`
	// Path is the store file written.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Backup is where the previous store was moved, if there was one.
	Backup string `json:"backup,omitempty" yaml:"backup,omitempty"`
	// Records is the number of zip codes inserted.
	Records int `json:"records" yaml:"records"`
}

// LoadOption configures LoadIntoStore.
type LoadOption func(*loadOptions)

type loadOptions struct {
	logger       *zerolog.Logger
	commitEvery  int
	backupSuffix string
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = logger
	}
}

// WithCommitEvery commits after every n records. Zero or less loads the
// whole dump in a single transaction.
func WithCommitEvery(n int) LoadOption {
	return func(o *loadOptions) {
		o.commitEvery = n
	}
}

// WithBackupSuffix fixes the suffix used when the previous store is moved aside.
func WithBackupSuffix(suffix string) LoadOption {
	return func(o *loadOptions) {
		o.backupSuffix = suffix
	}
}

// LoadIntoStore reads the dump at jsonPath and writes it as a new store at
// dbPath.
//
// A missing dump, or one shorter than a few bytes, is logged and skipped:
// the result has Skipped set, the error is nil and no store is created.
//
// The store is built in a temporary sibling file and renamed over dbPath
// only once every record is committed, so readers of dbPath see either the
// previous store or the complete new one. The previous store is kept as a
// timestamped backup. When building fails the temporary file is removed and
// dbPath is left as it was.
func LoadIntoStore(ctx context.Context, jsonPath, dbPath string, opts ...LoadOption) (LoadResult, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	if ok, err := hasContent(jsonPath); !ok {
		ev := logger.Error().Str("path", jsonPath)
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("Dump is missing or empty; store not created")
		return LoadResult{Skipped: true}, nil
	}

	records, err := save.Load(jsonPath)
	if err != nil {
		return LoadResult{}, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return LoadResult{}, errors.WrapIO("create", dir, err)
	}

	tmp := dbPath + ".tmp-" + uuid.NewString()
	if err := build(ctx, tmp, records, o.commitEvery); err != nil {
		removeDatabase(tmp)
		return LoadResult{}, err
	}

	backup, err := save.BackupIfExists(dbPath, save.WithSuffix(o.backupSuffix))
	if err != nil {
		removeDatabase(tmp)
		return LoadResult{}, err
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		removeDatabase(tmp)
		if backup != "" {
			_ = os.Rename(backup, dbPath)
		}
		return LoadResult{}, errors.WrapIO("rename", tmp, err)
	}

	ev := logger.Info().Str("path", dbPath).Int("records", len(records))
	if backup != "" {
		ev = ev.Str("backup", backup)
	}
	ev.Msg("Loaded records into store")

	return LoadResult{Path: dbPath, Backup: backup, Records: len(records)}, nil
}

func build(ctx context.Context, path string, records []postal.Record, commitEvery int) (err error) {
	s, err := Begin(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()

	for i, rec := range records {
		if _, err := s.InsertRecord(ctx, rec); err != nil {
			return err
		}
		if commitEvery > 0 && (i+1)%commitEvery == 0 {
			if err := s.Commit(); err != nil {
				return err
			}
		}
	}
	return s.Commit()
}

// hasContent reports whether the first constants.MinDumpSize bytes of path can be read.
func hasContent(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, constants.MinDumpSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// removeDatabase deletes a store file and its SQLite side files.
func removeDatabase(path string) {
	for _, p := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}
