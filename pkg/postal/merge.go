package postal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/logging"
)

// MergeOption configures Merge.
type MergeOption func(*mergeOptions)

type mergeOptions struct {
	logger *zerolog.Logger
}

// WithLogger sets the logger that receives per-line warnings.
// Without it, the logger carried by the context is used.
func WithLogger(logger *zerolog.Logger) MergeOption {
	return func(o *mergeOptions) {
		o.logger = logger
	}
}

// FileStats counts what one source file contributed to a merge.
type FileStats struct {
	File    string `json:"file" yaml:"file"`
	Schema  string `json:"schema" yaml:"schema"`
	Lines   int    `json:"lines" yaml:"lines"`
	Skipped int    `json:"skipped" yaml:"skipped"`
	Added   int    `json:"added" yaml:"added"`
	Updated int    `json:"updated" yaml:"updated"`
}

// Merge reads filenames[i] under dataDir against schemas[i], in order, and
// folds every parsed row into one Record per zip code.
//
// A zip code seen again in a later file has its fields overwritten or
// extended by that file. A zip code seen for the first time is backfilled
// with "" for every column of every schema. Unparseable rows are logged and
// skipped. Records are returned in first-seen order.
//
// schemas and filenames must have the same length.
func Merge(ctx context.Context, dataDir string, schemas []Schema, filenames []string, opts ...MergeOption) ([]Record, error) {
	records, _, err := MergeWithStats(ctx, dataDir, schemas, filenames, opts...)
	return records, err
}

// MergeWithStats is Merge that also reports per-file counters.
func MergeWithStats(ctx context.Context, dataDir string, schemas []Schema, filenames []string, opts ...MergeOption) ([]Record, []FileStats, error) {
	if len(schemas) != len(filenames) {
		return nil, nil, errors.NewValidationError("filenames", filenames,
			fmt.Sprintf("got %d schemas but %d filenames", len(schemas), len(filenames)))
	}

	o := &mergeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	m := newMerger(UnionKeys(schemas...))
	stats := make([]FileStats, 0, len(filenames))

	for i, name := range filenames {
		path := filepath.Join(dataDir, name)
		fs, err := m.mergeFile(ctx, logger, path, schemas[i])
		stats = append(stats, fs)
		if err != nil {
			return nil, stats, err
		}
		logger.Debug().
			Str("file", path).
			Int("lines", fs.Lines).
			Int("skipped", fs.Skipped).
			Int("added", fs.Added).
			Int("updated", fs.Updated).
			Msg("Merged source file")
	}

	return m.records(), stats, nil
}

// merger is an insertion-ordered zipcode -> Record map.
type merger struct {
	allKeys []string
	order   []string
	byZip   map[string]Record
}

func newMerger(allKeys []string) *merger {
	return &merger{
		allKeys: allKeys,
		byZip:   make(map[string]Record),
	}
}

func (m *merger) mergeFile(ctx context.Context, logger *zerolog.Logger, path string, schema Schema) (FileStats, error) {
	fs := FileStats{File: path, Schema: schema.Name()}

	logger = logging.FromContext(logging.WithFile(logging.WithLogger(ctx, logger), path))

	l, err := Open(path, schema)
	if err != nil {
		return fs, err
	}
	defer func() { _ = l.Close() }()

	for line, result := range l.All() {
		if err := ctx.Err(); err != nil {
			return fs, err
		}
		fs.Lines++

		fields, ok := result.Fields()
		if !ok {
			fs.Skipped++
			logger.Warn().
				Int("line", line).
				Msg("Failed to parse line")
			continue
		}

		zipcode, ok := fields[FieldZipcode]
		if !ok {
			fs.Skipped++
			logger.Warn().
				Int("line", line).
				Int("columns", len(fields)).
				Msg("Line has no zip code column")
			continue
		}

		if m.add(zipcode, fields) {
			fs.Added++
		} else {
			fs.Updated++
		}
	}

	return fs, l.Err()
}

// add folds fields into the record for zipcode and reports whether the
// record is new.
func (m *merger) add(zipcode string, fields Fields) bool {
	if rec, ok := m.byZip[zipcode]; ok {
		for k, v := range fields {
			rec[k] = v
		}
		return false
	}

	rec := make(Record, len(m.allKeys))
	for _, k := range m.allKeys {
		rec[k] = ""
	}
	for k, v := range fields {
		rec[k] = v
	}
	m.byZip[zipcode] = rec
	m.order = append(m.order, zipcode)
	return true
}

func (m *merger) records() []Record {
	out := make([]Record, 0, len(m.order))
	for _, z := range m.order {
		out = append(out, m.byZip[z])
	}
	return out
}
