// Package format provides common output formatting utilities for CLI commands.
package format

import (
	"io"

	"github.com/zip2addr/zip2addr/internal/cmd/output"
	"github.com/zip2addr/zip2addr/internal/cmd/table"
	"github.com/zip2addr/zip2addr/pkg/postal"
	"github.com/zip2addr/zip2addr/pkg/store"
)

// isTable reports whether f renders as a table.
func isTable(f output.Format) bool {
	return f == output.FormatTable || f == output.FormatWide || f == ""
}

// Entries writes store entries. Tables show one row per zip code; JSON and
// YAML carry the full entries.
func Entries(w io.Writer, entries []store.Entry, format string) error {
	f := output.DetectFormat(format)

	var data any = entries
	if isTable(f) {
		data = table.EntriesToTableData(entries, f.IsWide())
	}

	return output.NewFormatter(f).Format(w, data)
}

// FileStats writes per-file merge statistics.
func FileStats(w io.Writer, stats []postal.FileStats, format string) error {
	f := output.DetectFormat(format)

	var data any = stats
	if isTable(f) {
		data = table.FileStatsToTableData(stats)
	}

	return output.NewFormatter(f).Format(w, data)
}

// Value writes any result. Structs render as property tables.
func Value(w io.Writer, v any, format string) error {
	return output.NewFormatter(output.DetectFormat(format)).Format(w, v)
}
