// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"strconv"

	"github.com/zip2addr/zip2addr/pkg/postal"
	"github.com/zip2addr/zip2addr/pkg/store"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// EntriesToTableData converts lookup results to table format. The wide
// form adds the kana rendering and the split address columns.
func EntriesToTableData(entries []store.Entry, wide bool) Data {
	headers := []string{"Zipcode", "Address", "Roman"}
	if wide {
		headers = append(headers, "Kana", "Pref", "City/Ward", "House Numbers")
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{
			FormatZipcode(e.Zipcode),
			orDash(e.Address.String()),
			orDash(e.Roman.String()),
		}
		if wide {
			row = append(row,
				orDash(e.Kana.String()),
				orDash(e.Address.Pref),
				orDash(e.Address.CityWard),
				orDash(e.Address.HouseNumbers),
			)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows}
}

// FileStatsToTableData converts merge counters to table format.
func FileStatsToTableData(stats []postal.FileStats) Data {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Schema,
			s.File,
			strconv.Itoa(s.Lines),
			strconv.Itoa(s.Added),
			strconv.Itoa(s.Updated),
			strconv.Itoa(s.Skipped),
		})
	}
	return Data{
		Headers:         []string{"Source", "File", "Lines", "Added", "Updated", "Skipped"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight},
	}
}

// FormatZipcode renders a 7-digit zip code as NNN-NNNN. Other values are
// returned unchanged.
func FormatZipcode(zip string) string {
	if len(zip) != 7 {
		return zip
	}
	for _, r := range zip {
		if r < '0' || r > '9' {
			return zip
		}
	}
	return zip[:3] + "-" + zip[3:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
