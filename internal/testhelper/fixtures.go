// Package testhelper builds Japan Post style fixtures for tests: Shift-JIS
// CSV files, zip archives holding them and small loaded stores.
package testhelper

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/japanese"

	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/logging"
	"github.com/zip2addr/zip2addr/pkg/postal"
	"github.com/zip2addr/zip2addr/pkg/save"
	"github.com/zip2addr/zip2addr/pkg/store"
)

// Sample rows in the two Japan Post layouts. 2300033 appears in both.
const (
	RomanCSV = "0861834,北海道,目梨郡　羅臼町,礼文町,HOKKAIDO,MENASHI GUN RAUSU CHO,REBUNCHO\r\n" +
		"2300033,神奈川県,横浜市　鶴見区,朝日町,KANAGAWA KEN,YOKOHAMA SHI TSURUMI KU,ASAHICHO\r\n"
	KanaCSV = `14101,"230 ",2300033,ｶﾅｶﾞﾜｹﾝ,ﾖｺﾊﾏｼﾂﾙﾐｸ,ｱｻﾋﾁｮｳ,神奈川県,横浜市鶴見区,朝日町` + "\r\n"
)

// ShiftJIS encodes s as Shift-JIS.
func ShiftJIS(t *testing.T, s string) []byte {
	t.Helper()

	out, err := japanese.ShiftJIS.NewEncoder().String(s)
	if err != nil {
		t.Fatalf("Failed to encode fixture as Shift-JIS: %v", err)
	}
	return []byte(out)
}

// WriteArchive writes a zip archive at path with a single member.
func WriteArchive(t *testing.T, path, member string, content []byte) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create archive %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	w, err := zw.Create(member)
	if err != nil {
		t.Fatalf("Failed to add %s to archive: %v", member, err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("Failed to write %s: %v", member, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to finish archive %s: %v", path, err)
	}
}

// WriteArchives writes both Japan Post archives with the sample rows into
// dir under their default names.
func WriteArchives(t *testing.T, dir string) {
	t.Helper()

	WriteArchive(t, filepath.Join(dir, constants.RomanZipFilename), constants.RomanCSVFilename, ShiftJIS(t, RomanCSV))
	WriteArchive(t, filepath.Join(dir, constants.KanaZipFilename), constants.KanaCSVFilename, ShiftJIS(t, KanaCSV))
}

// WriteCSVs writes both sample CSV files into dir under their default names.
func WriteCSVs(t *testing.T, dir string) {
	t.Helper()

	for name, content := range map[string]string{
		constants.RomanCSVFilename: RomanCSV,
		constants.KanaCSVFilename:  KanaCSV,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), ShiftJIS(t, content), constants.FilePermissions); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

// Record returns a unified record with only the kanji and roman prefecture
// and city set.
func Record(zip, pref, city, romanPref string) postal.Record {
	r := postal.Record{}
	for _, key := range postal.UnionKeys(postal.RomanSchema(), postal.KanaSchema()) {
		r[key] = ""
	}
	r[postal.FieldZipcode] = zip
	r[postal.FieldPref] = pref
	r[postal.FieldCityWard] = city
	r[postal.FieldRomanPref] = romanPref
	return r
}

// BuildStore dumps records and loads them into dir/zipcodes.db, returning
// the store path.
func BuildStore(t *testing.T, dir string, records []postal.Record) string {
	t.Helper()

	jsonPath := filepath.Join(dir, constants.JSONFilename)
	dbPath := filepath.Join(dir, constants.DatabaseFilename)

	if err := save.Dump(records, jsonPath, save.WithLogger(logging.NewNopLogger())); err != nil {
		t.Fatalf("Failed to dump fixture records: %v", err)
	}
	if _, err := store.LoadIntoStore(context.Background(), jsonPath, dbPath, store.WithLogger(logging.NewNopLogger())); err != nil {
		t.Fatalf("Failed to load fixture store: %v", err)
	}
	return dbPath
}

// SampleStore builds a store with three zip codes: 0861833, 0861834 and 1000001.
func SampleStore(t *testing.T) string {
	t.Helper()

	return BuildStore(t, t.TempDir(), []postal.Record{
		Record("0861834", "北海道", "目梨郡　羅臼町", "HOKKAIDO"),
		Record("0861833", "北海道", "目梨郡　羅臼町", "HOKKAIDO"),
		Record("1000001", "東京都", "千代田区", "TOKYO TO"),
	})
}
