// Package store persists merged zip code records in SQLite and answers
// point and prefix lookups against the result.
//
// Each zip code is stored as four rows: an address, its roman and kana
// renderings tied to the address id, and the zip code tied to the address
// id. Stores are built once by LoadIntoStore and are read-only afterwards.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/zip2addr/zip2addr/pkg/constants"
)

// DriverName is the database/sql driver used for stores.
const DriverName = "sqlite"

const ddl = `
CREATE TABLE IF NOT EXISTS addresses (
	id            INTEGER PRIMARY KEY,
	pref          TEXT NOT NULL DEFAULT '',
	city_ward     TEXT NOT NULL DEFAULT '',
	house_numbers TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS kana_addresses (
	id            INTEGER PRIMARY KEY,
	pref          TEXT NOT NULL DEFAULT '',
	city_ward     TEXT NOT NULL DEFAULT '',
	house_numbers TEXT NOT NULL DEFAULT '',
	address_id    INTEGER NOT NULL REFERENCES addresses(id)
);
CREATE TABLE IF NOT EXISTS roman_addresses (
	id            INTEGER PRIMARY KEY,
	pref          TEXT NOT NULL DEFAULT '',
	city_ward     TEXT NOT NULL DEFAULT '',
	house_numbers TEXT NOT NULL DEFAULT '',
	address_id    INTEGER NOT NULL REFERENCES addresses(id)
);
CREATE TABLE IF NOT EXISTS zipcodes (
	id         INTEGER PRIMARY KEY,
	zipcode    TEXT NOT NULL UNIQUE,
	address_id INTEGER NOT NULL REFERENCES addresses(id)
);
CREATE INDEX IF NOT EXISTS idx_zipcodes_zipcode ON zipcodes(zipcode);
CREATE INDEX IF NOT EXISTS idx_kana_addresses_address ON kana_addresses(address_id);
CREATE INDEX IF NOT EXISTS idx_roman_addresses_address ON roman_addresses(address_id);
`

// dsn builds a modernc.org/sqlite data source name for path.
func dsn(path string, readOnly bool) string {
	pragmas := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", constants.SQLiteBusyTimeout),
		"_pragma=foreign_keys(1)",
	}
	if readOnly {
		pragmas = append(pragmas, "_pragma=query_only(1)")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(pragmas, "&")
}

func connect(ctx context.Context, path string, readOnly bool) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn(path, readOnly))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")
	return nil
}
