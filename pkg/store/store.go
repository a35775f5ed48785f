package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/postal"
)

// Entry is one zip code with its three address renderings.
type Entry struct {
	ID      int64          `json:"id" yaml:"id"`
	Zipcode string         `json:"zipcode" yaml:"zipcode"`
	Address postal.Address `json:"address" yaml:"address"`
	Roman   postal.Address `json:"roman" yaml:"roman"`
	Kana    postal.Address `json:"kana" yaml:"kana"`
}

// Record flattens the entry back into a unified record.
func (e Entry) Record() postal.Record {
	return postal.Record{
		postal.FieldZipcode:           e.Zipcode,
		postal.FieldPref:              e.Address.Pref,
		postal.FieldCityWard:          e.Address.CityWard,
		postal.FieldHouseNumbers:      e.Address.HouseNumbers,
		postal.FieldRomanPref:         e.Roman.Pref,
		postal.FieldRomanCityWard:     e.Roman.CityWard,
		postal.FieldRomanHouseNumbers: e.Roman.HouseNumbers,
		postal.FieldKanaPref:          e.Kana.Pref,
		postal.FieldKanaCityWard:      e.Kana.CityWard,
		postal.FieldKanaHouseNumbers:  e.Kana.HouseNumbers,
	}
}

// Reader is the lookup capability served over HTTP and the CLI.
type Reader interface {
	FindByZip(ctx context.Context, zipcode string) (Entry, error)
	FindByPrefix(ctx context.Context, prefix string, skip, limit int) ([]Entry, error)
	List(ctx context.Context, skip, limit int) ([]Entry, error)
	Count(ctx context.Context) (int, error)
}

// ReadCloser is a Reader that owns an underlying connection.
type ReadCloser interface {
	Reader
	Close() error
}

var _ ReadCloser = (*Store)(nil)

// Store answers lookups against a store file.
type Store struct {
	path string
	db   *sql.DB
}

const selectEntries = `
SELECT z.id, z.zipcode,
	a.pref, a.city_ward, a.house_numbers,
	COALESCE(r.pref, ''), COALESCE(r.city_ward, ''), COALESCE(r.house_numbers, ''),
	COALESCE(k.pref, ''), COALESCE(k.city_ward, ''), COALESCE(k.house_numbers, '')
FROM zipcodes z
JOIN addresses a ON a.id = z.address_id
LEFT JOIN roman_addresses r ON r.address_id = a.id
LEFT JOIN kana_addresses k ON k.address_id = a.id`

// Open opens an existing store. With readOnly set the connection refuses
// writes. A missing file is an error; Open never creates a store.
func Open(ctx context.Context, path string, readOnly bool) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("store", path)
		}
		return nil, errors.WrapIO("stat", path, err)
	}

	db, err := connect(ctx, path, readOnly)
	if err != nil {
		return nil, errors.WrapResource("open", "store", path, err)
	}
	return &Store{path: path, db: db}, nil
}

// Path returns the store file.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.WrapResource("close", "store", s.path, err)
	}
	return nil
}

// FindByZip returns the entry for an exact zip code, or a NotFoundError.
func (s *Store) FindByZip(ctx context.Context, zipcode string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, selectEntries+` WHERE z.zipcode = ?`, zipcode)
	e, err := scanEntry(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return Entry{}, errors.NewNotFoundError("zipcode", zipcode)
		}
		return Entry{}, errors.WrapResource("query", "zipcode", zipcode, err)
	}
	return e, nil
}

// FindByPrefix returns entries whose zip code starts with prefix, in
// ascending zip code order.
func (s *Store) FindByPrefix(ctx context.Context, prefix string, skip, limit int) ([]Entry, error) {
	skip, limit = page(skip, limit)
	return s.query(ctx, prefix,
		selectEntries+` WHERE z.zipcode LIKE ? ESCAPE '\' ORDER BY z.zipcode LIMIT ? OFFSET ?`,
		escapeLike(prefix)+"%", limit, skip)
}

// List returns entries in ascending zip code order.
func (s *Store) List(ctx context.Context, skip, limit int) ([]Entry, error) {
	skip, limit = page(skip, limit)
	return s.query(ctx, "", selectEntries+` ORDER BY z.zipcode LIMIT ? OFFSET ?`, limit, skip)
}

// Count returns the number of zip codes.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM zipcodes`).Scan(&n); err != nil {
		return 0, errors.WrapResource("query", "zipcodes", "", err)
	}
	return n, nil
}

func (s *Store) query(ctx context.Context, id, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapResource("query", "zipcodes", id, err)
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.WrapResource("scan", "zipcodes", id, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("query", "zipcodes", id, err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var e Entry
	err := sc.Scan(&e.ID, &e.Zipcode,
		&e.Address.Pref, &e.Address.CityWard, &e.Address.HouseNumbers,
		&e.Roman.Pref, &e.Roman.CityWard, &e.Roman.HouseNumbers,
		&e.Kana.Pref, &e.Kana.CityWard, &e.Kana.HouseNumbers,
	)
	return e, err
}

// page clamps paging arguments.
func page(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	return skip, limit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
