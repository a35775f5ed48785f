package store

import (
	"context"
	"database/sql"

	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/postal"
)

// Session is a write session against a store file. Inserts run inside a
// transaction that is opened on first use and ended by Commit; Close rolls
// back anything not yet committed.
type Session struct {
	path string
	db   *sql.DB
	tx   *sql.Tx

	insertAddress *sql.Stmt
	insertKana    *sql.Stmt
	insertRoman   *sql.Stmt
	insertZipcode *sql.Stmt
}

// Begin opens (creating if needed) the store at path and prepares it for
// inserts.
func Begin(ctx context.Context, path string) (*Session, error) {
	db, err := connect(ctx, path, false)
	if err != nil {
		return nil, errors.WrapResource("open", "store", path, err)
	}
	// One writer; a single connection keeps the transaction on one handle.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.WrapResource("migrate", "store", path, err)
	}
	return &Session{path: path, db: db}, nil
}

func (s *Session) begin(ctx context.Context) error {
	if s.tx != nil {
		return nil
	}
	if s.db == nil {
		return errors.NewResourceError("begin", "store", s.path, sql.ErrConnDone)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapResource("begin", "store", s.path, err)
	}

	stmts := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&s.insertAddress, `INSERT INTO addresses (pref, city_ward, house_numbers) VALUES (?, ?, ?)`},
		{&s.insertKana, `INSERT INTO kana_addresses (pref, city_ward, house_numbers, address_id) VALUES (?, ?, ?, ?)`},
		{&s.insertRoman, `INSERT INTO roman_addresses (pref, city_ward, house_numbers, address_id) VALUES (?, ?, ?, ?)`},
		{&s.insertZipcode, `INSERT INTO zipcodes (zipcode, address_id) VALUES (?, ?)`},
	}
	for _, st := range stmts {
		stmt, err := tx.PrepareContext(ctx, st.query)
		if err != nil {
			_ = tx.Rollback()
			return errors.WrapResource("prepare", "store", s.path, err)
		}
		*st.dst = stmt
	}

	s.tx = tx
	return nil
}

func (s *Session) exec(ctx context.Context, stmt **sql.Stmt, resource, id string, args ...any) (int64, error) {
	if err := s.begin(ctx); err != nil {
		return 0, err
	}
	res, err := (*stmt).ExecContext(ctx, args...)
	if err != nil {
		return 0, errors.WrapResource("insert", resource, id, err)
	}
	return res.LastInsertId()
}

// InsertAddress inserts the kanji address and returns its id.
func (s *Session) InsertAddress(ctx context.Context, a postal.Address) (int64, error) {
	return s.exec(ctx, &s.insertAddress, "address", "", a.Pref, a.CityWard, a.HouseNumbers)
}

// InsertKana inserts the kana rendering of the address addressID.
func (s *Session) InsertKana(ctx context.Context, addressID int64, a postal.Address) (int64, error) {
	return s.exec(ctx, &s.insertKana, "kana address", "", a.Pref, a.CityWard, a.HouseNumbers, addressID)
}

// InsertRoman inserts the roman rendering of the address addressID.
func (s *Session) InsertRoman(ctx context.Context, addressID int64, a postal.Address) (int64, error) {
	return s.exec(ctx, &s.insertRoman, "roman address", "", a.Pref, a.CityWard, a.HouseNumbers, addressID)
}

// InsertZipcode inserts zipcode pointing at addressID.
func (s *Session) InsertZipcode(ctx context.Context, zipcode string, addressID int64) (int64, error) {
	return s.exec(ctx, &s.insertZipcode, "zipcode", zipcode, zipcode, addressID)
}

// InsertRecord stores rec as address, kana, roman and zipcode rows and
// returns the address id.
func (s *Session) InsertRecord(ctx context.Context, rec postal.Record) (int64, error) {
	addressID, err := s.InsertAddress(ctx, rec.Address())
	if err != nil {
		return 0, err
	}
	if _, err := s.InsertKana(ctx, addressID, rec.Kana()); err != nil {
		return 0, err
	}
	if _, err := s.InsertRoman(ctx, addressID, rec.Roman()); err != nil {
		return 0, err
	}
	if _, err := s.InsertZipcode(ctx, rec.Zipcode(), addressID); err != nil {
		return 0, err
	}
	return addressID, nil
}

// Commit commits pending inserts. It is a no-op when nothing is pending.
func (s *Session) Commit() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return errors.WrapResource("commit", "store", s.path, err)
	}
	return nil
}

// Rollback discards pending inserts.
func (s *Session) Rollback() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil {
		return errors.WrapResource("rollback", "store", s.path, err)
	}
	return nil
}

// Close rolls back uncommitted inserts and closes the database.
// It is safe to call more than once.
func (s *Session) Close() error {
	if s.db == nil {
		return nil
	}
	rbErr := s.Rollback()
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return errors.WrapResource("close", "store", s.path, err)
	}
	return rbErr
}
