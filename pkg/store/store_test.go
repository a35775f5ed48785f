package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/logging"
	"github.com/zip2addr/zip2addr/pkg/postal"
	"github.com/zip2addr/zip2addr/pkg/save"
)

func record(zip, pref, roman, kana string) postal.Record {
	return postal.Record{
		postal.FieldZipcode:           zip,
		postal.FieldPref:              pref,
		postal.FieldCityWard:          "city",
		postal.FieldHouseNumbers:      "house",
		postal.FieldRomanPref:         roman,
		postal.FieldRomanCityWard:     "",
		postal.FieldRomanHouseNumbers: "",
		postal.FieldKanaPref:          kana,
		postal.FieldKanaCityWard:      "",
		postal.FieldKanaHouseNumbers:  "",
	}
}

func fixtureRecords() []postal.Record {
	return []postal.Record{
		record("0861834", "北海道", "HOKKAIDO", ""),
		record("2300033", "神奈川県", "", "ｶﾅｶﾞﾜｹﾝ"),
		record("0600000", "北海道", "HOKKAIDO", "ﾎｯｶｲﾄﾞｳ"),
		record("0640941", "北海道", "HOKKAIDO", "ﾎｯｶｲﾄﾞｳ"),
	}
}

// writeDump dumps records as JSON in dir and returns the path.
func writeDump(t *testing.T, dir string, records []postal.Record) string {
	t.Helper()
	p := filepath.Join(dir, "zipcodes.json")
	require.NoError(t, save.Dump(records, p, save.WithLogger(logging.NewNopLogger()), save.WithoutBackup()))
	return p
}

func loadFixture(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "zipcodes.db")

	_, err := LoadIntoStore(ctx, writeDump(t, dir, fixtureRecords()), dbPath, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	s, err := Open(ctx, dbPath, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadIntoStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db", "zipcodes.db")

	res, err := LoadIntoStore(ctx, writeDump(t, dir, fixtureRecords()), dbPath, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 4, res.Records)
	assert.Equal(t, dbPath, res.Path)
	assert.Empty(t, res.Backup)

	s, err := Open(ctx, dbPath, true)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// No temp files are left next to the store.
	entries, err := os.ReadDir(filepath.Dir(dbPath))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestLoadIntoStoreMissingDump(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "zipcodes.db")
	tl := logging.NewTestLogger(t)

	res, err := LoadIntoStore(context.Background(), filepath.Join(dir, "missing.json"), dbPath, WithLogger(tl.Logger))
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "no store is created")
	assert.Len(t, tl.EntriesAt("error"), 1)
}

func TestLoadIntoStoreEmptyDump(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "zipcodes.db")
	jsonPath := filepath.Join(dir, "zipcodes.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("[]"), 0o644))

	res, err := LoadIntoStore(context.Background(), jsonPath, dbPath, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadIntoStoreBacksUpPreviousStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "zipcodes.db")
	nop := WithLogger(logging.NewNopLogger())

	_, err := LoadIntoStore(ctx, writeDump(t, dir, fixtureRecords()[:1]), dbPath, nop)
	require.NoError(t, err)

	res, err := LoadIntoStore(ctx, writeDump(t, dir, fixtureRecords()), dbPath, nop, WithBackupSuffix("prev"))
	require.NoError(t, err)
	assert.Equal(t, dbPath+".prev", res.Backup)

	prev, err := Open(ctx, res.Backup, true)
	require.NoError(t, err)
	defer prev.Close()
	n, err := prev.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cur, err := Open(ctx, dbPath, true)
	require.NoError(t, err)
	defer cur.Close()
	n, err = cur.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestLoadIntoStoreFailureKeepsPreviousStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "zipcodes.db")
	nop := WithLogger(logging.NewNopLogger())

	_, err := LoadIntoStore(ctx, writeDump(t, dir, fixtureRecords()[:1]), dbPath, nop)
	require.NoError(t, err)

	// A duplicate zip code violates the unique index halfway through.
	bad := append(fixtureRecords(), record("0861834", "dup", "", ""))
	for _, every := range []int{0, 2} {
		_, err = LoadIntoStore(ctx, writeDump(t, dir, bad), dbPath, nop, WithCommitEvery(every))
		require.Error(t, err)
	}

	s, err := Open(ctx, dbPath, true)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "previous store is untouched")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "temp store %s left behind", e.Name())
	}
}

func TestLoadIntoStoreCommitEvery(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "zipcodes.db")

	res, err := LoadIntoStore(ctx, writeDump(t, dir, fixtureRecords()), dbPath,
		WithLogger(logging.NewNopLogger()), WithCommitEvery(1))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Records)
}

func TestFindByZip(t *testing.T) {
	s := loadFixture(t)
	ctx := context.Background()

	e, err := s.FindByZip(ctx, "2300033")
	require.NoError(t, err)
	assert.Equal(t, "2300033", e.Zipcode)
	assert.Equal(t, "神奈川県", e.Address.Pref)
	assert.Equal(t, "ｶﾅｶﾞﾜｹﾝ", e.Kana.Pref)
	assert.Equal(t, "", e.Roman.Pref)
	assert.Equal(t, "神奈川県", e.Record()[postal.FieldPref])

	_, err = s.FindByZip(ctx, "9999999")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	var nf *errors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "9999999", nf.ID)
}

func TestFindByPrefix(t *testing.T) {
	s := loadFixture(t)
	ctx := context.Background()

	zips := func(entries []Entry) []string {
		out := []string{}
		for _, e := range entries {
			out = append(out, e.Zipcode)
		}
		return out
	}

	got, err := s.FindByPrefix(ctx, "0", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"0600000", "0640941", "0861834"}, zips(got))

	got, err = s.FindByPrefix(ctx, "06", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"0600000"}, zips(got))

	got, err = s.FindByPrefix(ctx, "06", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"0640941"}, zips(got))

	got, err = s.FindByPrefix(ctx, "5", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	// LIKE wildcards in the prefix match literally.
	got, err = s.FindByPrefix(ctx, "%", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestList(t *testing.T) {
	s := loadFixture(t)

	got, err := s.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "0600000", got[0].Zipcode)
	assert.Equal(t, "2300033", got[3].Zipcode)
}

func TestOpenMissingStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := Open(context.Background(), path, true)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestReadOnlyStoreRejectsWrites(t *testing.T) {
	s := loadFixture(t)

	_, err := s.db.ExecContext(context.Background(), `DELETE FROM zipcodes`)
	assert.Error(t, err)
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	sess, err := Begin(ctx, path)
	require.NoError(t, err)

	addrID, err := sess.InsertAddress(ctx, postal.Address{Pref: "北海道"})
	require.NoError(t, err)
	_, err = sess.InsertKana(ctx, addrID, postal.Address{Pref: "ﾎｯｶｲﾄﾞｳ"})
	require.NoError(t, err)
	_, err = sess.InsertRoman(ctx, addrID, postal.Address{Pref: "HOKKAIDO"})
	require.NoError(t, err)
	_, err = sess.InsertZipcode(ctx, "0600000", addrID)
	require.NoError(t, err)
	require.NoError(t, sess.Commit())

	// Uncommitted inserts are discarded on Close.
	_, err = sess.InsertRecord(ctx, record("0640941", "北海道", "", ""))
	require.NoError(t, err)
	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())

	s, err := Open(ctx, path, true)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	e, err := s.FindByZip(ctx, "0600000")
	require.NoError(t, err)
	assert.Equal(t, "HOKKAIDO", e.Roman.Pref)
	assert.Equal(t, "ﾎｯｶｲﾄﾞｳ", e.Kana.Pref)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dsn("a.db", false))
	assert.True(t, strings.HasSuffix(dsn("a.db", true), "&_pragma=query_only(1)"))
	assert.Contains(t, dsn("a.db?cache=shared", false), "?cache=shared&_pragma=")
}
