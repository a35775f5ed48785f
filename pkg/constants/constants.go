// Package constants provides shared constants used throughout zip2addr.
// This includes the Japan Post file names, file permissions, paging limits
// and server timeouts that should be consistent across the application.
package constants

import "time"

// Application identity
const (
	// Name is the application name reported by the ping endpoint and CLI.
	Name = "zip2addr"
)

// Japan Post data files.
//
// See https://www.post.japanpost.jp/zipcode/download.html
const (
	// DefaultDataDir holds the archives and outputs when nothing else is configured
	DefaultDataDir = "."

	// RomanZipFilename is the archive holding the roman transliterated data
	RomanZipFilename = "ken_all_rome.zip"

	// KanaZipFilename is the archive holding the kana phonetic data
	KanaZipFilename = "ken_all.zip"

	// RomanCSVFilename is the roman data member inside RomanZipFilename
	RomanCSVFilename = "KEN_ALL_ROME.CSV"

	// KanaCSVFilename is the kana data member inside KanaZipFilename
	KanaCSVFilename = "KEN_ALL.CSV"

	// JSONFilename is the default name of the intermediate dump
	JSONFilename = "zipcodes.json"

	// DatabaseFilename is the default name of the SQLite store
	DatabaseFilename = "zipcodes.db"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// DefaultPageSize is the default number of items per page for paginated results
	DefaultPageSize = 100

	// MaxPageSize is the maximum allowed page size for paginated results
	MaxPageSize = 1000

	// ZipcodeLength is the number of digits in a full Japanese zip code
	ZipcodeLength = 7

	// MinDumpSize is the number of leading bytes read to decide a dump is non-empty
	MinDumpSize = 5
)

// Timeout constants
const (
	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout bounds graceful HTTP shutdown
	ShutdownTimeout = 30 * time.Second

	// SQLiteBusyTimeout is passed to SQLite as busy_timeout in milliseconds
	SQLiteBusyTimeout = 5000
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached lookup responses
	CacheTTL = 5 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 10 * time.Minute
)
