package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zip2addr/zip2addr/pkg/constants"
)

// isolate keeps config discovery away from the real home and working
// directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	for _, key := range []string{"DATA_DIR", "DB_PATH", "JSON_PATH", "WORK_DIR", "COMMIT_EVERY"} {
		t.Setenv(EnvPrefix+"_"+key, "")
		require.NoError(t, os.Unsetenv(EnvPrefix+"_"+key))
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultDataDir, cfg.DataDir)
	assert.Equal(t, constants.JSONFilename, cfg.JSONPath)
	assert.Equal(t, constants.DatabaseFilename, cfg.DBPath)
	assert.Equal(t, constants.RomanZipFilename, cfg.RomanZip)
	assert.Equal(t, constants.KanaCSVFilename, cfg.KanaCSV)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadConfigEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ZIP2ADDR_DATA_DIR", "/srv/zip")
	t.Setenv("ZIP2ADDR_COMMIT_EVERY", "500")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/srv/zip", cfg.DataDir)
	assert.Equal(t, filepath.Join("/srv/zip", constants.DatabaseFilename), cfg.DBPath)
	assert.Equal(t, 500, cfg.CommitEvery)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: data\ndb_path: /tmp/zip.db\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "/tmp/zip.db", cfg.DBPath)
	assert.Equal(t, filepath.Join("data", constants.JSONFilename), cfg.JSONPath)
}

func TestLoadConfigDiscovered(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".zip2addr.yaml"), []byte("work_dir: scratch\n"), 0o600))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "scratch", cfg.WorkDir)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")

	path := filepath.Join(dir, "neg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commit_every: -1\n"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestIngestConfig(t *testing.T) {
	cfg := &Config{
		DataDir:     "data",
		JSONPath:    "out.json",
		DBPath:      "out.db",
		RomanZip:    "r.zip",
		KanaZip:     "k.zip",
		RomanCSV:    "R.CSV",
		KanaCSV:     "K.CSV",
		CommitEvery: 10,
	}

	ic := cfg.IngestConfig()
	assert.Equal(t, "data", ic.DataDir)
	assert.Equal(t, "out.json", ic.JSONPath)
	assert.Equal(t, "out.db", ic.DBPath)
	assert.Equal(t, "r.zip", ic.RomanZip)
	assert.Equal(t, "K.CSV", ic.KanaCSV)
	assert.Equal(t, 10, ic.CommitEvery)
}

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"default", Config{}, "info"},
		{"flag wins", Config{LogLevel: "ERROR", Verbose: true, EnvLogLevel: "debug"}, "error"},
		{"invalid flag", Config{LogLevel: "loud"}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"verbose and quiet", Config{Verbose: true, Quiet: true}, "warn"},
		{"env", Config{EnvLogLevel: "trace"}, "trace"},
		{"shortcut beats env", Config{Quiet: true, EnvLogLevel: "debug"}, "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.cfg))
		})
	}
}
