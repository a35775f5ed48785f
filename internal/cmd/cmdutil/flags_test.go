package cmdutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zip2addr/zip2addr/pkg/ingest"
)

func TestSourceFlagsApply(t *testing.T) {
	t.Run("unset flags keep config", func(t *testing.T) {
		cmd := &cobra.Command{}
		flags := AddSourceFlags(cmd)
		require.NoError(t, cmd.ParseFlags(nil))

		cfg := ingest.DefaultConfig("conf")
		cfg.RomanCSV = "custom.csv"
		flags.Apply(cmd, &cfg)

		assert.Equal(t, "conf", cfg.DataDir)
		assert.Equal(t, "custom.csv", cfg.RomanCSV)
	})

	t.Run("datadir moves derived outputs", func(t *testing.T) {
		cmd := &cobra.Command{}
		flags := AddSourceFlags(cmd)
		require.NoError(t, cmd.ParseFlags([]string{"-d", "data", "-K", "k.csv"}))

		cfg := ingest.DefaultConfig("conf")
		cfg.DBPath = "/srv/zip.db"
		flags.Apply(cmd, &cfg)

		assert.Equal(t, "data", cfg.DataDir)
		assert.Equal(t, "k.csv", cfg.KanaCSV)
		assert.Equal(t, filepath.Join("data", "zipcodes.json"), cfg.JSONPath)
		assert.Equal(t, "/srv/zip.db", cfg.DBPath, "explicit paths stay")
	})
}

func TestArchiveFlagsApply(t *testing.T) {
	cmd := &cobra.Command{}
	flags := AddArchiveFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--roman-zip", "r.zip", "--skip-extract"}))

	cfg := ingest.DefaultConfig(".")
	flags.Apply(cmd, &cfg)

	assert.Equal(t, "r.zip", cfg.RomanZip)
	assert.Equal(t, "ken_all.zip", cfg.KanaZip)
	assert.True(t, cfg.SkipExtract)
}

func TestOutputFlagsApply(t *testing.T) {
	cmd := &cobra.Command{}
	flags := AddOutputFlags(cmd, FlagOut, true)
	require.NoError(t, cmd.ParseFlags([]string{"-O", "out.db", "--commit-every", "500"}))

	cfg := ingest.DefaultConfig("data")
	flags.Apply(cmd, &cfg)

	assert.Equal(t, "out.db", cfg.DBPath)
	assert.Equal(t, filepath.Join("data", "zipcodes.json"), cfg.JSONPath)
	assert.Equal(t, 500, cfg.CommitEvery)
}

func TestOutputFlagsWithoutCommit(t *testing.T) {
	cmd := &cobra.Command{}
	flags := AddOutputFlags(cmd, FlagDB, false)
	require.NoError(t, cmd.ParseFlags([]string{"--db", "x.db"}))

	cfg := ingest.DefaultConfig(".")
	flags.Apply(cmd, &cfg)

	assert.Equal(t, "x.db", cfg.DBPath)
	assert.Nil(t, cmd.Flags().Lookup(FlagCommitEvery))
}

func TestRebase(t *testing.T) {
	assert.Equal(t, filepath.Join("new", "a.json"), rebase(filepath.Join("old", "a.json"), "old", "new"))
	assert.Equal(t, "elsewhere/a.json", rebase("elsewhere/a.json", "old", "new"))
	assert.Equal(t, filepath.Join("new", "a.json"), rebase("a.json", ".", "new"))
	assert.Equal(t, "", rebase("", "old", "new"))
}
