package convert

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zip2addr/zip2addr/internal/cmd/application"
	"github.com/zip2addr/zip2addr/internal/testhelper"
	"github.com/zip2addr/zip2addr/pkg/ingest"
	"github.com/zip2addr/zip2addr/pkg/logging"
	"github.com/zip2addr/zip2addr/pkg/postal"
	"github.com/zip2addr/zip2addr/pkg/save"
)

func mockApp(format string) *application.Mock {
	return &application.Mock{
		IngestConfigFunc: func() ingest.Config {
			cfg := ingest.DefaultConfig(".")
			cfg.Logger = logging.NewNopLogger()
			return cfg
		},
		OutputFormatFunc: func() string { return format },
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteCSVs(t, dir)
	outPath := filepath.Join(t.TempDir(), "merged.yaml")

	var out bytes.Buffer
	cmd := NewCommand(mockApp("json"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-d", dir, "-O", outPath})
	require.NoError(t, cmd.Execute())

	var stats []postal.FileStats
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, 2, stats[0].Added)
	assert.Equal(t, 1, stats[1].Updated)

	records, err := save.Load(outPath)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "0861834", records[0].Zipcode())
	assert.Equal(t, "ﾖｺﾊﾏｼﾂﾙﾐｸ", records[1][postal.FieldKanaCityWard])

	assert.NoFileExists(t, filepath.Join(dir, "zipcodes.db"))
}

func TestConvertTable(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteCSVs(t, dir)

	var out bytes.Buffer
	cmd := NewCommand(mockApp("table"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-d", dir})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "kana")
	assert.FileExists(t, filepath.Join(dir, "zipcodes.json"))
}
