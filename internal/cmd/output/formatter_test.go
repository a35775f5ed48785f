package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zip2addr/zip2addr/internal/cmd/table"
)

type summary struct {
	RunID   string `json:"run_id"`
	Records int    `json:"records"`
	Store   struct {
		Path string `json:"path"`
	} `json:"store"`
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", "wide", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
	assert.True(t, FormatWide.IsWide())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, map[string]string{"pref": "北海道"}))

	assert.Contains(t, buf.String(), "北海道")
	var out map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "北海道", out["pref"])
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, map[string]int{"records": 2}))
	assert.Equal(t, "records: 2\n", buf.String())
}

func TestTableFormatter(t *testing.T) {
	t.Run("table data", func(t *testing.T) {
		var buf bytes.Buffer
		data := table.Data{
			Headers: []string{"Zipcode", "Address"},
			Rows:    [][]string{{"086-1834", "北海道 目梨郡　羅臼町 礼文町"}},
		}
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))
		assert.Contains(t, buf.String(), "086-1834")
		assert.Contains(t, buf.String(), "ZIPCODE")
	})

	t.Run("struct", func(t *testing.T) {
		var buf bytes.Buffer
		s := summary{RunID: "abc", Records: 2}
		s.Store.Path = "zipcodes.db"
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, s))

		out := buf.String()
		assert.Contains(t, out, "Run Id")
		assert.Contains(t, out, "Store Path")
		assert.Contains(t, out, "zipcodes.db")
	})

	t.Run("fallback to json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, []int{1, 2}))
		assert.JSONEq(t, "[1,2]", buf.String())
	})
}
