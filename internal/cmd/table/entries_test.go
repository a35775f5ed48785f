package table

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zip2addr/zip2addr/pkg/postal"
	"github.com/zip2addr/zip2addr/pkg/store"
)

func TestFormatZipcode(t *testing.T) {
	assert.Equal(t, "086-1834", FormatZipcode("0861834"))
	assert.Equal(t, "086", FormatZipcode("086"))
	assert.Equal(t, "08a1834", FormatZipcode("08a1834"))
}

func TestEntriesToTableData(t *testing.T) {
	entries := []store.Entry{{
		Zipcode: "2300033",
		Address: postal.Address{Pref: "神奈川県", CityWard: "横浜市鶴見区", HouseNumbers: "朝日町"},
		Kana:    postal.Address{Pref: "ｶﾅｶﾞﾜｹﾝ"},
	}}

	data := EntriesToTableData(entries, false)
	assert.Equal(t, []string{"Zipcode", "Address", "Roman"}, data.Headers)
	assert.Equal(t, [][]string{{"230-0033", "神奈川県 横浜市鶴見区 朝日町", "-"}}, data.Rows)

	wide := EntriesToTableData(entries, true)
	assert.Len(t, wide.Headers, 7)
	assert.Equal(t, "ｶﾅｶﾞﾜｹﾝ", wide.Rows[0][3])
}

func TestFileStatsToTableData(t *testing.T) {
	data := FileStatsToTableData([]postal.FileStats{{Schema: "kana", File: "KEN_ALL.CSV", Lines: 3, Added: 2, Updated: 1}})
	assert.Equal(t, []string{"kana", "KEN_ALL.CSV", "3", "2", "1", "0"}, data.Rows[0])
	assert.Len(t, data.ColumnAlignment, len(data.Headers))
}
