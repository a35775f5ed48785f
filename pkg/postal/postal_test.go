package postal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

const (
	romanLine = "0861834,北海道,目梨郡　羅臼町,礼文町,HOKKAIDO,MENASHI GUN RAUSU CHO,REBUNCHO"
	kanaLine  = `14101,"230 ",2300033,ｶﾅｶﾞﾜｹﾝ,ﾖｺﾊﾏｼﾂﾙﾐｸ,ｱｻﾋﾁｮｳ,神奈川県,横浜市鶴見区,朝日町`
)

// writeShiftJIS writes lines to dir/name encoded as Shift-JIS with CRLF
// line endings, the way Japan Post ships them.
func writeShiftJIS(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\r\n") + "\r\n"
	}
	encoded, err := japanese.ShiftJIS.NewEncoder().String(content)
	require.NoError(t, err)

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(encoded), 0o644))
	return p
}
