package postal

import (
	"encoding/csv"
	stderrors "errors"
	"io"
	"iter"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/zip2addr/zip2addr/pkg/errors"
)

// Loader streams a Shift-JIS encoded CSV file through Parse, one result per
// CSV record plus a Failed result for every blank line, so Line always names
// the physical line a record starts on. It reads the file once and cannot be
// rewound.
//
//	l, err := postal.Open(path, postal.KanaSchema())
//	if err != nil {
//		return err
//	}
//	defer l.Close()
//	for l.Next() {
//		fields, ok := l.Result().Fields()
//		...
//	}
//	return l.Err()
type Loader struct {
	path   string
	schema Schema
	file   *os.File
	reader *csv.Reader

	line   int
	result ParseResult
	err    error
	closed bool

	// next is the first physical line not yet reported. The record read
	// ahead in pending starts at pendingLine; lines before it are blank.
	next        int
	pending     bool
	pendingLine int
	pendingEnd  int
	pendingRes  ParseResult
}

// Open opens path for reading against schema.
func Open(path string, schema Schema) (*Loader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}

	r := csv.NewReader(transform.NewReader(f, japanese.ShiftJIS.NewDecoder()))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	return &Loader{
		path:   path,
		schema: schema,
		file:   f,
		reader: r,
		line:   -1,
	}, nil
}

// Path returns the file being read.
func (l *Loader) Path() string { return l.path }

// Next advances to the next record. It returns false at end of file, after
// a read or decode failure, or once the loader is closed. The file is closed
// when the sequence ends.
func (l *Loader) Next() bool {
	if l.closed || l.err != nil {
		return false
	}
	if !l.pending && !l.readAhead() {
		return false
	}

	if l.next < l.pendingLine {
		l.line = l.next
		l.next++
		l.result = Failed()
		return true
	}

	l.line = l.pendingLine
	l.result = l.pendingRes
	l.next = l.pendingEnd + 1
	l.pending = false
	return true
}

// readAhead reads one CSV record into pending along with the physical
// lines it spans.
func (l *Loader) readAhead() bool {
	row, err := l.reader.Read()
	switch {
	case err == nil:
		start, _ := l.reader.FieldPos(0)
		last := len(row) - 1
		end, _ := l.reader.FieldPos(last)
		if i := invalidField(row); i >= 0 {
			pos, _ := l.reader.FieldPos(i)
			return l.fail(errors.WrapIO("decode", l.path, &errors.ParseError{
				Format:  "shift_jis",
				File:    l.path,
				Line:    pos,
				Message: "invalid Shift-JIS byte sequence",
			}))
		}
		l.pendingLine = start - 1
		l.pendingEnd = end - 1 + strings.Count(row[last], "\n")
		l.pendingRes = Parse(row, l.schema)
	case err == io.EOF:
		l.result = Failed()
		_ = l.Close()
		return false
	default:
		// Malformed quoting only spoils the current record.
		var pe *csv.ParseError
		if !stderrors.As(err, &pe) {
			return l.fail(errors.WrapIO("read", l.path, err))
		}
		l.pendingLine = pe.StartLine - 1
		l.pendingEnd = pe.Line - 1
		l.pendingRes = Failed()
	}

	l.pending = true
	return true
}

func (l *Loader) fail(err error) bool {
	l.err = err
	l.result = Failed()
	_ = l.Close()
	return false
}

// invalidField returns the index of the first field holding U+FFFD, or -1.
// Shift-JIS has no mapping to U+FFFD, so the decoder only produces it for
// bytes it could not decode.
func invalidField(row []string) int {
	for i, f := range row {
		if strings.ContainsRune(f, utf8.RuneError) {
			return i
		}
	}
	return -1
}

// Result returns the parse result of the current record.
func (l *Loader) Result() ParseResult { return l.result }

// Line returns the 0-based physical line the current record starts on.
func (l *Loader) Line() int { return l.line }

// Err returns the read or decode failure that stopped the sequence, if any.
// Both are *errors.IOError; a decode failure wraps an *errors.ParseError
// naming the line.
func (l *Loader) Err() error { return l.err }

// Close releases the file. It is safe to call more than once.
func (l *Loader) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.file.Close(); err != nil {
		return errors.WrapIO("close", l.path, err)
	}
	return nil
}

// All returns the remaining records as (line, result) pairs. The file is
// closed when iteration finishes or the caller breaks out early; check Err
// afterwards.
func (l *Loader) All() iter.Seq2[int, ParseResult] {
	return func(yield func(int, ParseResult) bool) {
		defer func() { _ = l.Close() }()
		for l.Next() {
			if !yield(l.line, l.result) {
				return
			}
		}
	}
}
