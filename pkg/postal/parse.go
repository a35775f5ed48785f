package postal

// Fields maps column names to values for one parsed row.
type Fields map[string]string

// ParseResult is the outcome of parsing one row: either Ok with fields or
// Failed. Fields are only reachable through Fields, which reports success.
type ParseResult struct {
	fields Fields
	ok     bool
}

// Parsed wraps successfully parsed fields.
func Parsed(fields Fields) ParseResult {
	return ParseResult{fields: fields, ok: true}
}

// Failed is the result for a row that could not be parsed.
func Failed() ParseResult {
	return ParseResult{}
}

// Ok reports whether the row parsed.
func (r ParseResult) Ok() bool { return r.ok }

// Fields returns the parsed fields and whether the row parsed.
func (r ParseResult) Fields() (Fields, bool) {
	return r.fields, r.ok
}

// Parse names the positional values of row with the columns of schema.
//
// Pairing stops at the shorter of the two: a short row leaves trailing
// columns absent and a long row drops its extra values. An empty row, or a
// schema with no columns, yields Failed.
func Parse(row []string, schema Schema) ParseResult {
	n := min(len(row), schema.Len())
	if n == 0 {
		return Failed()
	}

	fields := make(Fields, n)
	for i := range n {
		fields[schema.Key(i)] = row[i]
	}
	return Parsed(fields)
}
