// Package postal parses and merges the Japan Post zip code datasets.
//
// Two sources exist: the roman transliterated data (KEN_ALL_ROME.CSV) and
// the half-width kana data (KEN_ALL.CSV). Both are Shift-JIS encoded CSV
// files without a header row. Each source is read against a Schema that
// names its positional columns, and Merge folds the sources into one Record
// per zip code.
package postal

import "slices"

// Field names shared by the schemas and the unified Record.
const (
	FieldZipcode      = "zipcode"
	FieldPref         = "pref"
	FieldCityWard     = "city_ward"
	FieldHouseNumbers = "house_numbers"

	FieldRomanPref         = "roman_pref"
	FieldRomanCityWard     = "roman_city_ward"
	FieldRomanHouseNumbers = "roman_house_numbers"

	FieldKanaPref         = "kana_pref"
	FieldKanaCityWard     = "kana_city_ward"
	FieldKanaHouseNumbers = "kana_house_numbers"

	// Kana bookkeeping columns. They are carried on merged records but
	// never persisted.
	FieldCityID         = "_city_id_or_something"
	FieldPartialZipcode = "_partial_zip_code"
)

// Schema is an ordered, immutable list of column names for one data source.
type Schema struct {
	name string
	keys []string
}

// NewSchema creates a schema named name with the given column names.
func NewSchema(name string, keys ...string) Schema {
	return Schema{name: name, keys: slices.Clone(keys)}
}

var (
	romanSchema = NewSchema("roman",
		FieldZipcode,
		FieldPref,
		FieldCityWard,
		FieldHouseNumbers,
		FieldRomanPref,
		FieldRomanCityWard,
		FieldRomanHouseNumbers,
	)

	kanaSchema = NewSchema("kana",
		FieldCityID,
		FieldPartialZipcode,
		FieldZipcode,
		FieldKanaPref,
		FieldKanaCityWard,
		FieldKanaHouseNumbers,
		FieldPref,
		FieldCityWard,
		FieldHouseNumbers,
	)
)

// RomanSchema returns the column layout of KEN_ALL_ROME.CSV.
func RomanSchema() Schema { return romanSchema }

// KanaSchema returns the column layout of KEN_ALL.CSV.
func KanaSchema() Schema { return kanaSchema }

// Name returns the schema name.
func (s Schema) Name() string { return s.name }

// Keys returns a copy of the column names in order.
func (s Schema) Keys() []string { return slices.Clone(s.keys) }

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.keys) }

// Key returns the i-th column name.
func (s Schema) Key(i int) string { return s.keys[i] }

// UnionKeys returns every key of every schema, in first-seen order.
func UnionKeys(schemas ...Schema) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, s := range schemas {
		for _, k := range s.keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}
