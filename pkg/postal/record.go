package postal

// Record is the unified view of one zip code. It holds every column of
// every merged schema; columns no source supplied are empty strings.
type Record map[string]string

// Address is one rendering of an address: the kanji, roman or kana form.
type Address struct {
	Pref         string `json:"pref" yaml:"pref"`
	CityWard     string `json:"city_ward" yaml:"city_ward"`
	HouseNumbers string `json:"house_numbers" yaml:"house_numbers"`
}

// String joins the non-empty parts with a space.
func (a Address) String() string {
	s := a.Pref
	for _, part := range []string{a.CityWard, a.HouseNumbers} {
		if part == "" {
			continue
		}
		if s != "" {
			s += " "
		}
		s += part
	}
	return s
}

// IsZero reports whether every part is empty.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Zipcode returns the record key.
func (r Record) Zipcode() string { return r[FieldZipcode] }

// Address returns the kanji address.
func (r Record) Address() Address {
	return Address{Pref: r[FieldPref], CityWard: r[FieldCityWard], HouseNumbers: r[FieldHouseNumbers]}
}

// Roman returns the roman transliterated address.
func (r Record) Roman() Address {
	return Address{Pref: r[FieldRomanPref], CityWard: r[FieldRomanCityWard], HouseNumbers: r[FieldRomanHouseNumbers]}
}

// Kana returns the half-width kana address.
func (r Record) Kana() Address {
	return Address{Pref: r[FieldKanaPref], CityWard: r[FieldKanaCityWard], HouseNumbers: r[FieldKanaHouseNumbers]}
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}
