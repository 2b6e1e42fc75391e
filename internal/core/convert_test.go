package core

import (
	"testing"
	"time"

	"github.com/reecem02/relational-db/internal/schema"
)

// ----------------------------------------------------------------------------
// ParseNumeric Tests
// ----------------------------------------------------------------------------

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue string
	}{
		// Valid: Basic numbers
		{name: "positive integer", input: "123", wantValid: true, wantValue: "123"},
		{name: "negative integer", input: "-456", wantValid: true, wantValue: "-456"},
		{name: "decimal number", input: "98.5", wantValid: true, wantValue: "98.5"},
		{name: "leading decimal point", input: ".99", wantValid: true, wantValue: ".99"},
		{name: "scientific notation", input: "1.5e-3", wantValid: true, wantValue: "1.5e-3"},

		// Valid: Spreadsheet formatting
		{name: "thousands separator", input: "1,234,567.89", wantValid: true, wantValue: "1234567.89"},
		{name: "percent sign", input: "99.2%", wantValid: true, wantValue: "99.2"},
		{name: "accounting negative", input: "(123.45)", wantValid: true, wantValue: "-123.45"},
		{name: "surrounding whitespace", input: "  -33.9 ", wantValid: true, wantValue: "-33.9"},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},
		{name: "letters", input: "abc", wantValid: false},
		{name: "two decimal points", input: "1.2.3", wantValid: false},
		{name: "trailing text", input: "12 cm", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumeric(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseNumeric(%q) ok = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if ok && got != tt.wantValue {
				t.Errorf("ParseNumeric(%q) = %q, want %q", tt.input, got, tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      string
	}{
		{name: "iso", input: "2023-01-15", wantValid: true, want: "2023-01-15"},
		{name: "us slashes", input: "1/15/2023", wantValid: true, want: "2023-01-15"},
		{name: "us padded", input: "01/05/2023", wantValid: true, want: "2023-01-05"},
		{name: "slashes year first", input: "2023/01/15", wantValid: true, want: "2023-01-15"},
		{name: "spreadsheet datetime", input: "2023-01-15 00:00:00", wantValid: true, want: "2023-01-15"},
		{name: "month name", input: "Jan 15, 2023", wantValid: true, want: "2023-01-15"},
		{name: "compact", input: "20230115", wantValid: true, want: "2023-01-15"},
		{name: "two digit year", input: "1/15/23", wantValid: true, want: "2023-01-15"},
		{name: "empty", input: "", wantValid: false},
		{name: "garbage", input: "last tuesday", wantValid: false},
		{name: "impossible day", input: "2023-02-30", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("NormalizeDate(%q) ok = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if ok && got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDate_TwoDigitYearPivot(t *testing.T) {
	// A two digit year far in the future belongs to the previous century.
	future := (time.Now().Year() + TwoDigitYearPivot + 5) % 100
	input := "1/1/" + twoDigits(future)

	got, ok := ParseDate(input)
	if !ok {
		t.Fatalf("ParseDate(%q) failed", input)
	}
	if got.Year() > time.Now().Year()+TwoDigitYearPivot {
		t.Errorf("ParseDate(%q) year = %d, want previous century", input, got.Year())
	}
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

// ----------------------------------------------------------------------------
// ParseBool Tests
// ----------------------------------------------------------------------------

func TestParseBool(t *testing.T) {
	tests := []struct {
		input     string
		wantValue bool
		wantValid bool
	}{
		{"yes", true, true},
		{"Y", true, true},
		{"TRUE", true, true},
		{"1", true, true},
		{"no", false, true},
		{"f", false, true},
		{"0", false, true},
		{"maybe", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseBool(tt.input)
			if ok != tt.wantValid || got != tt.wantValue {
				t.Errorf("ParseBool(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.wantValue, tt.wantValid)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// NormalizeValue Tests
// ----------------------------------------------------------------------------

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
		spec  schema.FieldSpec
		want  string
	}{
		{
			name:  "date rewritten",
			value: "3/7/2022",
			spec:  schema.FieldSpec{Name: "Extraction Date", Type: schema.FieldDate},
			want:  "2022-03-07",
		},
		{
			name:  "enum takes configured casing",
			value: "SOIL",
			spec:  schema.FieldSpec{Name: "Habitat", Type: schema.FieldEnum, EnumValues: []string{"Soil", "Wood"}},
			want:  "Soil",
		},
		{
			name:  "numeric kept as written",
			value: "99.2%",
			spec:  schema.FieldSpec{Name: "ITS Top Hit Similarity", Type: schema.FieldNumeric},
			want:  "99.2%",
		},
		{
			name:  "text untouched",
			value: "Fusarium oxysporum",
			spec:  schema.FieldSpec{Name: "Top ITS Blast Hit"},
			want:  "Fusarium oxysporum",
		},
		{
			name:  "empty stays empty",
			value: "",
			spec:  schema.FieldSpec{Name: "Extraction Date", Type: schema.FieldDate},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeValue(tt.value, tt.spec); got != tt.want {
				t.Errorf("NormalizeValue(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestMakeHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{" Uehling Lab ID ", "Latitude", "", "LATITUDE"})

	if idx["uehling lab id"] != 0 {
		t.Errorf("lab id index = %d, want 0", idx["uehling lab id"])
	}
	if idx["latitude"] != 1 {
		t.Errorf("first occurrence should win, got %d", idx["latitude"])
	}
	if _, ok := idx[""]; ok {
		t.Error("empty header should not be indexed")
	}
}
