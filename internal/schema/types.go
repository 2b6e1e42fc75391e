// Package schema describes the spreadsheet columns the metadata importer
// recognizes. Definitions come from the YAML config and drive header checks,
// cell validation and the attribute order used when results are displayed.
package schema

import (
	"fmt"
	"strings"
)

// FieldType represents the expected data type for a spreadsheet column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldNumeric
	FieldBool
)

var fieldTypeNames = map[FieldType]string{
	FieldText:    "text",
	FieldEnum:    "enum",
	FieldDate:    "date",
	FieldNumeric: "numeric",
	FieldBool:    "bool",
}

// String returns the YAML spelling of the type.
func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return "value"
}

// ParseFieldType converts a YAML type name to a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" || key == "string" {
		return FieldText, nil
	}
	for t, name := range fieldTypeNames {
		if name == key {
			return t, nil
		}
	}
	if key == "number" || key == "float" || key == "int" {
		return FieldNumeric, nil
	}
	return FieldText, fmt.Errorf("unknown field type %q", s)
}

// UnmarshalYAML lets config files spell types as strings.
func (t *FieldType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseFieldType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalYAML writes the type back as its name.
func (t FieldType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// FieldSpec defines validation rules for a single spreadsheet column.
type FieldSpec struct {
	Name       string    `yaml:"name"`     // Column header name, matched case-insensitively
	Type       FieldType `yaml:"type"`     // Expected data type
	Required   bool      `yaml:"required"` // Column must exist in the header and be non-empty
	EnumValues []string  `yaml:"values"`   // Valid values for FieldEnum type
}

// Definition is the configured metadata layout.
type Definition struct {
	LabIDColumn       string      `yaml:"lab_id_column"`
	AllowExtraColumns bool        `yaml:"allow_extra_columns"`
	MetadataColumns   []FieldSpec `yaml:"metadata_columns"`
}

// Specs returns the lab-ID column followed by the metadata columns.
// The lab-ID column is always required.
func (d Definition) Specs() []FieldSpec {
	specs := make([]FieldSpec, 0, len(d.MetadataColumns)+1)
	specs = append(specs, FieldSpec{Name: d.LabIDColumn, Type: FieldText, Required: true})
	for _, spec := range d.MetadataColumns {
		if strings.EqualFold(spec.Name, d.LabIDColumn) {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

// AttributeOrder returns the display order of metadata attributes.
func (d Definition) AttributeOrder() []string {
	names := make([]string, 0, len(d.MetadataColumns))
	for _, spec := range d.MetadataColumns {
		if strings.EqualFold(spec.Name, d.LabIDColumn) {
			continue
		}
		names = append(names, spec.Name)
	}
	return names
}

// Lookup finds a column spec by name, case-insensitively.
func (d Definition) Lookup(name string) (FieldSpec, bool) {
	for _, spec := range d.Specs() {
		if strings.EqualFold(spec.Name, name) {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// Validate reports configuration problems in the definition.
func (d Definition) Validate() []string {
	var errs []string
	if strings.TrimSpace(d.LabIDColumn) == "" {
		errs = append(errs, "schema.lab_id_column must not be empty")
	}
	seen := make(map[string]bool, len(d.MetadataColumns))
	for i, spec := range d.MetadataColumns {
		name := strings.ToLower(strings.TrimSpace(spec.Name))
		if name == "" {
			errs = append(errs, fmt.Sprintf("schema.metadata_columns[%d] has no name", i))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("schema.metadata_columns has duplicate column %q", spec.Name))
		}
		seen[name] = true
		if spec.Type == FieldEnum && len(spec.EnumValues) == 0 {
			errs = append(errs, fmt.Sprintf("schema column %q is an enum without values", spec.Name))
		}
	}
	return errs
}
