package core

// validation.go provides row-level validation for sheet data before insertion.
//
// Validation happens at two levels:
//  1. Header validation: Ensures required columns are present
//  2. Row validation: Checks each cell against its FieldSpec (type, format, enum values)
//
// The RowValidator can return all errors (for preview) or just the first error
// (for imports, which abort on the first bad row).

import (
	"fmt"
	"strings"

	"github.com/reecem02/relational-db/internal/ingest"
	"github.com/reecem02/relational-db/internal/schema"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult contains the result of validating a row.
type ValidationResult struct {
	Valid  bool              // True if all validations passed
	Errors []ValidationError // List of validation errors (empty if Valid)
}

// RowValidator validates rows against the configured field specifications.
type RowValidator struct {
	specs     []schema.FieldSpec
	headerIdx HeaderIndex
}

// NewRowValidator creates a validator for the given specs and header index.
func NewRowValidator(specs []schema.FieldSpec, headerIdx HeaderIndex) *RowValidator {
	return &RowValidator{
		specs:     specs,
		headerIdx: headerIdx,
	}
}

// ValidateRow validates a single row and returns all validation errors.
func (v *RowValidator) ValidateRow(row []string) ValidationResult {
	result := ValidationResult{Valid: true}

	for _, spec := range v.specs {
		raw, present := v.cell(row, spec)
		if !present && !spec.Required {
			continue
		}

		if raw == "" {
			if spec.Required {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   spec.Name,
					Message: "required field is empty",
				})
			}
			continue
		}

		if err := ValidateCell(raw, spec); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   spec.Name,
				Value:   raw,
				Message: err.Error(),
			})
		}
	}

	return result
}

// ValidateRowFirst validates a row and returns the first error only.
func (v *RowValidator) ValidateRowFirst(row []string) error {
	for _, spec := range v.specs {
		raw, present := v.cell(row, spec)
		if !present && !spec.Required {
			continue
		}

		if raw == "" {
			if spec.Required {
				return fmt.Errorf("empty required field %q", spec.Name)
			}
			continue
		}

		if err := ValidateCell(raw, spec); err != nil {
			return fmt.Errorf("invalid %s for %q: %q (%v)", spec.Type, spec.Name, raw, err)
		}
	}
	return nil
}

// cell returns the cleaned value of spec's column and whether the column
// exists in the header.
func (v *RowValidator) cell(row []string, spec schema.FieldSpec) (string, bool) {
	pos, ok := v.headerIdx[strings.ToLower(spec.Name)]
	if !ok {
		return "", false
	}
	if pos >= len(row) {
		return "", true
	}
	return ingest.CleanCell(row[pos]), true
}

// ValidateCell validates a single cell value against a field specification.
// Returns nil if valid, or an error describing the problem.
func ValidateCell(value string, spec schema.FieldSpec) error {
	if value == "" {
		return nil // Empty values are not stored
	}

	switch spec.Type {
	case schema.FieldNumeric:
		if _, ok := ParseNumeric(value); !ok {
			return fmt.Errorf("invalid number format")
		}
	case schema.FieldDate:
		if _, ok := ParseDate(value); !ok {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD or similar)")
		}
	case schema.FieldBool:
		if _, ok := ParseBool(value); !ok {
			return fmt.Errorf("must be yes/no, true/false, or 1/0")
		}
	case schema.FieldEnum:
		if len(spec.EnumValues) > 0 {
			for _, ev := range spec.EnumValues {
				if strings.EqualFold(ev, value) {
					return nil
				}
			}
			return fmt.Errorf("invalid enum value, must be one of: %s", strings.Join(spec.EnumValues, ", "))
		}
	}
	return nil
}

// ValidateHeaders checks a header row against the definition and returns the
// column index. Required columns must be present, a column may appear only
// once, and unknown columns are rejected unless the definition allows them.
func ValidateHeaders(headers []string, def schema.Definition) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)

	seen := make(map[string]bool, len(headers))
	var duplicates, unexpected []string
	for _, h := range headers {
		name := ingest.CleanCell(h)
		key := strings.ToLower(name)
		if key == "" {
			continue
		}
		if seen[key] {
			duplicates = append(duplicates, name)
			continue
		}
		seen[key] = true
		if _, known := def.Lookup(name); !known && !def.AllowExtraColumns {
			unexpected = append(unexpected, name)
		}
	}

	var missing []string
	for _, spec := range def.Specs() {
		if !spec.Required {
			continue
		}
		if _, ok := idx[strings.ToLower(spec.Name)]; !ok {
			missing = append(missing, spec.Name)
		}
	}

	switch {
	case len(missing) > 0:
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	case len(duplicates) > 0:
		return nil, fmt.Errorf("duplicate columns: %s", strings.Join(duplicates, ", "))
	case len(unexpected) > 0:
		return nil, fmt.Errorf("unexpected columns: %s", strings.Join(unexpected, ", "))
	}

	return idx, nil
}
