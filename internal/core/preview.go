package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// maxExistingSamples caps the lab IDs listed in PreviewSummary.Existing.
const maxExistingSamples = 10

// PreviewSummary describes what importing a metadata sheet would do.
type PreviewSummary struct {
	FileName        string
	TotalRows       int
	NewLabIDs       int
	ExistingLabIDs  int
	ErrorRows       int
	DuplicateInFile int

	// Existing lists some of the lab IDs that already have metadata.
	Existing []string

	// FirstError is the first validation problem, empty when the sheet
	// would import cleanly.
	FirstError string
}

// Valid reports whether the sheet passed validation.
func (p PreviewSummary) Valid() bool {
	return p.FirstError == ""
}

// PreviewMetadata performs read-only analysis of a metadata sheet. Read
// failures are returned as errors; validation problems are reported in the
// summary.
func (s *Service) PreviewMetadata(ctx context.Context, path string) (PreviewSummary, error) {
	summary := PreviewSummary{FileName: filepath.Base(path)}

	sheet, err := s.readMetadataSheet(path)
	if err != nil {
		return summary, err
	}
	summary.TotalRows = len(sheet.Rows)

	idx, err := ValidateHeaders(sheet.Header, s.schema)
	if err != nil {
		summary.FirstError = err.Error()
		return summary, nil
	}

	validator := NewRowValidator(s.schema.Specs(), idx)
	labPos := idx[strings.ToLower(s.schema.LabIDColumn)]
	seen := make(map[string]int, len(sheet.Rows))
	var labIDs []string

	for _, row := range sheet.Rows {
		res := validator.ValidateRow(row.Cells)
		if !res.Valid {
			summary.ErrorRows++
			if summary.FirstError == "" {
				summary.FirstError = (&SheetError{Line: row.Line, Err: res.Errors[0]}).Error()
			}
			continue
		}

		labID := cellAt(row.Cells, labPos)
		if first, dup := seen[labID]; dup {
			summary.DuplicateInFile++
			if summary.FirstError == "" {
				summary.FirstError = (&SheetError{
					Line: row.Line,
					Err:  fmt.Errorf("duplicate lab id %q (first seen on row %d)", labID, first),
				}).Error()
			}
			continue
		}
		seen[labID] = row.Line
		labIDs = append(labIDs, labID)
	}

	existing, err := s.existingLabIDs(ctx, labIDs)
	if err != nil {
		return summary, err
	}
	for _, id := range labIDs {
		if !existing[strings.ToLower(id)] {
			summary.NewLabIDs++
			continue
		}
		summary.ExistingLabIDs++
		if len(summary.Existing) < maxExistingSamples {
			summary.Existing = append(summary.Existing, id)
		}
	}

	return summary, nil
}

// existingLabIDs returns which of ids already have metadata, keyed by the
// lowercased lab ID.
func (s *Service) existingLabIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(ids) == 0 {
		return found, nil
	}
	rows, err := s.db.Queries().GetMetadataForLabIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check existing lab ids: %w", err)
	}
	for _, m := range rows {
		found[strings.ToLower(m.LabID)] = true
	}
	return found, nil
}
