package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reecem02/relational-db/internal/database"
	"github.com/reecem02/relational-db/internal/ingest"
	"github.com/reecem02/relational-db/internal/logging"
)

// SheetError is a validation failure located in an input sheet.
// Line is 0 for header problems.
type SheetError struct {
	Line int
	Err  error
}

func (e *SheetError) Error() string {
	if e.Line == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *SheetError) Unwrap() error { return e.Err }

// metadataRecord is one validated sheet row.
type metadataRecord struct {
	line  int
	labID string
	attrs []Field
}

// row renders the record the way search results show metadata.
func (r metadataRecord) row() Row {
	row := Row{Fields: []Field{
		{Key: ColSourceTable, Value: database.TableMetadata},
		{Key: ColLabID, Value: r.labID},
	}}
	row.Fields = append(row.Fields, r.attrs...)
	return row
}

// models converts the record to rows for the metadata table. A record with
// no attribute values stores the lab ID itself so the lab ID exists.
func (r metadataRecord) models(labIDColumn, uploadID, stamp string) []database.Metadata {
	attrs := r.attrs
	if len(attrs) == 0 {
		attrs = []Field{{Key: labIDColumn, Value: r.labID}}
	}
	rows := make([]database.Metadata, 0, len(attrs))
	for _, a := range attrs {
		rows = append(rows, database.Metadata{
			LabID:        r.labID,
			Attribute:    a.Key,
			Value:        a.Value,
			UploadID:     uploadID,
			FileUploaded: stamp,
		})
	}
	return rows
}

// readMetadataSheet reads a sheet using the configured lab-ID header.
func (s *Service) readMetadataSheet(path string) (*ingest.Sheet, error) {
	return ingest.ReadSheet(path, ingest.SheetOptions{
		HeaderColumn:     s.schema.LabIDColumn,
		HeaderSearchRows: s.imp.HeaderSearchRows,
	})
}

// prepareMetadata validates every row of a sheet and returns the records to
// store. Nothing is written; the first problem is returned as a *SheetError.
func (s *Service) prepareMetadata(sheet *ingest.Sheet) ([]metadataRecord, error) {
	idx, err := ValidateHeaders(sheet.Header, s.schema)
	if err != nil {
		return nil, &SheetError{Err: err}
	}

	specs := s.schema.Specs()
	validator := NewRowValidator(specs, idx)
	labPos := idx[strings.ToLower(s.schema.LabIDColumn)]

	// Attribute columns in header order, named by their configured spelling.
	type column struct {
		pos  int
		name string
	}
	var columns []column
	for pos, h := range sheet.Header {
		name := ingest.CleanCell(h)
		if name == "" || pos == labPos {
			continue
		}
		if idx[strings.ToLower(name)] != pos {
			continue
		}
		if spec, ok := s.schema.Lookup(name); ok {
			name = spec.Name
		}
		columns = append(columns, column{pos: pos, name: name})
	}

	seen := make(map[string]int, len(sheet.Rows))
	records := make([]metadataRecord, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if err := validator.ValidateRowFirst(row.Cells); err != nil {
			return nil, &SheetError{Line: row.Line, Err: err}
		}

		labID := cellAt(row.Cells, labPos)
		if first, dup := seen[labID]; dup {
			return nil, &SheetError{
				Line: row.Line,
				Err:  fmt.Errorf("duplicate lab id %q (first seen on row %d)", labID, first),
			}
		}
		seen[labID] = row.Line

		rec := metadataRecord{line: row.Line, labID: labID}
		for _, col := range columns {
			value := cellAt(row.Cells, col.pos)
			if value == "" {
				continue
			}
			if spec, ok := s.schema.Lookup(col.name); ok {
				value = NormalizeValue(value, spec)
			}
			rec.attrs = append(rec.attrs, Field{Key: col.name, Value: value})
		}
		records = append(records, rec)
	}

	return records, nil
}

func cellAt(cells []string, pos int) string {
	if pos < 0 || pos >= len(cells) {
		return ""
	}
	return ingest.CleanCell(cells[pos])
}

// ImportMetadata loads a metadata spreadsheet.
//
// The whole sheet is validated before anything is written; the rows are then
// stored in one transaction. Lab IDs that already have metadata are passed
// to the resolver, which decides between skipping the row and replacing the
// stored attributes.
func (s *Service) ImportMetadata(ctx context.Context, path string, resolver Resolver) (ImportResult, error) {
	start := time.Now()
	result := ImportResult{FileName: filepath.Base(path), Target: database.TableMetadata}

	sheet, err := s.readMetadataSheet(path)
	if err != nil {
		return result, err
	}

	records, err := s.prepareMetadata(sheet)
	if err != nil {
		return result, fmt.Errorf("validate %s: %w", result.FileName, err)
	}
	result.Total = len(records)

	uploadID := uuid.New().String()
	stamp := s.timestamp()
	logger := logging.WithFields(ctx,
		"upload_id", uploadID,
		"file", result.FileName,
		"target", result.Target,
	)
	logger.Info("import started", "rows", len(records))

	err = s.inTx(ctx, func(ctx context.Context, q *database.Queries) error {
		for _, rec := range records {
			existing, err := q.GetMetadata(ctx, rec.labID)
			if err != nil {
				return fmt.Errorf("load %s: %w", rec.labID, err)
			}

			if len(existing) > 0 {
				decision, err := resolver.ResolveConflict(ctx, Conflict{
					Table:    database.TableMetadata,
					LabID:    rec.labID,
					Existing: s.pivotMetadata(rec.labID, existing),
					Incoming: rec.row(),
				})
				if err != nil {
					return fmt.Errorf("resolve %s: %w", rec.labID, err)
				}
				if decision != DecisionReplace {
					logger.Debug("row skipped", "lab_id", rec.labID, "line", rec.line)
					result.Skipped++
					continue
				}
				if _, err := q.DeleteMetadata(ctx, rec.labID); err != nil {
					return fmt.Errorf("replace %s: %w", rec.labID, err)
				}
				result.Replaced++
			} else {
				result.Inserted++
			}

			if err := q.InsertMetadata(ctx, rec.models(s.schema.LabIDColumn, uploadID, stamp)); err != nil {
				return fmt.Errorf("insert %s (row %d): %w", rec.labID, rec.line, err)
			}
		}

		if result.Written() == 0 {
			return nil
		}
		result.UploadID = uploadID
		return q.InsertUpload(ctx, &database.Upload{
			ID:         uploadID,
			Target:     database.TableMetadata,
			FileName:   result.FileName,
			RowCount:   result.Written(),
			UploadedAt: stamp,
		})
	})
	if err != nil {
		logger.Error("import failed", "error", err)
		return ImportResult{FileName: result.FileName, Target: result.Target, Total: result.Total},
			fmt.Errorf("import %s: %w", result.FileName, err)
	}

	result.Duration = time.Since(start)
	logger.Info("import completed",
		"inserted", result.Inserted,
		"replaced", result.Replaced,
		"skipped", result.Skipped,
		"duration", result.Duration,
	)
	return result, nil
}
