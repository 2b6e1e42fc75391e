// Package ingest reads the files users import: metadata spreadsheets (CSV or
// Excel) and FASTA sequence files. It knows nothing about the database; the
// import service validates and stores what these readers return.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxHeaderSearchRows is the default number of leading rows scanned for the
// header when SheetOptions.HeaderSearchRows is zero.
const MaxHeaderSearchRows = 10

var (
	// ErrEmptyFile is returned for files without a header or data rows.
	ErrEmptyFile = errors.New("empty file")

	// ErrUnsupportedFile is returned for extensions no reader handles.
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// SheetOptions controls header detection.
type SheetOptions struct {
	// HeaderColumn must appear in the header row (case-insensitive)
	HeaderColumn string

	// HeaderSearchRows limits how far down the header may start
	HeaderSearchRows int
}

// Row is one data row and its 1-based line (or spreadsheet row) number.
type Row struct {
	Line  int
	Cells []string
}

// Sheet is a parsed spreadsheet: the header and its non-empty data rows.
type Sheet struct {
	FileName string
	Header   []string
	Rows     []Row
}

// ReadSheet parses a .csv, .tsv, .xlsx or .xlsm file.
func ReadSheet(path string, opts SheetOptions) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	records, err := readRecords(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	sheet, err := buildSheet(records, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	sheet.FileName = filepath.Base(path)
	return sheet, nil
}

func readRecords(r io.Reader, ext string) ([][]string, error) {
	switch strings.ToLower(ext) {
	case ".csv":
		return parseDelimited(r, ',')
	case ".tsv", ".tab":
		return parseDelimited(r, '\t')
	case ".xlsx", ".xlsm":
		return parseWorkbook(r)
	case ".xls":
		return nil, fmt.Errorf("%w: legacy .xls workbooks must be saved as .xlsx", ErrUnsupportedFile)
	default:
		return nil, fmt.Errorf("%w: %q (use .csv or .xlsx)", ErrUnsupportedFile, ext)
	}
}

func parseDelimited(r io.Reader, comma rune) ([][]string, error) {
	cleaned, counter := WrapForStreaming(r)

	cr := csv.NewReader(cleaned)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	slog.Debug("parsed delimited file", "bytes", counter.BytesRead, "records", len(records))
	return records, nil
}

// parseWorkbook returns the rows of the first worksheet.
func parseWorkbook(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	slog.Debug("parsed workbook", "sheet", sheets[0], "records", len(rows))
	return rows, nil
}

func buildSheet(records [][]string, opts SheetOptions) (*Sheet, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headerRow := 0
	if opts.HeaderColumn != "" {
		headerRow = FindHeaderRow(records, opts.HeaderColumn, opts.HeaderSearchRows)
		if headerRow < 0 {
			limit := opts.HeaderSearchRows
			if limit <= 0 {
				limit = MaxHeaderSearchRows
			}
			return nil, fmt.Errorf("column not found: %q in the first %d rows", opts.HeaderColumn, limit)
		}
	}

	header := make([]string, len(records[headerRow]))
	for i, h := range records[headerRow] {
		header[i] = CleanCell(h)
	}

	sheet := &Sheet{Header: header}
	for i := headerRow + 1; i < len(records); i++ {
		if IsEmptyRow(records[i]) {
			continue
		}
		sheet.Rows = append(sheet.Rows, Row{Line: i + 1, Cells: records[i]})
	}
	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows below the header", ErrEmptyFile)
	}
	return sheet, nil
}

// FindHeaderRow returns the index of the first of the leading maxRows records
// containing column, or -1.
func FindHeaderRow(records [][]string, column string, maxRows int) int {
	if maxRows <= 0 {
		maxRows = MaxHeaderSearchRows
	}
	if len(records) < maxRows {
		maxRows = len(records)
	}

	for i := 0; i < maxRows; i++ {
		for _, cell := range records[i] {
			if strings.EqualFold(CleanCell(cell), column) {
				return i
			}
		}
	}
	return -1
}
