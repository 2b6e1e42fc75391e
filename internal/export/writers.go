package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

func encodeTable(format Format, header []string, records [][]string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return encodeCSV(header, records)
	case FormatXLSX:
		return encodeXLSX(header, records)
	case FormatText:
		return encodeText(header, records)
	}
	return nil, ErrUnsupportedFormat
}

func appendTable(format Format, existing []byte, header []string, records [][]string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return appendCSV(existing, header, records)
	case FormatXLSX:
		return appendXLSX(existing, header, records)
	case FormatText:
		table, err := encodeText(header, records)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		buf.Write(existing)
		if !bytes.HasSuffix(existing, []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
		buf.Write(table)
		return buf.Bytes(), nil
	}
	return nil, ErrUnsupportedFormat
}

// ============================================================================
// CSV
// ============================================================================

func encodeCSV(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendCSV(existing []byte, header []string, records [][]string) ([]byte, error) {
	r := csv.NewReader(bytes.NewReader(existing))
	r.FieldsPerRecord = -1
	target, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read existing header: %w", err)
	}
	bom := len(target) > 0 && strings.HasPrefix(target[0], "\uFEFF")
	if bom {
		target[0] = strings.TrimPrefix(target[0], "\uFEFF")
	}

	widened, aligned, err := alignRecords(target, header, records)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if len(widened) == len(target) {
		buf.Write(existing)
		if !bytes.HasSuffix(existing, []byte("\n")) {
			buf.WriteByte('\n')
		}
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(aligned); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	// The header grew: rewrite the file with old rows padded to the new width
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read existing rows: %w", err)
	}
	if bom {
		buf.WriteString("\uFEFF")
	}
	w := csv.NewWriter(&buf)
	if err := w.Write(widened); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(padRow(row, len(widened))); err != nil {
			return nil, err
		}
	}
	if err := w.WriteAll(aligned); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

// ============================================================================
// Excel
// ============================================================================

const xlsxSheet = "Sheet1"

func encodeXLSX(header []string, records [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeXLSXRow(f, xlsxSheet, 1, header); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", last, style); err != nil {
		return nil, err
	}

	for i, rec := range records {
		if err := writeXLSXRow(f, xlsxSheet, i+2, rec); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// appendXLSX writes records after the last used row of the first sheet.
func appendXLSX(existing []byte, header []string, records [][]string) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(existing))
	if err != nil {
		return nil, fmt.Errorf("open existing workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("existing workbook has no sheets")
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read existing sheet: %w", err)
	}
	if len(rows) == 0 {
		return encodeXLSX(header, records)
	}

	widened, aligned, err := alignRecords(rows[0], header, records)
	if err != nil {
		return nil, err
	}
	if extra := widened[len(rows[0]):]; len(extra) > 0 {
		if err := extendXLSXHeader(f, sheet, len(rows[0]), extra); err != nil {
			return nil, err
		}
	}
	next := len(rows) + 1
	for i, rec := range aligned {
		if err := writeXLSXRow(f, sheet, next+i, rec); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// extendXLSXHeader writes cols into row 1 after the first n columns, styled
// like A1.
func extendXLSXHeader(f *excelize.File, sheet string, n int, cols []string) error {
	first, err := excelize.CoordinatesToCellName(n+1, 1)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(n+len(cols), 1)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(cols))
	for i, c := range cols {
		vals[i] = c
	}
	if err := f.SetSheetRow(sheet, first, &vals); err != nil {
		return err
	}
	style, err := f.GetCellStyle(sheet, "A1")
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func writeXLSXRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = clipCell(v)
	}
	return f.SetSheetRow(sheet, cell, &vals)
}

// clipCell cuts values longer than an Excel cell can hold.
func clipCell(v string) string {
	if utf8.RuneCountInString(v) <= excelize.TotalCellChars {
		return v
	}
	n := 0
	for i := range v {
		if n == excelize.TotalCellChars {
			return v[:i]
		}
		n++
	}
	return v
}

// ============================================================================
// Text
// ============================================================================

// encodeText renders an aligned table with a dashed rule under the header.
func encodeText(header []string, records [][]string) ([]byte, error) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	flat := make([][]string, len(records))
	for r, rec := range records {
		flat[r] = make([]string, len(header))
		for i := range header {
			if i < len(rec) {
				flat[r][i] = flattenCell(rec[i])
			}
			if n := utf8.RuneCountInString(flat[r][i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	writeTextRow(tw, header)
	rule := make([]string, len(header))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	writeTextRow(tw, rule)
	for _, rec := range flat {
		writeTextRow(tw, rec)
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTextRow(tw *tabwriter.Writer, cells []string) {
	fmt.Fprintln(tw, strings.Join(cells, "\t"))
}

// flattenCell puts a multi-line value on one line.
func flattenCell(v string) string {
	v = strings.ReplaceAll(v, "\t", " ")
	if !strings.ContainsAny(v, "\r\n") {
		return v
	}
	lines := strings.FieldsFunc(v, func(r rune) bool { return r == '\n' || r == '\r' })
	return strings.Join(lines, " ")
}
