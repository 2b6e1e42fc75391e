package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "sqlite unique", err: errors.New("constraint failed: UNIQUE constraint failed: metadata.lab_id, metadata.attribute (2067)"), wantCode: "DB001"},
		{name: "postgres duplicate text", err: errors.New("ERROR: duplicate key value violates unique constraint"), wantCode: "DB001"},
		{name: "sqlite not null", err: errors.New("NOT NULL constraint failed: genomic_data.lab_id"), wantCode: "DB002"},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), wantCode: "DB004"},
		{name: "locked", err: errors.New("database is locked (5) (SQLITE_BUSY)"), wantCode: "DB006"},
		{name: "missing table", err: errors.New("SQL logic error: no such table: metadata (1)"), wantCode: "DB007"},
		{name: "invalid date", err: errors.New(`row 3: invalid date for "Extraction Date": "soon"`), wantCode: "VAL001"},
		{name: "invalid number", err: errors.New(`invalid numeric for "Latitude": "x" (invalid number format)`), wantCode: "VAL002"},
		{name: "empty lab id cell", err: errors.New(`row 2: empty required field "Uehling Lab ID"`), wantCode: "VAL003"},
		{name: "missing column", err: errors.New("missing required columns: Uehling Lab ID"), wantCode: "VAL004"},
		{name: "header not found", err: errors.New(`column not found: "Uehling Lab ID" in the first 10 rows`), wantCode: "VAL005"},
		{name: "duplicate lab id", err: errors.New(`row 4: duplicate lab id "UL001" (first seen on row 2)`), wantCode: "VAL008"},
		{name: "unexpected columns", err: errors.New("unexpected columns: Colour"), wantCode: "VAL009"},
		{name: "file missing", err: errors.New("open meta.csv: no such file or directory"), wantCode: "FILE001"},
		{name: "empty file", err: errors.New("empty file: no data rows below the header"), wantCode: "FILE004"},
		{name: "lab id sentinel", err: fmt.Errorf("import x.fasta: %w: %q has no metadata", ErrLabIDNotFound, "UL9"), wantCode: "LAB001"},
		{name: "empty keyword sentinel", err: ErrEmptyKeyword, wantCode: "LAB003"},
		{name: "no sequences sentinel", err: fmt.Errorf("x.fasta: %w", ErrNoSequences), wantCode: "FILE005"},
		{name: "upload sentinel", err: fmt.Errorf("%w: abc", ErrUploadNotFound), wantCode: "UPL001"},
		{name: "cancelled", err: context.Canceled, wantCode: "UPL002"},
		{name: "s3 missing bucket", err: errors.New("operation error S3: PutObject, api error NoSuchBucket: The specified bucket does not exist"), wantCode: "EXP003"},
		{name: "unmatched falls back", err: errors.New("something odd"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q (message %q)", got.Code, tt.wantCode, got.Message)
			}
		})
	}
}

func TestMapError_PgErrorCode(t *testing.T) {
	tests := []struct {
		code     string
		wantCode string
	}{
		{"23505", "DB001"},
		{"23502", "DB002"},
		{"23503", "DB003"},
		{"40P01", "DB006"},
		{"42P01", "DB007"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: tt.code, Message: "server said no"})
			if got := MapError(err); got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrEmptyLabID)
	want := "A lab ID is required (Code: LAB002). Enter a lab ID"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(ErrLabIDNotFound) {
		t.Error("sentinel should be user facing")
	}
	if IsUserFacing(errors.New("weird internal state")) {
		t.Error("unknown error should not be user facing")
	}
}

func TestErrorPatterns_AllHaveCodes(t *testing.T) {
	for _, ep := range errorPatterns {
		if ep.pattern == "" || ep.msg.Code == "" || ep.msg.Message == "" || ep.msg.Action == "" {
			t.Errorf("incomplete pattern entry: %+v", ep)
		}
	}
}
