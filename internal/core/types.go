package core

import (
	"context"
	"errors"
	"time"

	"github.com/reecem02/relational-db/internal/ingest"
)

var (
	ErrLabIDNotFound  = errors.New("lab id not found")
	ErrEmptyLabID     = errors.New("lab id is empty")
	ErrEmptyKeyword   = errors.New("search keyword is empty")
	ErrNoSequences    = errors.New("no sequences found")
	ErrUploadNotFound = errors.New("upload not found")
)

// Bookkeeping column names carried by every result row.
const (
	ColSourceTable  = "source_table"
	ColLabID        = "lab_id"
	ColFileUploaded = "file_uploaded"
	ColSequenceID   = "sequence_id"
	ColDescription  = "description"
	ColSeqIndex     = "seq_index"
	ColLength       = "length"
	ColSequence     = "sequence"
)

// HeaderIndex maps column names (lowercase) to their position in a sheet row.
type HeaderIndex map[string]int

// Field is one named value of a Row.
type Field struct {
	Key   string
	Value string
}

// Row is an ordered set of column values.
type Row struct {
	Fields []Field
}

// Get returns the value stored under key.
func (r Row) Get(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the value under key, appending the column if absent.
func (r *Row) Set(key, value string) {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Key: key, Value: value})
}

// Keys returns the column names in order.
func (r Row) Keys() []string {
	keys := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		keys[i] = f.Key
	}
	return keys
}

// hasContent reports whether any value other than the identifying and
// bookkeeping columns is set.
func (r Row) hasContent() bool {
	for _, f := range r.Fields {
		switch f.Key {
		case ColSourceTable, ColLabID, ColFileUploaded, ColSeqIndex, ColLength:
			continue
		}
		if f.Value != "" {
			return true
		}
	}
	return false
}

// SearchMode tells which strategy produced a ResultSet.
type SearchMode int

const (
	ModeLabID SearchMode = iota
	ModeKeyword
)

func (m SearchMode) String() string {
	if m == ModeLabID {
		return "lab id"
	}
	return "keyword"
}

// ResultSet is the output of a search, kept by the CLI session for export.
type ResultSet struct {
	Keyword string
	Mode    SearchMode
	Columns []string
	Rows    []Row

	// TotalSequences is the number of stored sequences in lab ID mode,
	// which may exceed the rows shown.
	TotalSequences int
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Header returns the column union.
func (rs *ResultSet) Header() []string {
	return rs.Columns
}

// Records returns every row aligned to Header; absent columns are empty.
func (rs *ResultSet) Records() [][]string {
	out := make([][]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		rec := make([]string, len(rs.Columns))
		for i, col := range rs.Columns {
			rec[i], _ = row.Get(col)
		}
		out = append(out, rec)
	}
	return out
}

// ImportResult summarizes one imported file.
type ImportResult struct {
	UploadID     string
	FileName     string
	Target       string
	Total        int
	Inserted     int
	Replaced     int
	Skipped      int
	Placeholders int
	Duration     time.Duration
}

// Written returns the number of records stored by the import.
func (r ImportResult) Written() int {
	return r.Inserted + r.Replaced
}

// Decision is the answer to an import conflict.
type Decision int

const (
	DecisionSkip Decision = iota
	DecisionReplace
)

func (d Decision) String() string {
	if d == DecisionReplace {
		return "replace"
	}
	return "skip"
}

// Conflict describes an incoming record whose key already exists.
type Conflict struct {
	Table      string
	LabID      string
	SequenceID string
	Existing   Row
	Incoming   Row
}

// Resolver answers the questions an import may need to ask.
type Resolver interface {
	// ResolveConflict decides whether an existing record is replaced.
	ResolveConflict(ctx context.Context, c Conflict) (Decision, error)

	// LabIDForSequence returns the lab ID a FASTA record belongs to.
	LabIDForSequence(ctx context.Context, seq ingest.Sequence) (string, error)

	// ConfirmPlaceholder reports whether a placeholder metadata record may be
	// created for a lab ID that has none.
	ConfirmPlaceholder(ctx context.Context, labID string) (bool, error)
}

// DeleteScope selects which tables a delete touches.
type DeleteScope int

const (
	DeleteAll DeleteScope = iota
	DeleteMetadataOnly
	DeleteGenomicOnly
)

func (s DeleteScope) String() string {
	switch s {
	case DeleteMetadataOnly:
		return "metadata"
	case DeleteGenomicOnly:
		return "genomic data"
	default:
		return "all data"
	}
}

// DeleteResult reports rows removed per table.
type DeleteResult struct {
	LabID           string
	Scope           DeleteScope
	MetadataDeleted int64
	GenomicDeleted  int64
}

// TableInfo holds the statistics for one table.
type TableInfo struct {
	Name         string
	Rows         int
	LastUploaded string // empty when the table has never been written
}

// SequenceStats summarizes stored sequence lengths.
type SequenceStats struct {
	Count      int
	TotalBases int
	Min        int
	Max        int
	Mean       float64
	StdDev     float64
}

// DatabaseInfo is the output of Info.
type DatabaseInfo struct {
	Driver    string
	Location  string
	Tables    []TableInfo
	LabIDs    int
	Imports   int
	Sequences SequenceStats
	SizeBytes int64
	SizeKnown bool
}

// ImportRecord is one entry of the import history.
type ImportRecord struct {
	UploadID   string
	Target     string
	FileName   string
	Rows       int
	UploadedAt time.Time
}

// RollbackResult reports what a rollback removed.
type RollbackResult struct {
	UploadID        string
	Target          string
	FileName        string
	MetadataDeleted int64
	GenomicDeleted  int64
}

// RowsDeleted returns the total across tables.
func (r RollbackResult) RowsDeleted() int64 {
	return r.MetadataDeleted + r.GenomicDeleted
}
