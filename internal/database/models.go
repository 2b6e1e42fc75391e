package database

import "github.com/uptrace/bun"

// TimestampLayout is the format stored in file_uploaded and uploaded_at.
// Lexical order matches chronological order, so MAX() works on both backends.
const TimestampLayout = "2006-01-02 15:04:05"

// Table names.
const (
	TableMetadata = "metadata"
	TableGenomic  = "genomic_data"
	TableUploads  = "uploads"
)

// Metadata is one (lab ID, attribute) pair.
type Metadata struct {
	bun.BaseModel `bun:"table:metadata,alias:m"`

	ID           int64  `bun:"id,pk,autoincrement"`
	LabID        string `bun:"lab_id,notnull,unique:metadata_lab_attribute"`
	Attribute    string `bun:"attribute,notnull,unique:metadata_lab_attribute"`
	Value        string `bun:"value,nullzero"`
	UploadID     string `bun:"upload_id,nullzero"`
	FileUploaded string `bun:"file_uploaded,nullzero"`
}

// GenomicData is one stored sequence belonging to a lab ID.
type GenomicData struct {
	bun.BaseModel `bun:"table:genomic_data,alias:g"`

	ID           int64  `bun:"id,pk,autoincrement"`
	LabID        string `bun:"lab_id,notnull,unique:genomic_lab_sequence"`
	SequenceID   string `bun:"sequence_id,notnull,unique:genomic_lab_sequence"`
	Description  string `bun:"description,nullzero"`
	Sequence     string `bun:"sequence,nullzero"`
	SeqIndex     int    `bun:"seq_index,notnull"`
	UploadID     string `bun:"upload_id,nullzero"`
	FileUploaded string `bun:"file_uploaded,nullzero"`
}

// Upload is one entry of the import ledger.
type Upload struct {
	bun.BaseModel `bun:"table:uploads,alias:u"`

	ID         string `bun:"id,pk"`
	Target     string `bun:"target,notnull"`
	FileName   string `bun:"file_name,notnull"`
	RowCount   int    `bun:"row_count,notnull"`
	UploadedAt string `bun:"uploaded_at,notnull"`
}

// SearchColumns lists the textual columns scanned by keyword search.
var SearchColumns = map[string][]string{
	TableMetadata: {"lab_id", "attribute", "value"},
	TableGenomic:  {"lab_id", "sequence_id", "description", "sequence"},
}
