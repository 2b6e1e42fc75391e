package admin

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/reecem02/relational-db/internal/config"
	"github.com/reecem02/relational-db/internal/database"
)

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "reset.sqlite"),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	q := db.Queries()
	if err := q.InsertMetadata(ctx, []database.Metadata{
		{LabID: "UL001", Attribute: "Top ITS Blast Hit", Value: "Mucor", UploadID: "u1", FileUploaded: "2024-01-01 10:00:00"},
	}); err != nil {
		t.Fatalf("InsertMetadata() error = %v", err)
	}
	if err := q.InsertGenomicData(ctx, []database.GenomicData{
		{LabID: "UL001", SequenceID: "ITS1", Sequence: "ACGT", UploadID: "u2", FileUploaded: "2024-01-01 10:00:00"},
	}); err != nil {
		t.Fatalf("InsertGenomicData() error = %v", err)
	}
	if err := q.InsertUpload(ctx, &database.Upload{
		ID: "u1", Target: database.TableMetadata, FileName: "meta.csv", RowCount: 1, UploadedAt: "2024-01-01 10:00:00",
	}); err != nil {
		t.Fatalf("InsertUpload() error = %v", err)
	}

	if err := ResetAll(ctx, db); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}

	meta, _ := q.MetadataStat(ctx)
	genomic, _ := q.GenomicStat(ctx)
	uploads, _ := q.CountUploads(ctx)
	if meta.Rows != 0 || genomic.Rows != 0 || uploads != 0 {
		t.Errorf("rows left: metadata %d, genomic %d, uploads %d", meta.Rows, genomic.Rows, uploads)
	}

	// Resetting an empty database is not an error.
	if err := ResetAll(ctx, db); err != nil {
		t.Errorf("second ResetAll() error = %v", err)
	}
}
