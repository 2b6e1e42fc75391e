package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reecem02/relational-db/internal/database"
	"github.com/reecem02/relational-db/internal/logging"
)

// ListImports returns the import history, newest first. limit <= 0 returns
// every entry.
func (s *Service) ListImports(ctx context.Context, limit int) ([]ImportRecord, error) {
	uploads, err := s.db.Queries().ListUploads(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}

	records := make([]ImportRecord, 0, len(uploads))
	for _, u := range uploads {
		records = append(records, ImportRecord{
			UploadID:   u.ID,
			Target:     u.Target,
			FileName:   u.FileName,
			Rows:       u.RowCount,
			UploadedAt: parseTimestamp(u.UploadedAt),
		})
	}
	return records, nil
}

// RollbackImport deletes every row written by an import, then its history
// entry. Rows that the import replaced are not restored.
func (s *Service) RollbackImport(ctx context.Context, uploadID string) (RollbackResult, error) {
	uploadID = strings.TrimSpace(uploadID)
	result := RollbackResult{UploadID: uploadID}

	err := s.inTx(ctx, func(ctx context.Context, q *database.Queries) error {
		upload, err := q.GetUpload(ctx, uploadID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrUploadNotFound, uploadID)
		}
		if err != nil {
			return fmt.Errorf("get upload: %w", err)
		}
		result.Target = upload.Target
		result.FileName = upload.FileName

		if result.GenomicDeleted, err = q.DeleteGenomicByUpload(ctx, uploadID); err != nil {
			return fmt.Errorf("delete genomic data: %w", err)
		}
		if result.MetadataDeleted, err = q.DeleteMetadataByUpload(ctx, uploadID); err != nil {
			return fmt.Errorf("delete metadata: %w", err)
		}
		if err := q.DeleteUpload(ctx, uploadID); err != nil {
			return fmt.Errorf("delete upload: %w", err)
		}
		return nil
	})
	if err != nil {
		return RollbackResult{UploadID: uploadID}, err
	}

	logging.WithFields(ctx, "upload_id", uploadID, "file", result.FileName).Info("import rolled back",
		"metadata_rows", result.MetadataDeleted,
		"genomic_rows", result.GenomicDeleted,
	)
	return result, nil
}

// parseTimestamp reads a stored timestamp as local time; the zero time is
// returned for malformed values.
func parseTimestamp(s string) time.Time {
	t, err := time.ParseInLocation(database.TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
