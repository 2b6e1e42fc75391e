package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/reecem02/relational-db/internal/database"
	"github.com/reecem02/relational-db/internal/logging"
)

// Delete removes a lab ID's rows in one transaction. ErrLabIDNotFound is
// returned when nothing in scope exists for the lab ID.
func (s *Service) Delete(ctx context.Context, labID string, scope DeleteScope) (DeleteResult, error) {
	labID = strings.TrimSpace(labID)
	result := DeleteResult{LabID: labID, Scope: scope}
	if labID == "" {
		return result, ErrEmptyLabID
	}

	err := s.inTx(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		if scope == DeleteAll || scope == DeleteMetadataOnly {
			if result.MetadataDeleted, err = q.DeleteMetadata(ctx, labID); err != nil {
				return fmt.Errorf("delete metadata: %w", err)
			}
		}
		if scope == DeleteAll || scope == DeleteGenomicOnly {
			if result.GenomicDeleted, err = q.DeleteGenomicData(ctx, labID); err != nil {
				return fmt.Errorf("delete genomic data: %w", err)
			}
		}
		if result.MetadataDeleted+result.GenomicDeleted == 0 {
			return fmt.Errorf("%w: no %s stored for %q", ErrLabIDNotFound, scope, labID)
		}
		return nil
	})
	if err != nil {
		return DeleteResult{LabID: labID, Scope: scope}, err
	}

	logging.WithFields(ctx, "lab_id", labID, "scope", scope.String()).Info("lab id deleted",
		"metadata_rows", result.MetadataDeleted,
		"genomic_rows", result.GenomicDeleted,
	)
	return result, nil
}
