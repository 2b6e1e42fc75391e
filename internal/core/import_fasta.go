package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reecem02/relational-db/internal/database"
	"github.com/reecem02/relational-db/internal/ingest"
	"github.com/reecem02/relational-db/internal/logging"
)

// assignment pairs a FASTA record with the lab ID it is stored under.
type assignment struct {
	seq   ingest.Sequence
	labID string
}

func sequenceRow(a assignment) Row {
	row := Row{Fields: []Field{
		{Key: ColSourceTable, Value: database.TableGenomic},
		{Key: ColLabID, Value: a.labID},
		{Key: ColSequenceID, Value: a.seq.ID},
	}}
	if a.seq.Description != "" {
		row.Set(ColDescription, a.seq.Description)
	}
	row.Set(ColLength, strconv.Itoa(a.seq.Len()))
	return row
}

// ImportFasta loads the sequences of a FASTA file.
//
// The resolver names the lab ID of every record before the transaction
// starts. Each lab ID must already have metadata; otherwise a placeholder
// record is created when configured or confirmed, and the import fails
// without changes when it is not.
func (s *Service) ImportFasta(ctx context.Context, path string, resolver Resolver) (ImportResult, error) {
	start := time.Now()
	result := ImportResult{FileName: filepath.Base(path), Target: database.TableGenomic}

	seqs, err := ingest.ReadFasta(path)
	if err != nil {
		return result, err
	}
	if len(seqs) == 0 {
		return result, fmt.Errorf("%s: %w", result.FileName, ErrNoSequences)
	}
	result.Total = len(seqs)

	assignments := make([]assignment, 0, len(seqs))
	for i, seq := range seqs {
		if strings.TrimSpace(seq.ID) == "" {
			return result, fmt.Errorf("record %d of %s has no identifier", i+1, result.FileName)
		}
		labID, err := resolver.LabIDForSequence(ctx, seq)
		if err != nil {
			return result, fmt.Errorf("lab id for %s: %w", seq.ID, err)
		}
		labID = strings.TrimSpace(labID)
		if labID == "" {
			return result, fmt.Errorf("lab id for %s: %w", seq.ID, ErrEmptyLabID)
		}
		assignments = append(assignments, assignment{seq: seq, labID: labID})
	}

	uploadID := uuid.New().String()
	stamp := s.timestamp()
	logger := logging.WithFields(ctx,
		"upload_id", uploadID,
		"file", result.FileName,
		"target", result.Target,
	)
	logger.Info("import started", "sequences", len(assignments))

	err = s.inTx(ctx, func(ctx context.Context, q *database.Queries) error {
		known := make(map[string]bool)
		for _, a := range assignments {
			if err := s.ensureLabID(ctx, q, resolver, a.labID, known, uploadID, stamp, &result); err != nil {
				return err
			}

			exists, err := q.GenomicExists(ctx, a.labID, a.seq.ID)
			if err != nil {
				return fmt.Errorf("check %s/%s: %w", a.labID, a.seq.ID, err)
			}
			if exists {
				decision, err := resolver.ResolveConflict(ctx, Conflict{
					Table:      database.TableGenomic,
					LabID:      a.labID,
					SequenceID: a.seq.ID,
					Existing:   s.existingSequenceRow(ctx, q, a),
					Incoming:   sequenceRow(a),
				})
				if err != nil {
					return fmt.Errorf("resolve %s/%s: %w", a.labID, a.seq.ID, err)
				}
				if decision != DecisionReplace {
					logger.Debug("sequence skipped", "lab_id", a.labID, "sequence_id", a.seq.ID)
					result.Skipped++
					continue
				}
				if _, err := q.DeleteSequence(ctx, a.labID, a.seq.ID); err != nil {
					return fmt.Errorf("replace %s/%s: %w", a.labID, a.seq.ID, err)
				}
				result.Replaced++
			} else {
				result.Inserted++
			}

			index, err := q.NextSeqIndex(ctx, a.labID)
			if err != nil {
				return fmt.Errorf("sequence index for %s: %w", a.labID, err)
			}
			err = q.InsertGenomicData(ctx, []database.GenomicData{{
				LabID:        a.labID,
				SequenceID:   a.seq.ID,
				Description:  a.seq.Description,
				Sequence:     a.seq.Residues,
				SeqIndex:     index,
				UploadID:     uploadID,
				FileUploaded: stamp,
			}})
			if err != nil {
				return fmt.Errorf("insert %s/%s: %w", a.labID, a.seq.ID, err)
			}
		}

		if result.Written() == 0 && result.Placeholders == 0 {
			return nil
		}
		result.UploadID = uploadID
		return q.InsertUpload(ctx, &database.Upload{
			ID:         uploadID,
			Target:     database.TableGenomic,
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
		"placeholders", result.Placeholders,
		"duration", result.Duration,
	)
	return result, nil
}

// ensureLabID makes sure labID has metadata, creating a placeholder record
// when allowed. known caches lab IDs already checked in this import.
func (s *Service) ensureLabID(ctx context.Context, q *database.Queries, resolver Resolver, labID string,
	known map[string]bool, uploadID, stamp string, result *ImportResult) error {
	if known[labID] {
		return nil
	}

	exists, err := q.MetadataExists(ctx, labID)
	if err != nil {
		return fmt.Errorf("check %s: %w", labID, err)
	}
	if exists {
		known[labID] = true
		return nil
	}

	create := s.imp.CreateMissingMetadata
	if !create {
		create, err = resolver.ConfirmPlaceholder(ctx, labID)
		if err != nil {
			return fmt.Errorf("placeholder for %s: %w", labID, err)
		}
	}
	if !create {
		return fmt.Errorf("%w: %q has no metadata; add it first", ErrLabIDNotFound, labID)
	}

	err = q.InsertMetadata(ctx, []database.Metadata{{
		LabID:        labID,
		Attribute:    s.schema.LabIDColumn,
		Value:        labID,
		UploadID:     uploadID,
		FileUploaded: stamp,
	}})
	if err != nil {
		return fmt.Errorf("create placeholder for %s: %w", labID, err)
	}
	known[labID] = true
	result.Placeholders++
	return nil
}

func (s *Service) existingSequenceRow(ctx context.Context, q *database.Queries, a assignment) Row {
	stored, err := q.GetGenomicData(ctx, a.labID, 0)
	if err != nil {
		return Row{}
	}
	for _, g := range stored {
		if g.SequenceID == a.seq.ID {
			return s.genomicRow(g, Preview(g.Sequence, s.search.PrefixLength))
		}
	}
	return Row{}
}
