package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/reecem02/relational-db/internal/ingest"
)

// PolicyResolver answers import questions from fixed settings. It is used
// by non-interactive commands and tests.
type PolicyResolver struct {
	// OnConflict is applied to every conflict.
	OnConflict Decision

	// LabIDs maps FASTA record IDs to lab IDs.
	LabIDs map[string]string

	// LabID is used for records missing from LabIDs.
	LabID string

	// CreatePlaceholders allows placeholder metadata for unknown lab IDs.
	CreatePlaceholders bool
}

func (p PolicyResolver) ResolveConflict(ctx context.Context, c Conflict) (Decision, error) {
	return p.OnConflict, nil
}

func (p PolicyResolver) LabIDForSequence(ctx context.Context, seq ingest.Sequence) (string, error) {
	if id, ok := p.LabIDs[seq.ID]; ok && strings.TrimSpace(id) != "" {
		return id, nil
	}
	if strings.TrimSpace(p.LabID) != "" {
		return p.LabID, nil
	}
	return "", fmt.Errorf("sequence %q: %w", seq.ID, ErrEmptyLabID)
}

func (p PolicyResolver) ConfirmPlaceholder(ctx context.Context, labID string) (bool, error) {
	return p.CreatePlaceholders, nil
}
