package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/reecem02/relational-db/internal/core"
	"github.com/reecem02/relational-db/internal/ingest"
)

// ImportSpreadsheet previews a metadata sheet, asks to proceed and imports it.
func (h *Handler) ImportSpreadsheet(ctx context.Context) error {
	h.println("\n-- Import Spreadsheet --")
	name, err := h.ask("Enter file name (including file extension): ")
	if err != nil {
		return err
	}
	if name == "" {
		h.println("File name cannot be empty.")
		return nil
	}
	path := h.svc.ResolveInputPath(name)
	h.printf("File path: %s\n", path)

	summary, err := h.svc.PreviewMetadata(ctx, path)
	if err != nil {
		return err
	}
	h.printPreview(summary)
	if !summary.Valid() {
		return fmt.Errorf("validation failed: %s", summary.FirstError)
	}

	ok, err := h.confirm("Proceed with import? (y/n): ")
	if err != nil {
		return err
	}
	if !ok {
		h.println("Import cancelled.")
		return nil
	}

	result, err := h.svc.ImportMetadata(ctx, path, &consoleResolver{h: h})
	if err != nil {
		return err
	}
	h.printf("\nImported %s: %d inserted, %d replaced, %d skipped in %s.\n",
		result.FileName, result.Inserted, result.Replaced, result.Skipped, result.Duration.Round(time.Millisecond))
	if result.UploadID != "" {
		h.printf("Upload ID: %s\n", result.UploadID)
	}
	return nil
}

func (h *Handler) printPreview(p core.PreviewSummary) {
	h.printf("\n%s: %d rows, %d new lab IDs, %d already stored\n",
		p.FileName, p.TotalRows, p.NewLabIDs, p.ExistingLabIDs)
	if len(p.Existing) > 0 {
		more := ""
		if p.ExistingLabIDs > len(p.Existing) {
			more = fmt.Sprintf(" and %d more", p.ExistingLabIDs-len(p.Existing))
		}
		h.printf("Already stored: %s%s\n", strings.Join(p.Existing, ", "), more)
	}
	if p.ErrorRows > 0 || p.DuplicateInFile > 0 {
		h.printf("Rows with errors: %d, duplicate lab IDs in file: %d\n", p.ErrorRows, p.DuplicateInFile)
	}
}

// ImportFasta imports a FASTA file, asking for the lab ID of each sequence.
func (h *Handler) ImportFasta(ctx context.Context) error {
	h.println("\n-- Import FASTA --")
	name, err := h.ask("Enter file name (including file extension): ")
	if err != nil {
		return err
	}
	if name == "" {
		h.println("File name cannot be empty.")
		return nil
	}
	path := h.svc.ResolveInputPath(name)
	h.printf("File path: %s\n", path)
	h.println("Loading genomic data from FASTA file...")

	result, err := h.svc.ImportFasta(ctx, path, &consoleResolver{h: h})
	if err != nil {
		return err
	}
	h.printf("\nImported %s: %d sequences inserted, %d replaced, %d skipped.\n",
		result.FileName, result.Inserted, result.Replaced, result.Skipped)
	if result.Placeholders > 0 {
		h.printf("Created %d placeholder metadata records.\n", result.Placeholders)
	}
	if result.UploadID != "" {
		h.printf("Upload ID: %s\n", result.UploadID)
	}
	return nil
}

// consoleResolver answers import questions by prompting the user.
type consoleResolver struct {
	h         *Handler
	lastLabID string
}

func (r *consoleResolver) ResolveConflict(_ context.Context, c core.Conflict) (core.Decision, error) {
	h := r.h
	subject := fmt.Sprintf("'%s'", c.LabID)
	if c.SequenceID != "" {
		h.printf("\nSequence %s for lab ID %s already exists in the database.\n", c.SequenceID, c.LabID)
		subject = fmt.Sprintf("sequence '%s' of '%s'", c.SequenceID, c.LabID)
	} else {
		h.printf("\nLab ID %s already exists in the database.\n", c.LabID)
	}
	h.println("Existing:")
	h.printRow(c.Existing)
	h.println("\nIncoming:")
	h.printRow(c.Incoming)

	choice, err := h.choose(fmt.Sprintf("\nOptions: [1] Skip or [2] Replace existing entry for %s (1/2): ", subject), "1", "2")
	if err != nil {
		return core.DecisionSkip, err
	}
	if choice == "2" {
		h.printf("Replacing existing entry for %s.\n", c.LabID)
		return core.DecisionReplace, nil
	}
	h.printf("Skipped entry for %s.\n", c.LabID)
	return core.DecisionSkip, nil
}

func (r *consoleResolver) LabIDForSequence(_ context.Context, seq ingest.Sequence) (string, error) {
	column := r.h.svc.Schema().LabIDColumn
	label := fmt.Sprintf("Enter the %s for sequence %s: ", column, seq.ID)
	if r.lastLabID != "" {
		label = fmt.Sprintf("Enter the %s for sequence %s [%s]: ", column, seq.ID, r.lastLabID)
	}

	for {
		answer, err := r.h.ask(label)
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = r.lastLabID
		}
		if answer != "" {
			r.lastLabID = answer
			return answer, nil
		}
		r.h.println("Lab ID cannot be empty.")
	}
}

func (r *consoleResolver) ConfirmPlaceholder(_ context.Context, labID string) (bool, error) {
	return r.h.confirm(fmt.Sprintf("Lab ID %s has no metadata. Create a placeholder record? (y/n): ", labID))
}

var _ core.Resolver = (*consoleResolver)(nil)
