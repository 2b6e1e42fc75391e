package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// HistoryLimit caps the imports listed by History.
var HistoryLimit = 20

// History lists recent imports and optionally rolls one back.
func (h *Handler) History(ctx context.Context) error {
	h.println("\n-- Import History --")
	records, err := h.svc.ListImports(ctx, HistoryLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		h.println("No imports recorded.")
		return nil
	}

	for i, r := range records {
		h.printf("%2d) %-12s %-30s %6d rows  %s  [%s]\n",
			i+1, r.Target, r.FileName, r.Rows, humanize.Time(r.UploadedAt), r.UploadID)
	}

	answer, err := h.ask("\nEnter a number to roll back that import, or press Enter to go back: ")
	if err != nil || answer == "" {
		return err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(records) {
		h.println("Invalid selection.")
		return nil
	}
	rec := records[n-1]

	confirm, err := h.ask(fmt.Sprintf("Type 'yes' to delete every row imported from %s: ", rec.FileName))
	if err != nil {
		return err
	}
	if confirm != "yes" {
		h.println("Rollback cancelled.")
		return nil
	}

	result, err := h.svc.RollbackImport(ctx, rec.UploadID)
	if err != nil {
		return err
	}
	h.printf("Rolled back %s: %d metadata rows and %d sequences deleted.\n",
		result.FileName, result.MetadataDeleted, result.GenomicDeleted)
	return nil
}
