package handler

import (
	"context"
	"fmt"

	"github.com/reecem02/relational-db/internal/core"
)

var deleteScopes = map[string]core.DeleteScope{
	"1": core.DeleteAll,
	"2": core.DeleteMetadataOnly,
	"3": core.DeleteGenomicOnly,
}

// Delete shows a lab ID's data, asks what to remove and requires "yes"
// before deleting.
func (h *Handler) Delete(ctx context.Context) error {
	h.println("\n-- Delete Data --")
	labID, err := h.ask("Enter the lab ID to delete: ")
	if err != nil {
		return err
	}
	if labID == "" {
		h.println("Lab ID cannot be empty.")
		return nil
	}

	rs, err := h.svc.Lookup(ctx, labID)
	if err != nil {
		return err
	}
	if rs.Len() == 0 {
		return fmt.Errorf("%w: nothing stored for %q", core.ErrLabIDNotFound, labID)
	}
	h.printf("\nCurrent data for %s (%d sequences):\n", labID, rs.TotalSequences)
	h.printRows(rs.Rows)

	choice, err := h.choose("\nDelete [1] All data [2] Metadata only [3] Genomic data only [4] Cancel (1-4): ", "1", "2", "3", "4")
	if err != nil {
		return err
	}
	scope, ok := deleteScopes[choice]
	if !ok {
		h.println("Delete cancelled.")
		return nil
	}

	answer, err := h.ask(fmt.Sprintf("Type 'yes' to permanently delete %s for %s: ", scope, labID))
	if err != nil {
		return err
	}
	if answer != "yes" {
		h.println("Delete cancelled.")
		return nil
	}

	result, err := h.svc.Delete(ctx, labID, scope)
	if err != nil {
		return err
	}
	h.printf("Deleted %d metadata rows and %d sequences for %s.\n",
		result.MetadataDeleted, result.GenomicDeleted, result.LabID)
	return nil
}
