package handler

import (
	"context"
	"fmt"

	"github.com/reecem02/relational-db/internal/core"
	"github.com/reecem02/relational-db/internal/database"
	"github.com/reecem02/relational-db/internal/export"
)

// Search asks for a keyword, prints the first preview_rows results and
// offers to show the rest or export them.
func (h *Handler) Search(ctx context.Context) error {
	h.println("\n-- Search Data --")
	keyword, err := h.ask("Enter a keyword to search: ")
	if err != nil {
		return err
	}
	if keyword == "" {
		h.println("Search term cannot be empty.")
		return nil
	}

	rs, err := h.svc.Search(ctx, keyword)
	if err != nil {
		return err
	}
	if rs.Len() == 0 {
		h.printf("No results found for: %s\n", keyword)
		return nil
	}
	h.session.SetResults(rs)

	preview := h.svc.SearchConfig().PreviewRows
	if preview <= 0 || rs.Len() <= preview {
		h.printf("\n-- Search Results (%d) --\n", rs.Len())
		h.printRows(rs.Rows)
		h.printSequenceNote(rs)
		return h.offerExport(ctx, rs)
	}

	h.printf("\n-- Search Results (First %d Entries) --\n", preview)
	h.printRows(rs.Rows[:preview])
	h.printf("\nMore than %d results found (%d total).\n", preview, rs.Len())
	choice, err := h.choose("Would you like to [1] View all results or [2] Export? (1/2): ", "1", "2")
	if err != nil {
		return err
	}
	if choice == "2" {
		return h.exportResults(ctx, rs)
	}

	h.println("\n-- All Search Results --")
	h.printRows(rs.Rows)
	h.printSequenceNote(rs)
	return h.offerExport(ctx, rs)
}

// printSequenceNote tells how many sequences a lab ID lookup left out.
func (h *Handler) printSequenceNote(rs *core.ResultSet) {
	if rs.Mode != core.ModeLabID {
		return
	}
	shown := 0
	for _, row := range rs.Rows {
		if table, _ := row.Get(core.ColSourceTable); table == database.TableGenomic {
			shown++
		}
	}
	if rs.TotalSequences > shown {
		h.printf("\nShowing %d of %d sequences for %s.\n", shown, rs.TotalSequences, rs.Keyword)
	}
}

func (h *Handler) offerExport(ctx context.Context, rs *core.ResultSet) error {
	ok, err := h.confirm("\nWould you like to export these results? (y/n): ")
	if err != nil || !ok {
		return err
	}
	return h.exportResults(ctx, rs)
}

// exportResults asks for a destination and, when it exists, whether to
// append or overwrite.
func (h *Handler) exportResults(ctx context.Context, rs *core.ResultSet) error {
	dest, err := h.ask("Enter the file name to save the results (e.g., results.xlsx, results.csv, results.txt or s3://bucket/results.csv): ")
	if err != nil {
		return err
	}
	if dest == "" {
		h.println("Export cancelled.")
		return nil
	}
	if _, err := export.FormatFromPath(dest); err != nil {
		return err
	}

	exists, err := h.exporter.Exists(ctx, dest)
	if err != nil {
		return err
	}
	mode := export.ModeOverwrite
	if exists {
		choice, err := h.choose(fmt.Sprintf("%s already exists. [1] Append or [2] Overwrite? (1/2): ", h.exporter.Location(ctx, dest)), "1", "2")
		if err != nil {
			return err
		}
		if choice == "1" {
			mode = export.ModeAppend
		}
	}

	result, err := h.exporter.Export(ctx, rs, dest, mode)
	if err != nil {
		return err
	}
	verb := "exported to"
	if result.Appended {
		verb = "appended to"
	}
	h.printf("%d results %s %s.\n", result.Rows, verb, result.Location)
	return nil
}

// Export writes the last search results.
func (h *Handler) Export(ctx context.Context) error {
	h.println("\n-- Export Data --")
	rs := h.session.LastResults()
	if rs.Len() == 0 {
		h.println("No data available to export. Please run a search first.")
		return nil
	}
	h.printf("Exporting %d results for %q (CSV, Excel or text by extension).\n", rs.Len(), rs.Keyword)
	return h.exportResults(ctx, rs)
}

// PrintResults prints every row of rs.
func (h *Handler) PrintResults(rs *core.ResultSet) {
	h.printRows(rs.Rows)
	h.printSequenceNote(rs)
}
