package handler

import (
	"context"

	"github.com/dustin/go-humanize"

	"github.com/reecem02/relational-db/internal/database"
)

var tableTitles = map[string]string{
	database.TableMetadata: "Metadata Table",
	database.TableGenomic:  "GenomicData Table",
}

// Info prints table statistics, sequence figures and the database size.
func (h *Handler) Info(ctx context.Context) error {
	info, err := h.svc.Info(ctx)
	if err != nil {
		return err
	}

	h.println("\n-- Database Information --")
	h.printf("Backend: %s (%s)\n", info.Driver, info.Location)
	for _, t := range info.Tables {
		title := tableTitles[t.Name]
		if title == "" {
			title = t.Name
		}
		last := t.LastUploaded
		if last == "" {
			last = "N/A"
		}
		h.printf("\n%s:\n", title)
		h.printf("Number of entries: %s\n", humanize.Comma(int64(t.Rows)))
		h.printf("Last uploaded: %s\n", last)
	}

	h.printf("\nLab IDs: %s\n", humanize.Comma(int64(info.LabIDs)))
	h.printf("Imports recorded: %s\n", humanize.Comma(int64(info.Imports)))

	st := info.Sequences
	if st.Count > 0 {
		h.println("\nSequences:")
		h.printf("Count: %s, total bases: %s\n", humanize.Comma(int64(st.Count)), humanize.Comma(int64(st.TotalBases)))
		h.printf("Length min/max: %d / %d\n", st.Min, st.Max)
		h.printf("Length mean: %.1f, std dev: %.1f\n", st.Mean, st.StdDev)
	}

	if info.SizeKnown {
		h.printf("\nTotal database size: %s\n", humanize.Bytes(uint64(info.SizeBytes)))
	} else {
		h.println("\nDatabase size information is not available.")
	}
	return nil
}

const helpText = `
-- Help --
1) Import Data: load a metadata spreadsheet (CSV or Excel) or a FASTA file.
   Relative file names are read from the import directory. Existing lab IDs
   can be skipped or replaced.
2) Search Data: a lab ID (e.g. UL001) shows that sample's metadata and
   sequences; any other keyword searches every text column of both tables.
3) Delete Data: remove a lab ID's metadata, sequences or both.
4) Export Data: save the last search results as .csv, .xlsx or .txt, locally
   or to s3://bucket/key. Existing files can be appended to or overwritten.
5) Help: show this text.
6) Database Information: row counts, last upload times and database size.
7) Import History: list past imports and roll one back.
8) Exit: quit the program.
Press Ctrl-C at any prompt to cancel the current action.`

// Help prints a short description of every menu option.
func (h *Handler) Help(_ context.Context) error {
	h.println(helpText)
	return nil
}
