// Package core provides the business logic of the fungal research database.
//
// This package holds all domain logic independent of the terminal UI. It is
// used by the interactive menu, the cobra subcommands and tests without
// modification.
//
// # Architecture
//
// The package is organized around a single [Service] built from an open
// [database.DB] and the loaded [config.Config]:
//
//   - Import: spreadsheets of metadata and FASTA files of sequences are
//     validated in full, then written in one transaction per file.
//   - Search: a keyword shaped like a lab ID returns exactly that lab ID's
//     data; any other keyword scans every textual column of both tables.
//   - Delete: removes a lab ID's metadata, sequences or both.
//   - Info: row counts, upload times and sequence length statistics.
//   - History: every import is recorded in the uploads ledger and can be
//     rolled back.
//
// # Conflicts
//
// Interactive decisions are delegated to a [Resolver]. The CLI prompts the
// user; [PolicyResolver] answers from fixed settings for scripts and tests.
//
//	res, err := svc.ImportMetadata(ctx, "isolates.xlsx", core.PolicyResolver{
//	    OnConflict: core.DecisionReplace,
//	})
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB007: Database errors (duplicates, connections, locks)
//   - VAL001-VAL009: Validation errors (formats, missing columns)
//   - FILE001-FILE006: File errors (missing, unreadable, empty)
//   - LAB001-LAB003: Lab ID errors
//   - EXP001-EXP004: Export errors
//   - UPL001-UPL003: Import history and cancellation errors
package core
