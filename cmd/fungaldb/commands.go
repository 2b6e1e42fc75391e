package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/reecem02/relational-db/internal/admin"
	"github.com/reecem02/relational-db/internal/application"
	"github.com/reecem02/relational-db/internal/config"
	"github.com/reecem02/relational-db/internal/core"
	"github.com/reecem02/relational-db/internal/database"
	"github.com/reecem02/relational-db/internal/export"
	"github.com/reecem02/relational-db/internal/handler"
	"github.com/reecem02/relational-db/internal/logging"
)

var (
	configPath string
	cfg        *config.Config
)

// rootCmd starts the interactive menu
var rootCmd = &cobra.Command{
	Use:           "fungaldb",
	Short:         "Import, search, delete and export fungal sample data",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		slog.Debug("configuration loaded",
			"driver", cfg.Database.Driver,
			"import_dir", cfg.Import.Directory,
			"export_dir", cfg.Export.Directory,
		)
		return nil
	},
	RunE: runMenu,
}

var searchOut string
var searchAppend bool

// searchCmd prints the results of one search, optionally exporting them
var searchCmd = &cobra.Command{
	Use:     "search [keyword]",
	Short:   "Search by lab ID or keyword",
	Args:    cobra.ExactArgs(1),
	Example: "  fungaldb search UL001\n  fungaldb search fusarium --out results.xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc *core.Service, _ *database.DB) error {
			rs, err := svc.Search(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rs.Len() == 0 {
				fmt.Fprintf(out, "No results found for: %s\n", args[0])
				return nil
			}
			h := handler.New(svc, nil, nil, out)
			h.PrintResults(rs)

			if searchOut == "" {
				return nil
			}
			mode := export.ModeOverwrite
			if searchAppend {
				mode = export.ModeAppend
			}
			result, err := export.New(cfg.Export).Export(ctx, rs, searchOut, mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d results written to %s.\n", result.Rows, result.Location)
			return nil
		})
	},
}

// infoCmd prints database statistics
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show table statistics and database size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc *core.Service, _ *database.DB) error {
			return handler.New(svc, nil, nil, cmd.OutOrStdout()).Info(ctx)
		})
	},
}

var historyLimit int

// historyCmd lists recorded imports
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded imports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc *core.Service, _ *database.DB) error {
			records, err := svc.ListImports(ctx, historyLimit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), records)
		})
	},
}

// rollbackCmd deletes the rows written by one import
var rollbackCmd = &cobra.Command{
	Use:   "rollback [upload-id]",
	Short: "Delete every row written by an import",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc *core.Service, _ *database.DB) error {
			result, err := svc.RollbackImport(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %s: %d metadata rows and %d sequences deleted.\n",
				result.FileName, result.MetadataDeleted, result.GenomicDeleted)
			return nil
		})
	},
}

var resetConfirmed bool

// resetCmd wipes all tables
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all metadata, sequences and import history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirmed {
			return errors.New("refusing to reset the database without --yes")
		}
		return withService(cmd.Context(), func(ctx context.Context, _ *core.Service, db *database.DB) error {
			if err := admin.ResetAll(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database reset.")
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath+")")

	searchCmd.Flags().StringVar(&searchOut, "out", "", "export results to a .csv, .xlsx or .txt file or s3://bucket/key")
	searchCmd.Flags().BoolVar(&searchAppend, "append", false, "append to an existing --out file")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum imports to list (0 for all)")
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm the reset")

	rootCmd.AddCommand(searchCmd, infoCmd, historyCmd, rollbackCmd, resetCmd)
}

// withService opens and migrates the database, builds the service and runs fn.
func withService(ctx context.Context, fn func(ctx context.Context, svc *core.Service, db *database.DB) error) error {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	svc, err := core.NewService(db, cfg)
	if err != nil {
		return err
	}
	return fn(ctx, svc, db)
}

func runMenu(cmd *cobra.Command, args []string) error {
	return withService(cmd.Context(), func(ctx context.Context, svc *core.Service, _ *database.DB) error {
		var (
			prompt handler.Prompter
			out    io.Writer = os.Stdout
		)
		if handler.IsTerminal() {
			rl, err := handler.NewReadlinePrompter(historyFile())
			if err != nil {
				return err
			}
			defer rl.Close()
			prompt, out = rl, rl.Stdout()
		} else {
			prompt = handler.NewLinePrompter(os.Stdin, os.Stdout)
		}

		h := handler.New(svc, export.New(cfg.Export), prompt, out)
		return application.New(h, prompt, out).Run(ctx)
	})
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".fungaldb_history")
}

func printHistory(w io.Writer, records []core.ImportRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No imports recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "UPLOAD ID\tTARGET\tFILE\tROWS\tUPLOADED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s (%s)\n",
			r.UploadID, r.Target, r.FileName, r.Rows,
			r.UploadedAt.Format(database.TimestampLayout), humanize.Time(r.UploadedAt))
	}
	return tw.Flush()
}
