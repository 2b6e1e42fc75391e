package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/reecem02/relational-db/internal/core"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		msg := core.MapError(err)
		fmt.Fprintf(os.Stderr, "Error: %s [%s]\n", msg.Message, msg.Code)
		if msg.Action != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", msg.Action)
		}
		fmt.Fprintf(os.Stderr, "  Details: %v\n", err)
		os.Exit(1)
	}
}
