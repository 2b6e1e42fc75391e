// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/reecem02/relational-db/internal/database"
	"github.com/reecem02/relational-db/internal/logging"
)

// ResetTimeout is the maximum duration for database reset operations.
const ResetTimeout = 30 * time.Second

type dbResetFn func(ctx context.Context) error

// ResetAll deletes every metadata row, sequence and import history entry in
// one transaction. This is a destructive operation - use with caution.
func ResetAll(ctx context.Context, db *database.DB) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := database.New(tx)
		return runResets(ctx, []dbResetFn{
			q.ResetGenomicData,
			q.ResetMetadata,
			q.ResetUploads,
		})
	})
	if err != nil {
		return fmt.Errorf("reset database: %w", err)
	}

	logging.FromContext(ctx).Info("database reset", "location", db.Path)
	return nil
}

func runResets(ctx context.Context, resets []dbResetFn) error {
	for _, reset := range resets {
		if err := reset(ctx); err != nil {
			return err
		}
	}
	return nil
}
