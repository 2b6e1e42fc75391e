package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
)

type indexSpec struct {
	model  interface{}
	name   string
	column string
	lower  bool
}

// Migrate creates missing tables and indexes and adds columns that older
// databases lack. It is safe to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	models := []interface{}{
		(*Metadata)(nil),
		(*GenomicData)(nil),
		(*Upload)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	// Databases created before imports were timestamped and tracked
	for _, table := range []string{TableMetadata, TableGenomic} {
		for _, column := range []string{"file_uploaded", "upload_id"} {
			if err := db.ensureColumn(ctx, table, column); err != nil {
				return err
			}
		}
	}

	indexes := []indexSpec{
		{(*Metadata)(nil), "idx_metadata_lab_id", "lab_id", false},
		{(*Metadata)(nil), "idx_metadata_upload_id", "upload_id", false},
		{(*GenomicData)(nil), "idx_genomic_data_lab_id", "lab_id", false},
		{(*GenomicData)(nil), "idx_genomic_data_upload_id", "upload_id", false},
		{(*Metadata)(nil), "idx_metadata_lab_id_lower", "lab_id", true},
		{(*GenomicData)(nil), "idx_genomic_data_lab_id_lower", "lab_id", true},
	}
	for _, idx := range indexes {
		q := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			IfNotExists()
		if idx.lower {
			q = q.ColumnExpr("LOWER(?)", bun.Ident(idx.column))
		} else {
			q = q.Column(idx.column)
		}
		_, err := q.Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// ensureColumn adds a nullable TEXT column when the table lacks it.
func (db *DB) ensureColumn(ctx context.Context, table, column string) error {
	exists, err := db.columnExists(ctx, table, column)
	if err != nil {
		return fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	if exists {
		return nil
	}

	slog.Info("adding missing column", "table", table, "column", column)
	_, err = db.NewAddColumn().
		Table(table).
		ColumnExpr("? TEXT", bun.Ident(column)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

func (db *DB) columnExists(ctx context.Context, table, column string) (bool, error) {
	var n int
	var err error
	if db.IsSQLite() {
		err = db.NewRaw(
			"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column,
		).Scan(ctx, &n)
	} else {
		err = db.NewRaw(
			"SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ? AND column_name = ?",
			table, column,
		).Scan(ctx, &n)
	}
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
