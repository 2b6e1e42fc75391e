// Package database owns the relational store: bun models, connection setup,
// schema migration and the queries the rest of the program runs.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/reecem02/relational-db/internal/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB is an open database handle.
type DB struct {
	*bun.DB

	// Path is the SQLite file, empty for postgres.
	Path string
}

// Open connects to the configured backend and verifies the connection.
// SQLite files and their parent directories are created as needed.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	if cfg.IsPostgres() {
		sqldb, err := sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db := &DB{DB: bun.NewDB(sqldb, pgdialect.New())}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return db, nil
	}

	path := config.ExpandHome(cfg.Path)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	sqldb, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: the program is single-threaded and SQLite serializes
	// writers anyway. Work inside a transaction must use the tx handle.
	sqldb.SetMaxOpenConns(1)

	db := &DB{DB: bun.NewDB(sqldb, sqlitedialect.New()), Path: path}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// IsSQLite reports whether the handle uses the SQLite dialect.
func (db *DB) IsSQLite() bool {
	return db.Dialect().Name() == dialect.SQLite
}

// Queries returns a query set bound to the connection (not a transaction).
func (db *DB) Queries() *Queries {
	return New(db.DB)
}

// SizeBytes returns the on-disk size of a SQLite database.
// ok is false for postgres or when the file cannot be stat'ed.
func (db *DB) SizeBytes() (size int64, ok bool) {
	if db.Path == "" {
		return 0, false
	}
	info, err := os.Stat(db.Path)
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}
