package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/reecem02/relational-db/internal/config"
	"github.com/reecem02/relational-db/internal/database"
	"github.com/reecem02/relational-db/internal/schema"
	"github.com/uptrace/bun"
)

// Service provides all database operations.
type Service struct {
	db     *database.DB
	driver string
	schema schema.Definition
	imp    config.ImportConfig
	search config.SearchConfig

	labIDPattern *regexp.Regexp
	now          func() time.Time
}

// NewService creates a Service over an open, migrated database.
func NewService(db *database.DB, cfg *config.Config) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	pattern, err := regexp.Compile(cfg.Search.LabIDPattern)
	if err != nil {
		return nil, fmt.Errorf("compile lab id pattern: %w", err)
	}

	return &Service{
		db:           db,
		driver:       cfg.Database.Driver,
		schema:       cfg.Schema,
		imp:          cfg.Import,
		search:       cfg.Search,
		labIDPattern: pattern,
		now:          time.Now,
	}, nil
}

// Schema returns the metadata layout imports are validated against.
func (s *Service) Schema() schema.Definition {
	return s.schema
}

// SearchConfig returns the result rendering settings.
func (s *Service) SearchConfig() config.SearchConfig {
	return s.search
}

// IsLabID reports whether keyword is shaped like a lab ID.
func (s *Service) IsLabID(keyword string) bool {
	return s.labIDPattern.MatchString(strings.TrimSpace(keyword))
}

// ResolveInputPath returns name as given when it exists or is absolute,
// otherwise relative to the configured import directory.
func (s *Service) ResolveInputPath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	if s.imp.Directory == "" {
		return name
	}
	return filepath.Join(s.imp.Directory, name)
}

// timestamp returns the stored form of the current time.
func (s *Service) timestamp() string {
	return s.now().Format(database.TimestampLayout)
}

// inTx runs fn in a transaction with a query set bound to it.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context, q *database.Queries) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, database.New(tx))
	})
}
