// Package config provides centralized configuration management for fungaldb.
// Settings come from struct-tag defaults, an optional YAML file and environment
// variables (in that order), and are validated on startup to fail fast on
// misconfiguration.
package config

import (
	"github.com/reecem02/relational-db/internal/schema"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "config.yaml"

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig    `yaml:"database"`
	Schema   schema.Definition `yaml:"schema"`
	Import   ImportConfig      `yaml:"import"`
	Search   SearchConfig      `yaml:"search"`
	Export   ExportConfig      `yaml:"export"`
	Logging  LoggingConfig     `yaml:"logging"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Driver selects the backend: sqlite (default) or postgres
	Driver string `yaml:"driver" env:"FUNGALDB_DB_DRIVER" default:"sqlite"`

	// Path is the SQLite database file; "~" is expanded
	Path string `yaml:"path" env:"FUNGALDB_DB_PATH" default:"~/fungal_db.sqlite"`

	// URL is the PostgreSQL connection string (postgres driver only)
	// Supports both FUNGALDB_DATABASE_URL and DATABASE_URL env vars
	URL string `yaml:"url" env:"FUNGALDB_DATABASE_URL" envAlt:"DATABASE_URL"`
}

// ImportConfig holds spreadsheet and FASTA import settings.
type ImportConfig struct {
	// Directory is where relative input file names are resolved
	Directory string `yaml:"directory" env:"FUNGALDB_IMPORT_DIR" default:"example_files"`

	// CreateMissingMetadata adds a placeholder metadata row for unknown lab IDs
	// during FASTA import instead of asking
	CreateMissingMetadata bool `yaml:"create_missing_metadata" env:"FUNGALDB_CREATE_MISSING" default:"false"`

	// HeaderSearchRows is how many leading rows are scanned for the header
	HeaderSearchRows int `yaml:"header_search_rows" default:"10"`
}

// SearchConfig holds search and result rendering settings.
type SearchConfig struct {
	LabIDPattern     string `yaml:"lab_id_pattern" env:"FUNGALDB_LAB_ID_PATTERN" default:"^[A-Za-z]{2,4}[0-9]{2,}$"`
	MaxSequences     int    `yaml:"max_sequences" default:"5"`
	MaxResults       int    `yaml:"max_results" default:"100"`
	PreviewRows      int    `yaml:"preview_rows" default:"5"`
	WrapWidth        int    `yaml:"wrap_width" default:"60"`
	MaxSequenceChars int    `yaml:"max_sequence_chars" default:"300"`
	SnippetThreshold int    `yaml:"snippet_threshold" default:"100"`
	SnippetContext   int    `yaml:"snippet_context" default:"30"`
	MaxSnippets      int    `yaml:"max_snippets" default:"2"`
	PrefixLength     int    `yaml:"prefix_length" default:"100"`
}

// ExportConfig holds export destination settings.
type ExportConfig struct {
	// Directory is where relative export file names are written
	Directory string `yaml:"directory" env:"FUNGALDB_EXPORT_DIR" default:"."`

	S3Region    string `yaml:"s3_region" env:"FUNGALDB_S3_REGION" default:"us-east-1"`
	S3Endpoint  string `yaml:"s3_endpoint" env:"FUNGALDB_S3_ENDPOINT"`
	S3PathStyle bool   `yaml:"s3_path_style" env:"FUNGALDB_S3_PATH_STYLE" default:"false"`

	// Static S3 credentials; when empty the default AWS credential chain is used
	S3AccessKeyID     string `yaml:"s3_access_key_id" env:"FUNGALDB_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key" env:"FUNGALDB_S3_SECRET_ACCESS_KEY"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"FUNGALDB_LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"FUNGALDB_LOG_FORMAT" default:"text"`
}

// IsPostgres reports whether the postgres backend is selected.
func (c *DatabaseConfig) IsPostgres() bool {
	return c.Driver == "postgres" || c.Driver == "pgx"
}
