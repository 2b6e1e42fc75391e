package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/reecem02/relational-db/internal/schema"
	"go.yaml.in/yaml/v2"
)

// Load reads configuration from defaults, the YAML file at path and
// environment variables, then validates the result.
//
// An empty path means DefaultPath, which may be absent. A path given
// explicitly must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := &Config{}
	if err := applyDefaults(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeYAML(data, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults and environment only
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := applyEnv(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	cfg.fillSchemaDefaults()
	cfg.Database.Path = ExpandHome(cfg.Database.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Default returns a validated configuration built from defaults only.
// Environment variables are ignored.
func Default() *Config {
	cfg := &Config{}
	if err := applyDefaults(reflect.ValueOf(cfg).Elem()); err != nil {
		panic(fmt.Sprintf("invalid default tag: %v", err))
	}
	cfg.fillSchemaDefaults()
	cfg.Database.Path = ExpandHome(cfg.Database.Path)
	return cfg
}

// decodeYAML overlays the file onto cfg. Unknown keys are rejected so typos
// in column or section names surface at startup.
func decodeYAML(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return yaml.UnmarshalStrict(data, cfg)
}

func (c *Config) fillSchemaDefaults() {
	def := schema.DefaultDefinition()
	if strings.TrimSpace(c.Schema.LabIDColumn) == "" {
		c.Schema.LabIDColumn = def.LabIDColumn
	}
	if c.Schema.MetadataColumns == nil {
		c.Schema.MetadataColumns = def.MetadataColumns
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// applyDefaults recursively populates struct fields from their default tags.
func applyDefaults(v reflect.Value) error {
	return walkFields(v, func(field reflect.StructField, fieldVal reflect.Value) error {
		defaultVal := field.Tag.Get("default")
		if defaultVal == "" {
			return nil
		}
		if err := setField(fieldVal, defaultVal); err != nil {
			return fmt.Errorf("invalid default for %s=%q: %w", field.Name, defaultVal, err)
		}
		return nil
	})
}

// applyEnv recursively overrides struct fields from environment variables.
func applyEnv(v reflect.Value) error {
	return walkFields(v, func(field reflect.StructField, fieldVal reflect.Value) error {
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		if envName == "" {
			return nil
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}
		if value == "" {
			return nil
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
		return nil
	})
}

func walkFields(v reflect.Value, fn func(reflect.StructField, reflect.Value) error) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := walkFields(fieldVal, fn); err != nil {
				return err
			}
			continue
		}

		if err := fn(field, fieldVal); err != nil {
			return err
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite":
		if strings.TrimSpace(c.Database.Path) == "" {
			errs = append(errs, "database.path is required for the sqlite driver")
		}
	case "postgres", "pgx":
		if strings.TrimSpace(c.Database.URL) == "" {
			errs = append(errs, "database.url (FUNGALDB_DATABASE_URL) is required for the postgres driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver (%q) must be one of: sqlite, postgres", c.Database.Driver))
	}

	// Schema validation
	errs = append(errs, c.Schema.Validate()...)

	// Import validation
	if c.Import.HeaderSearchRows <= 0 {
		errs = append(errs, "import.header_search_rows must be positive")
	}

	// Search validation
	if _, err := regexp.Compile(c.Search.LabIDPattern); err != nil {
		errs = append(errs, fmt.Sprintf("search.lab_id_pattern is not a valid regular expression: %v", err))
	}
	positives := []struct {
		name  string
		value int
	}{
		{"search.max_sequences", c.Search.MaxSequences},
		{"search.max_results", c.Search.MaxResults},
		{"search.preview_rows", c.Search.PreviewRows},
		{"search.wrap_width", c.Search.WrapWidth},
		{"search.max_sequence_chars", c.Search.MaxSequenceChars},
		{"search.snippet_threshold", c.Search.SnippetThreshold},
		{"search.max_snippets", c.Search.MaxSnippets},
		{"search.prefix_length", c.Search.PrefixLength},
	}
	for _, p := range positives {
		if p.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive", p.name))
		}
	}
	if c.Search.SnippetContext < 0 {
		errs = append(errs, "search.snippet_context must be non-negative")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("logging.level (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("logging.format (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	if c.Database.IsPostgres() {
		b.WriteString(fmt.Sprintf("Database: {Driver: %q, URL: [MASKED]}, ", c.Database.Driver))
	} else {
		b.WriteString(fmt.Sprintf("Database: {Driver: %q, Path: %q}, ", c.Database.Driver, c.Database.Path))
	}
	b.WriteString(fmt.Sprintf("Schema: {LabIDColumn: %q, Columns: %d}, ",
		c.Schema.LabIDColumn, len(c.Schema.MetadataColumns)))
	b.WriteString(fmt.Sprintf("Search: {LabIDPattern: %q, MaxSequences: %d, MaxResults: %d}, ",
		c.Search.LabIDPattern, c.Search.MaxSequences, c.Search.MaxResults))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
