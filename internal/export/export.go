// Package export writes search results to CSV, Excel or aligned text files,
// either on local disk or in an S3 bucket.
package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/reecem02/relational-db/internal/config"
	"github.com/reecem02/relational-db/internal/logging"
)

var (
	// ErrColumnMismatch is returned when appended rows cannot be matched to
	// the existing file's header.
	ErrColumnMismatch = errors.New("columns do not match the existing file")

	// ErrUnsupportedFormat is returned for destinations without a
	// .csv, .xlsx or .txt extension.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrNoData is returned when there is nothing to export.
	ErrNoData = errors.New("no data to export")
)

// Tabular is anything with a header and rows aligned to it.
type Tabular interface {
	Header() []string
	Records() [][]string
}

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatText Format = "txt"
)

// FormatFromPath picks the format from the destination's extension.
func FormatFromPath(dest string) (Format, error) {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q (use .csv, .xlsx or .txt)", ErrUnsupportedFormat, filepath.Ext(dest))
	}
}

// Mode selects what happens when the destination already exists.
type Mode int

const (
	ModeOverwrite Mode = iota
	ModeAppend
)

func (m Mode) String() string {
	if m == ModeAppend {
		return "append"
	}
	return "overwrite"
}

// Result describes a finished export.
type Result struct {
	Location string
	Format   Format
	Rows     int
	Appended bool
	Duration time.Duration
}

// Exporter routes destinations to a sink: s3://bucket/key goes to S3,
// anything else to the local export directory.
type Exporter struct {
	local Sink

	remote    Sink
	newRemote func(ctx context.Context) (Sink, error)
}

// New returns an Exporter for cfg. The S3 client is created on first use.
func New(cfg config.ExportConfig) *Exporter {
	return &Exporter{
		local: &FileSink{Dir: cfg.Directory},
		newRemote: func(ctx context.Context) (Sink, error) {
			return NewS3Sink(ctx, cfg)
		},
	}
}

// NewWithSinks returns an Exporter writing local paths to local and S3
// URLs to remote. A nil remote rejects S3 destinations.
func NewWithSinks(local, remote Sink) *Exporter {
	return &Exporter{local: local, remote: remote}
}

func (e *Exporter) sinkFor(ctx context.Context, dest string) (Sink, error) {
	if !IsS3URL(dest) {
		return e.local, nil
	}
	if e.remote == nil {
		if e.newRemote == nil {
			return nil, errors.New("s3 destinations are not configured")
		}
		sink, err := e.newRemote(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		e.remote = sink
	}
	return e.remote, nil
}

// Exists reports whether dest already exists, so callers can ask whether to
// append or overwrite.
func (e *Exporter) Exists(ctx context.Context, dest string) (bool, error) {
	sink, err := e.sinkFor(ctx, dest)
	if err != nil {
		return false, err
	}
	return sink.Exists(ctx, dest)
}

// Location returns where dest will be written.
func (e *Exporter) Location(ctx context.Context, dest string) string {
	sink, err := e.sinkFor(ctx, dest)
	if err != nil {
		return dest
	}
	return sink.Location(dest)
}

// Export writes data to dest. In append mode an existing destination keeps
// its content; new rows are realigned to its header, and columns the file
// lacks are added to the end of the header. A missing or empty destination
// is written as in overwrite mode.
func (e *Exporter) Export(ctx context.Context, data Tabular, dest string, mode Mode) (Result, error) {
	start := time.Now()
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return Result{}, errors.New("export destination is empty")
	}
	header := data.Header()
	if len(header) == 0 {
		return Result{}, ErrNoData
	}

	format, err := FormatFromPath(dest)
	if err != nil {
		return Result{}, err
	}
	sink, err := e.sinkFor(ctx, dest)
	if err != nil {
		return Result{}, err
	}
	records := data.Records()
	result := Result{Location: sink.Location(dest), Format: format, Rows: len(records)}

	var existing []byte
	if mode == ModeAppend {
		existing, err = sink.Read(ctx, dest)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("read %s: %w", result.Location, err)
		}
		result.Appended = len(existing) > 0
	}

	var out []byte
	if result.Appended {
		out, err = appendTable(format, existing, header, records)
	} else {
		out, err = encodeTable(format, header, records)
	}
	if err != nil {
		return Result{}, fmt.Errorf("export %s: %w", result.Location, err)
	}

	if err := sink.Write(ctx, dest, out); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", result.Location, err)
	}
	result.Duration = time.Since(start)

	logging.WithFields(ctx, "destination", result.Location).Info("export completed",
		"format", string(format),
		"mode", mode.String(),
		"rows", result.Rows,
		"appended", result.Appended,
		"duration", result.Duration,
	)
	return result, nil
}

// alignRecords reorders records from header into the column order of
// target. Columns of header that target lacks are added after its last
// column; the widened header is returned with the rows. A target that
// repeats a column the records use is ambiguous and fails.
func alignRecords(target, header []string, records [][]string) ([]string, [][]string, error) {
	widened := make([]string, len(target), len(target)+len(header))
	copy(widened, target)

	pos := make(map[string]int, len(target))
	dup := make(map[string]bool)
	for i, col := range target {
		col = strings.TrimSpace(col)
		if _, seen := pos[col]; seen {
			dup[col] = true
			continue
		}
		pos[col] = i
	}

	idx := make([]int, len(header))
	for i, col := range header {
		if dup[col] {
			return nil, nil, fmt.Errorf("%w: existing header repeats column %q", ErrColumnMismatch, col)
		}
		p, ok := pos[col]
		if !ok {
			p = len(widened)
			pos[col] = p
			widened = append(widened, col)
		}
		idx[i] = p
	}

	out := make([][]string, len(records))
	for r, rec := range records {
		row := make([]string, len(widened))
		for i, v := range rec {
			if i < len(idx) {
				row[idx[i]] = v
			}
		}
		out[r] = row
	}
	return widened, out, nil
}
