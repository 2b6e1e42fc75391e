package export

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Sink stores exported files.
type Sink interface {
	// Exists reports whether name is already stored.
	Exists(ctx context.Context, name string) (bool, error)

	// Read returns the stored bytes, or an error wrapping fs.ErrNotExist.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write replaces name with data.
	Write(ctx context.Context, name string, data []byte) error

	// Location describes name for messages.
	Location(name string) string
}

// FileSink writes to local disk. Relative names are resolved against Dir.
type FileSink struct {
	Dir string
}

func (s *FileSink) path(name string) string {
	if filepath.IsAbs(name) || s.Dir == "" {
		return name
	}
	return filepath.Join(s.Dir, name)
}

func (s *FileSink) Location(name string) string {
	return s.path(name)
}

func (s *FileSink) Exists(_ context.Context, name string) (bool, error) {
	info, err := os.Stat(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", s.path(name))
	}
	return true, nil
}

func (s *FileSink) Read(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(s.path(name))
}

func (s *FileSink) Write(_ context.Context, name string, data []byte) error {
	path := s.path(name)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// MemorySink keeps exports in memory.
type MemorySink struct {
	Files map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{Files: make(map[string][]byte)}
}

func (s *MemorySink) Location(name string) string { return name }

func (s *MemorySink) Exists(_ context.Context, name string) (bool, error) {
	_, ok := s.Files[name]
	return ok, nil
}

func (s *MemorySink) Read(_ context.Context, name string) ([]byte, error) {
	data, ok := s.Files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return data, nil
}

func (s *MemorySink) Write(_ context.Context, name string, data []byte) error {
	s.Files[name] = append([]byte(nil), data...)
	return nil
}

// Names lists the stored files in order.
func (s *MemorySink) Names() []string {
	names := make([]string, 0, len(s.Files))
	for name := range s.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
