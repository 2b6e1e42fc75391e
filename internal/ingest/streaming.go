package ingest

// streaming.go provides reader wrappers that clean up input files while they
// are read, so parsers never see a byte-order mark or invalid UTF-8.
//
//   - CleanReader: drops a leading UTF-8 BOM and replaces invalid bytes with '?'
//   - CountingReader: tracks bytes read for logging
//
// Use WrapForStreaming to apply both in the correct order.

import (
	"bufio"
	"io"
	"unicode/utf8"
)

const bom = '\uFEFF'

// CleanReader wraps an io.Reader, strips a leading BOM and replaces invalid
// UTF-8 bytes with '?'. Replacing with a single byte keeps offsets stable for
// parsers that report positions.
type CleanReader struct {
	br      *bufio.Reader
	started bool

	// Encoded bytes of a rune that did not fit in the caller's buffer
	pending []byte
}

// NewCleanReader creates a new cleaning reader.
func NewCleanReader(r io.Reader) *CleanReader {
	return &CleanReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (c *CleanReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(c.pending) > 0 {
			copied := copy(p[n:], c.pending)
			c.pending = c.pending[copied:]
			n += copied
			continue
		}

		r, size, err := c.br.ReadRune()
		if err != nil {
			if n > 0 {
				// Report the error on the next call
				return n, nil
			}
			return 0, err
		}

		if !c.started {
			c.started = true
			if r == bom {
				continue
			}
		}

		if r == utf8.RuneError && size == 1 {
			p[n] = '?'
			n++
			continue
		}

		var buf [utf8.UTFMax]byte
		w := utf8.EncodeRune(buf[:], r)
		copied := copy(p[n:], buf[:w])
		n += copied
		if copied < w {
			c.pending = append(c.pending[:0], buf[copied:w]...)
		}
	}
	return n, nil
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// WrapForStreaming counts the raw bytes of r and cleans them for parsing.
// The counter sits below the cleaner so it reports file bytes, not output.
func WrapForStreaming(r io.Reader) (*CleanReader, *CountingReader) {
	counter := NewCountingReader(r)
	return NewCleanReader(counter), counter
}
