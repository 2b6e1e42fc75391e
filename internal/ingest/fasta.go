package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Sequence is one FASTA record.
type Sequence struct {
	ID          string
	Description string
	Residues    string
}

// Len returns the number of residues.
func (s Sequence) Len() int { return len(s.Residues) }

// ReadFasta parses every record of a FASTA file.
func ReadFasta(path string) ([]Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	seqs, err := ParseFasta(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return seqs, nil
}

// ParseFasta parses FASTA records from r. Residues keep their case; line
// breaks and other whitespace inside a record are removed.
func ParseFasta(r io.Reader) ([]Sequence, error) {
	cleaned, _ := WrapForStreaming(r)
	template := linear.NewSeq("", nil, alphabet.DNAredundant)

	var seqs []Sequence
	sc := seqio.NewScanner(fasta.NewReader(cleaned, template))
	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("invalid fasta: unexpected record type %T", sc.Seq())
		}
		seqs = append(seqs, Sequence{
			ID:          strings.TrimSpace(s.ID),
			Description: strings.TrimSpace(s.Desc),
			Residues:    residues(s.Seq),
		})
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("invalid fasta: %w", err)
	}
	return seqs, nil
}

func residues(letters alphabet.Letters) string {
	var b strings.Builder
	b.Grow(len(letters))
	for _, l := range letters {
		if unicode.IsSpace(rune(l)) {
			continue
		}
		b.WriteByte(byte(l))
	}
	return b.String()
}
