package ingest

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestCleanReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "BOM later in file kept",
			input:    []byte("a\xEF\xBB\xBFb"),
			expected: "a\uFEFFb",
		},
		{
			name:     "valid UTF-8 with multibyte",
			input:    []byte("caf\xc3\xa9,\xe4\xb8\x96"),
			expected: "café,世",
		},
		{
			name:     "invalid single byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he?lo",
		},
		{
			name:     "Windows-1252 smart quotes replaced",
			input:    []byte("hello\x93world\x94"),
			expected: "hello?world?",
		},
		{
			name:     "truncated multibyte at end",
			input:    []byte{'a', 0xc3},
			expected: "a?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewCleanReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestCleanReader_TinyBuffer(t *testing.T) {
	input := "\xEF\xBB\xBFμ世界,\x80x"
	r := NewCleanReader(strings.NewReader(input))

	var out bytes.Buffer
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		out.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if out.String() != "μ世界,?x" {
		t.Errorf("got %q, want %q", out.String(), "μ世界,?x")
	}
}

func TestCleanReader_OneByteSource(t *testing.T) {
	input := "\xEF\xBB\xBFUL001,soil\n"
	result, err := io.ReadAll(NewCleanReader(iotest.OneByteReader(strings.NewReader(input))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != "UL001,soil\n" {
		t.Errorf("got %q", string(result))
	}
}

func TestWrapForStreaming(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte{'h', 'e', 0x80, 'l', 'o'}...)

	cleaned, counter := WrapForStreaming(bytes.NewReader(input))
	result, err := io.ReadAll(cleaned)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// BOM should be stripped, invalid byte replaced
	if string(result) != "he?lo" {
		t.Errorf("got %q, want %q", string(result), "he?lo")
	}

	// Counter sees the raw file bytes
	if counter.BytesRead != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d", counter.BytesRead, len(input))
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  UL001  ", "UL001"},
		{`="00123"`, "00123"},
		{"=SUM", "SUM"},
		{`"quoted"`, "quoted"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsEmptyRow(t *testing.T) {
	tests := []struct {
		row  []string
		want bool
	}{
		{nil, true},
		{[]string{"", "  ", `""`}, true},
		{[]string{"", "x"}, false},
	}
	for _, tt := range tests {
		if got := IsEmptyRow(tt.row); got != tt.want {
			t.Errorf("IsEmptyRow(%q) = %v, want %v", tt.row, got, tt.want)
		}
	}
}
