package core

import (
	"strings"
	"unicode/utf8"
)

// SnippetOptions controls how long values are shortened in keyword results.
type SnippetOptions struct {
	Threshold    int // values up to this length are kept whole
	Context      int // characters kept on each side of a match
	MaxSnippets  int // windows per value
	PrefixLength int // length kept when the value has no match
}

// Snippet shortens text around case-insensitive occurrences of keyword.
//
// Up to MaxSnippets non-overlapping windows are returned, each with its
// matches wrapped in brackets and "..." where the window cuts the text:
//
//	...GATTACA[ACGT]TTGCA... ...CCGTA[acgt]GGATC...
//
// Text without a match is cut to PrefixLength characters.
func Snippet(text, keyword string, opts SnippetOptions) string {
	if len(text) <= opts.Threshold {
		return text
	}
	if keyword == "" || opts.MaxSnippets <= 0 {
		return Preview(text, opts.PrefixLength)
	}

	finder := newFoldFinder(text, keyword)
	var parts []string
	pos := 0
	for len(parts) < opts.MaxSnippets {
		m := finder.next(pos)
		if m < 0 {
			break
		}

		// Matches starting inside the window join it and extend it.
		matches := [][2]int{{m, m + len(keyword)}}
		to := m + len(keyword) + opts.Context
		for {
			n := finder.next(matches[len(matches)-1][1])
			if n < 0 || n >= to {
				break
			}
			matches = append(matches, [2]int{n, n + len(keyword)})
			to = n + len(keyword) + opts.Context
		}
		last := matches[len(matches)-1][1]
		if to > len(text) {
			to = len(text)
		}
		for to > last && to < len(text) && !utf8.RuneStart(text[to]) {
			to--
		}

		from := m - opts.Context
		if from < pos {
			from = pos
		}
		for from < m && !utf8.RuneStart(text[from]) {
			from++
		}

		var b strings.Builder
		if from > 0 {
			b.WriteString("...")
		}
		b.WriteString(text[from:m])
		for i, mt := range matches {
			b.WriteByte('[')
			b.WriteString(text[mt[0]:mt[1]])
			b.WriteByte(']')
			next := to
			if i+1 < len(matches) {
				next = matches[i+1][0]
			}
			b.WriteString(text[mt[1]:next])
		}
		if to < len(text) {
			b.WriteString("...")
		}
		parts = append(parts, b.String())
		pos = to
	}

	if len(parts) == 0 {
		return Preview(text, opts.PrefixLength)
	}
	return strings.Join(parts, " ")
}

// Preview returns the first n bytes of text, cut on a character boundary,
// followed by "..." when anything was dropped.
func Preview(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n] + "..."
}

// WrapSequence truncates seq to maxChars (suffix "...") and breaks it into
// lines of width characters.
func WrapSequence(seq string, width, maxChars int) string {
	truncated := false
	if maxChars > 0 && len(seq) > maxChars {
		seq = seq[:maxChars]
		truncated = true
	}
	if width <= 0 || len(seq) <= width {
		if truncated {
			return seq + "..."
		}
		return seq
	}

	var b strings.Builder
	for i := 0; i < len(seq); i += width {
		if i > 0 {
			b.WriteByte('\n')
		}
		end := i + width
		if end > len(seq) {
			end = len(seq)
		}
		b.WriteString(seq[i:end])
	}
	if truncated {
		b.WriteString("...")
	}
	return b.String()
}

// foldFinder locates case-insensitive matches of a keyword.
// ASCII text is lowered once; anything else falls back to EqualFold.
type foldFinder struct {
	text    string
	keyword string
	lower   string
	lowerKw string
	fast    bool
}

func newFoldFinder(text, keyword string) *foldFinder {
	f := &foldFinder{text: text, keyword: keyword}
	if isASCII(text) && isASCII(keyword) {
		f.fast = true
		f.lower = strings.ToLower(text)
		f.lowerKw = strings.ToLower(keyword)
	}
	return f
}

// next returns the byte offset of the first match at or after from, or -1.
func (f *foldFinder) next(from int) int {
	if from > len(f.text) {
		return -1
	}
	if f.fast {
		i := strings.Index(f.lower[from:], f.lowerKw)
		if i < 0 {
			return -1
		}
		return from + i
	}
	n := len(f.keyword)
	for i := from; i+n <= len(f.text); i++ {
		if !utf8.RuneStart(f.text[i]) {
			continue
		}
		if strings.EqualFold(f.text[i:i+n], f.keyword) {
			return i
		}
	}
	return -1
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
