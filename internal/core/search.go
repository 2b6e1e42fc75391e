package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/reecem02/relational-db/internal/database"
	"github.com/reecem02/relational-db/internal/logging"
	"github.com/skarademir/naturalsort"
)

// Search finds data for keyword.
//
// A keyword shaped like a lab ID returns exactly that lab ID: one pivoted
// metadata row and its first sequences. Any other keyword is matched
// case-insensitively against every textual column of both tables, with long
// values shortened to snippets around the match.
func (s *Service) Search(ctx context.Context, keyword string) (*ResultSet, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	var (
		rs  *ResultSet
		err error
	)
	if s.IsLabID(keyword) {
		rs, err = s.Lookup(ctx, keyword)
	} else {
		rs, err = s.searchKeyword(ctx, keyword)
	}
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	logging.WithFields(ctx, "keyword", keyword).
		Debug("search completed", "mode", rs.Mode.String(), "rows", rs.Len())
	return rs, nil
}

// Lookup returns one lab ID's metadata and up to max_sequences sequences,
// rendered wrapped and truncated.
func (s *Service) Lookup(ctx context.Context, labID string) (*ResultSet, error) {
	labID = strings.TrimSpace(labID)
	if labID == "" {
		return nil, ErrEmptyLabID
	}

	q := s.db.Queries()
	meta, err := q.GetMetadata(ctx, labID)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	total, err := q.CountGenomicData(ctx, labID)
	if err != nil {
		return nil, fmt.Errorf("count sequences: %w", err)
	}
	seqs, err := q.GetGenomicData(ctx, labID, s.search.MaxSequences)
	if err != nil {
		return nil, fmt.Errorf("load sequences: %w", err)
	}

	// Show the lab ID as stored, not as typed
	if len(meta) > 0 {
		labID = meta[0].LabID
	} else if len(seqs) > 0 {
		labID = seqs[0].LabID
	}

	rs := &ResultSet{Keyword: labID, Mode: ModeLabID, TotalSequences: total}
	if len(meta) > 0 {
		rs.Rows = append(rs.Rows, s.pivotMetadata(labID, meta))
	}
	for _, g := range seqs {
		rs.Rows = append(rs.Rows, s.genomicRow(g, WrapSequence(g.Sequence, s.search.WrapWidth, s.search.MaxSequenceChars)))
	}
	rs.Columns = s.columnUnion(rs.Rows)
	return rs, nil
}

func (s *Service) searchKeyword(ctx context.Context, keyword string) (*ResultSet, error) {
	q := s.db.Queries()
	opts := s.snippetOptions()
	rs := &ResultSet{Keyword: keyword, Mode: ModeKeyword}

	ids, err := q.SearchMetadataLabIDs(ctx, keyword, s.search.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("search metadata: %w", err)
	}
	if len(ids) > 0 {
		sort.Sort(naturalsort.NaturalSort(ids))

		meta, err := q.GetMetadataForLabIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load metadata: %w", err)
		}
		byLab := make(map[string][]database.Metadata, len(ids))
		for _, m := range meta {
			byLab[m.LabID] = append(byLab[m.LabID], m)
		}
		for _, id := range ids {
			row := snippetRow(s.pivotMetadata(id, byLab[id]), keyword, opts)
			if row.hasContent() {
				rs.Rows = append(rs.Rows, row)
			}
		}
	}

	seqs, err := q.SearchGenomicData(ctx, keyword, s.search.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("search genomic data: %w", err)
	}
	seqs = dedupeGenomic(seqs)
	sort.SliceStable(seqs, func(i, j int) bool {
		if seqs[i].LabID != seqs[j].LabID {
			return naturalLess(seqs[i].LabID, seqs[j].LabID)
		}
		return seqs[i].SeqIndex < seqs[j].SeqIndex
	})
	for _, g := range seqs {
		row := snippetRow(s.genomicRow(g, g.Sequence), keyword, opts)
		if row.hasContent() {
			rs.Rows = append(rs.Rows, row)
		}
	}

	rs.Columns = s.columnUnion(rs.Rows)
	return rs, nil
}

func (s *Service) snippetOptions() SnippetOptions {
	return SnippetOptions{
		Threshold:    s.search.SnippetThreshold,
		Context:      s.search.SnippetContext,
		MaxSnippets:  s.search.MaxSnippets,
		PrefixLength: s.search.PrefixLength,
	}
}

// pivotMetadata folds a lab ID's attribute rows into one result row.
// Configured attributes come first in schema order, then any others in the
// order they were stored. file_uploaded is the newest upload time.
func (s *Service) pivotMetadata(labID string, rows []database.Metadata) Row {
	row := Row{Fields: []Field{
		{Key: ColSourceTable, Value: database.TableMetadata},
		{Key: ColLabID, Value: labID},
	}}

	values := make(map[string]string, len(rows))
	var extras []string
	latest := ""
	for _, m := range rows {
		if m.FileUploaded > latest {
			latest = m.FileUploaded
		}
		if strings.EqualFold(m.Attribute, s.schema.LabIDColumn) {
			continue
		}
		if _, seen := values[m.Attribute]; !seen {
			extras = append(extras, m.Attribute)
		}
		values[m.Attribute] = m.Value
	}

	used := make(map[string]bool, len(values))
	for _, name := range s.schema.AttributeOrder() {
		if v, ok := values[name]; ok {
			row.Set(name, v)
			used[name] = true
		}
	}
	for _, name := range extras {
		if !used[name] {
			row.Set(name, values[name])
		}
	}

	row.Set(ColFileUploaded, latest)
	return row
}

// genomicRow renders one sequence with seq as the displayed sequence text.
func (s *Service) genomicRow(g database.GenomicData, seq string) Row {
	row := Row{Fields: []Field{
		{Key: ColSourceTable, Value: database.TableGenomic},
		{Key: ColLabID, Value: g.LabID},
		{Key: ColSequenceID, Value: g.SequenceID},
	}}
	if g.Description != "" {
		row.Set(ColDescription, g.Description)
	}
	row.Set(ColSeqIndex, strconv.Itoa(g.SeqIndex))
	row.Set(ColLength, strconv.Itoa(len(g.Sequence)))
	row.Set(ColSequence, seq)
	row.Set(ColFileUploaded, g.FileUploaded)
	return row
}

// snippetRow shortens every long value of row.
func snippetRow(row Row, keyword string, opts SnippetOptions) Row {
	for i, f := range row.Fields {
		row.Fields[i].Value = Snippet(f.Value, keyword, opts)
	}
	return row
}

func dedupeGenomic(rows []database.GenomicData) []database.GenomicData {
	seen := make(map[int64]bool, len(rows))
	out := rows[:0]
	for _, g := range rows {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		out = append(out, g)
	}
	return out
}

func naturalLess(a, b string) bool {
	return naturalsort.NaturalSort{a, b}.Less(0, 1)
}

// Column ranks for the result header. Metadata attributes sit between the
// identifying columns and the sequence columns; file_uploaded is last.
var genomicColumnRank = map[string]int{
	ColSequenceID:  0,
	ColDescription: 1,
	ColSeqIndex:    2,
	ColLength:      3,
	ColSequence:    4,
}

// columnUnion returns every column used by rows, ordered for display.
func (s *Service) columnUnion(rows []Row) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, f := range row.Fields {
			if !seen[f.Key] {
				seen[f.Key] = true
				cols = append(cols, f.Key)
			}
		}
	}

	order := s.schema.AttributeOrder()
	attrRank := make(map[string]int, len(order))
	for i, name := range order {
		attrRank[name] = i
	}
	rank := func(col string) int {
		switch col {
		case ColSourceTable:
			return 0
		case ColLabID:
			return 1
		case ColFileUploaded:
			return 1 << 30
		}
		if r, ok := genomicColumnRank[col]; ok {
			return 1<<20 + r
		}
		if r, ok := attrRank[col]; ok {
			return 2 + r
		}
		return 2 + len(order)
	}

	sort.SliceStable(cols, func(i, j int) bool {
		return rank(cols[i]) < rank(cols[j])
	})
	return cols
}
