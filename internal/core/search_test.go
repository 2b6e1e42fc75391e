package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/reecem02/relational-db/internal/database"
)

func seedGenomic(t *testing.T, svc *Service, rows ...database.GenomicData) {
	t.Helper()
	for i := range rows {
		if rows[i].FileUploaded == "" {
			rows[i].FileUploaded = "2024-03-01 09:30:00"
		}
	}
	if err := svc.db.Queries().InsertGenomicData(context.Background(), rows); err != nil {
		t.Fatalf("InsertGenomicData() error = %v", err)
	}
}

func rowKeys(rows []Row) []string {
	var out []string
	for _, r := range rows {
		table, _ := r.Get(ColSourceTable)
		lab, _ := r.Get(ColLabID)
		key := table + ":" + lab
		if seq, ok := r.Get(ColSequenceID); ok {
			key += ":" + seq
		}
		out = append(out, key)
	}
	return out
}

// ============================================================================
// Lab ID Search Tests
// ============================================================================

func TestSearch_LabIDPivotsMetadata(t *testing.T) {
	svc := newTestService(t)
	importMetadata(t, svc, metadataCSV, PolicyResolver{})

	rs, err := svc.Search(context.Background(), "UL001")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if rs.Mode != ModeLabID || rs.Len() != 1 {
		t.Fatalf("mode = %v, rows = %d", rs.Mode, rs.Len())
	}

	want := []string{
		ColSourceTable, ColLabID,
		"Top ITS Blast Hit", "ITS Top Hit Similarity", "Extraction Date",
		ColFileUploaded,
	}
	if got := rs.Rows[0].Keys(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("keys = %v, want %v", got, want)
	}
	if strings.Join(rs.Columns, "|") != strings.Join(want, "|") {
		t.Errorf("columns = %v", rs.Columns)
	}
	if v, _ := rs.Rows[0].Get(ColFileUploaded); v != "2024-03-01 09:30:00" {
		t.Errorf("file_uploaded = %q", v)
	}
}

func TestSearch_LabIDIgnoresCase(t *testing.T) {
	svc := newTestService(t)
	importMetadata(t, svc, metadataCSV, PolicyResolver{})
	if _, err := importFasta(t, svc, PolicyResolver{LabID: "UL001"}); err != nil {
		t.Fatalf("ImportFasta() error = %v", err)
	}

	for _, keyword := range []string{"ul001", "Ul001", "UL001"} {
		rs, err := svc.Search(context.Background(), keyword)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", keyword, err)
		}
		if rs.Mode != ModeLabID {
			t.Fatalf("Search(%q) mode = %v, want lab id", keyword, rs.Mode)
		}
		want := []string{"metadata:UL001", "genomic_data:UL001:ITS1", "genomic_data:UL001:ITS2"}
		if got := rowKeys(rs.Rows); strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("Search(%q) rows = %v, want %v", keyword, got, want)
		}
		if rs.Keyword != "UL001" || rs.TotalSequences != 2 {
			t.Errorf("Search(%q) keyword = %q, total = %d", keyword, rs.Keyword, rs.TotalSequences)
		}
	}
}

func TestSearch_LabIDIsExact(t *testing.T) {
	svc := newTestService(t)
	importMetadata(t, svc, "Uehling Lab ID,Top ITS Blast Hit\nUL001,a\nUL0011,b\nXUL001,c\n", PolicyResolver{})
	seedGenomic(t, svc,
		database.GenomicData{LabID: "UL0011", SequenceID: "s1", Sequence: "UL001", SeqIndex: 0},
	)

	rs, err := svc.Search(context.Background(), "UL001")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := rowKeys(rs.Rows); strings.Join(got, ",") != "metadata:UL001" {
		t.Errorf("rows = %v, want only UL001", got)
	}
}

func TestSearch_LabIDSequencesWrappedAndCapped(t *testing.T) {
	svc := newTestService(t)
	svc.search.MaxSequences = 2
	svc.search.WrapWidth = 10
	svc.search.MaxSequenceChars = 25

	importMetadata(t, svc, metadataCSV, PolicyResolver{})
	long := strings.Repeat("ACGT", 10)
	seedGenomic(t, svc,
		database.GenomicData{LabID: "UL001", SequenceID: "c", Sequence: "GG", SeqIndex: 2},
		database.GenomicData{LabID: "UL001", SequenceID: "a", Sequence: long, SeqIndex: 0, Description: "first"},
		database.GenomicData{LabID: "UL001", SequenceID: "b", Sequence: "TT", SeqIndex: 1},
	)

	rs, err := svc.Search(context.Background(), "UL001")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := rowKeys(rs.Rows); strings.Join(got, ",") != "metadata:UL001,genomic_data:UL001:a,genomic_data:UL001:b" {
		t.Fatalf("rows = %v", got)
	}
	if rs.TotalSequences != 3 {
		t.Errorf("TotalSequences = %d, want 3", rs.TotalSequences)
	}

	seq, _ := rs.Rows[1].Get(ColSequence)
	if seq != "ACGTACGTAC\nGTACGTACGT\nACGTA..." {
		t.Errorf("sequence = %q", seq)
	}
	if n, _ := rs.Rows[1].Get(ColLength); n != "40" {
		t.Errorf("length = %q, want full length", n)
	}
	if d, _ := rs.Rows[1].Get(ColDescription); d != "first" {
		t.Errorf("description = %q", d)
	}
	if _, ok := rs.Rows[2].Get(ColDescription); ok {
		t.Error("empty description should be omitted")
	}
}

func TestSearch_LabIDWithoutData(t *testing.T) {
	svc := newTestService(t)

	rs, err := svc.Search(context.Background(), "UL404")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if rs.Len() != 0 || rs.Mode != ModeLabID {
		t.Errorf("rows = %d, mode = %v", rs.Len(), rs.Mode)
	}
}

func TestSearch_EmptyKeyword(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Search(context.Background(), "   "); !errors.Is(err, ErrEmptyKeyword) {
		t.Errorf("Search() error = %v, want ErrEmptyKeyword", err)
	}
}

// ============================================================================
// Keyword Search Tests
// ============================================================================

func TestSearch_KeywordAcrossTables(t *testing.T) {
	svc := newTestService(t)
	importMetadata(t, svc, "Uehling Lab ID,Top ITS Blast Hit,ITS Taxonomy Comments\n"+
		"AB100,Fusarium solani,\n"+
		"AB20,Trichoderma,looks like fusarium\n"+
		"AB3,Mucor,\n", PolicyResolver{})
	seedGenomic(t, svc,
		database.GenomicData{LabID: "AB3", SequenceID: "r2", Description: "FUSARIUM contaminant", Sequence: "AC", SeqIndex: 1},
		database.GenomicData{LabID: "AB3", SequenceID: "r1", Description: "fusarium", Sequence: "GT", SeqIndex: 0},
		database.GenomicData{LabID: "AB100", SequenceID: "x", Description: "other", Sequence: "TT", SeqIndex: 0},
	)

	rs, err := svc.Search(context.Background(), "Fusarium")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if rs.Mode != ModeKeyword {
		t.Errorf("mode = %v", rs.Mode)
	}

	want := "metadata:AB20,metadata:AB100,genomic_data:AB3:r1,genomic_data:AB3:r2"
	if got := strings.Join(rowKeys(rs.Rows), ","); got != want {
		t.Errorf("rows = %s\nwant   %s", got, want)
	}

	// Matched lab IDs show all their attributes, not just the matching one.
	if v, _ := rs.Rows[0].Get("Top ITS Blast Hit"); v != "Trichoderma" {
		t.Errorf("AB20 hit = %q", v)
	}

	if rs.Columns[0] != ColSourceTable || rs.Columns[len(rs.Columns)-1] != ColFileUploaded {
		t.Errorf("columns = %v", rs.Columns)
	}
	for _, col := range []string{"Top ITS Blast Hit", "ITS Taxonomy Comments", ColSequenceID, ColSequence} {
		found := false
		for _, c := range rs.Columns {
			found = found || c == col
		}
		if !found {
			t.Errorf("column %q missing from %v", col, rs.Columns)
		}
	}
}

func TestSearch_KeywordWildcardsAreLiteral(t *testing.T) {
	svc := newTestService(t)
	importMetadata(t, svc, "Uehling Lab ID,ITS Taxonomy Comments\nUL001,100% match\nUL002,plain\n", PolicyResolver{})

	rs, err := svc.Search(context.Background(), "%")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := strings.Join(rowKeys(rs.Rows), ","); got != "metadata:UL001" {
		t.Errorf("rows = %s, want only the row containing %%", got)
	}

	rs, err = svc.Search(context.Background(), "_")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if rs.Len() != 0 {
		t.Errorf("underscore matched %v", rowKeys(rs.Rows))
	}
}

func TestSearch_KeywordSnippets(t *testing.T) {
	svc := newTestService(t)
	importMetadata(t, svc, metadataCSV, PolicyResolver{})
	seq := strings.Repeat("A", 150) + "GATTACA" + strings.Repeat("C", 150)
	seedGenomic(t, svc, database.GenomicData{LabID: "UL001", SequenceID: "s", Sequence: seq, SeqIndex: 0})

	rs, err := svc.Search(context.Background(), "gattaca")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if rs.Len() != 1 {
		t.Fatalf("rows = %v", rowKeys(rs.Rows))
	}
	got, _ := rs.Rows[0].Get(ColSequence)
	want := "..." + strings.Repeat("A", 30) + "[GATTACA]" + strings.Repeat("C", 30) + "..."
	if got != want {
		t.Errorf("sequence = %q, want %q", got, want)
	}
	if n, _ := rs.Rows[0].Get(ColLength); n != "307" {
		t.Errorf("length = %q", n)
	}
}

func TestSearch_KeywordDropsPlaceholderOnlyRows(t *testing.T) {
	svc := newTestService(t)
	if _, err := importFasta(t, svc, PolicyResolver{LabID: "ZZ01", CreatePlaceholders: true}); err != nil {
		t.Fatalf("ImportFasta() error = %v", err)
	}

	// "zz0" matches the placeholder's lab id but the row has nothing to show;
	// the sequences still match on their lab id.
	rs, err := svc.Search(context.Background(), "zz0")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, key := range rowKeys(rs.Rows) {
		if strings.HasPrefix(key, "metadata:") {
			t.Errorf("empty metadata row kept: %s", key)
		}
	}
	if rs.Len() != 2 {
		t.Errorf("rows = %v, want the two sequences", rowKeys(rs.Rows))
	}
}

func TestSearch_MaxResults(t *testing.T) {
	svc := newTestService(t)
	svc.search.MaxResults = 2
	importMetadata(t, svc, "Uehling Lab ID,Top ITS Blast Hit\nUL01,x\nUL02,x\nUL03,x\n", PolicyResolver{})

	rs, err := svc.Search(context.Background(), "x")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if rs.Len() != 2 {
		t.Errorf("rows = %d, want 2", rs.Len())
	}
}

// ============================================================================
// ResultSet Tests
// ============================================================================

func TestResultSet_Records(t *testing.T) {
	rs := &ResultSet{
		Columns: []string{ColSourceTable, ColLabID, "Habitat", ColSequenceID},
		Rows: []Row{
			{Fields: []Field{{ColSourceTable, "metadata"}, {ColLabID, "UL1"}, {"Habitat", "soil"}}},
			{Fields: []Field{{ColSourceTable, "genomic_data"}, {ColLabID, "UL1"}, {ColSequenceID, "s1"}}},
		},
	}

	got := rs.Records()
	if len(got) != 2 {
		t.Fatalf("records = %d", len(got))
	}
	if strings.Join(got[0], "|") != "metadata|UL1|soil|" {
		t.Errorf("record 0 = %q", got[0])
	}
	if strings.Join(got[1], "|") != "genomic_data|UL1||s1" {
		t.Errorf("record 1 = %q", got[1])
	}
	if strings.Join(rs.Header(), "|") != strings.Join(rs.Columns, "|") {
		t.Error("Header() should return Columns")
	}

	var nilSet *ResultSet
	if nilSet.Len() != 0 {
		t.Error("nil result set should be empty")
	}
}

func TestRow_Set(t *testing.T) {
	var r Row
	r.Set("a", "1")
	r.Set("b", "2")
	r.Set("a", "3")
	if strings.Join(r.Keys(), ",") != "a,b" {
		t.Errorf("keys = %v", r.Keys())
	}
	if v, _ := r.Get("a"); v != "3" {
		t.Errorf("a = %q", v)
	}
}
