package application

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reecem02/relational-db/internal/config"
	"github.com/reecem02/relational-db/internal/core"
	"github.com/reecem02/relational-db/internal/database"
	"github.com/reecem02/relational-db/internal/export"
	"github.com/reecem02/relational-db/internal/handler"
)

func runApp(t *testing.T, input string) string {
	t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "fungal.sqlite")
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	svc, err := core.NewService(db, cfg)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	var out bytes.Buffer
	prompt := handler.NewLinePrompter(strings.NewReader(input), &out)
	h := handler.New(svc, export.NewWithSinks(export.NewMemorySink(), nil), prompt, &out)
	if err := New(h, prompt, &out).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

// ============================================================================
// Menu Tests
// ============================================================================

func TestLinkParents(t *testing.T) {
	sub := &Menu{Title: "Sub", Items: []MenuItem{{Label: "Item"}, {Label: "Back"}}}
	root := &Menu{Title: "Root", Items: []MenuItem{{Label: "Sub", Submenu: sub}}}
	linkParents(root, nil)

	if sub.Parent != root {
		t.Error("submenu parent not linked")
	}
	if sub.Items[1].Submenu != root {
		t.Error("Back does not lead to the parent")
	}
	if root.Parent != nil {
		t.Error("root has a parent")
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "exit",
			input: "8\n",
			want:  []string{"Welcome to the Fungal Research Database", "1) Import Data", "8) Exit", "Goodbye!"},
		},
		{
			name:  "help",
			input: "5\n8\n",
			want:  []string{"-- Help --", "7) Import History: list past imports"},
		},
		{
			name:  "submenu and back",
			input: "1\n3\n8\n",
			want:  []string{"Import Data\n1) Spreadsheet (CSV/XLSX)\n2) FASTA\n3) Back", "Goodbye!"},
		},
		{
			name:  "invalid selection",
			input: "9\nabc\n8\n",
			want:  []string{"Invalid selection. Please try again."},
		},
		{
			name:  "end of input",
			input: "",
			want:  []string{"Goodbye!"},
		},
		{
			name:  "export without results",
			input: "4\n8\n",
			want:  []string{"No data available to export. Please run a search first."},
		},
		{
			name:  "action error keeps running",
			input: "1\n1\nmissing.csv\n6\n8\n",
			want:  []string{"Error importing spreadsheet: ", "[FILE", "-- Database Information --", "Goodbye!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runApp(t, tt.input)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}
