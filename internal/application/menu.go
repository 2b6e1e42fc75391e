package application

import (
	"context"

	"github.com/reecem02/relational-db/internal/handler"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

// Action runs one menu entry. Errors are reported by the menu loop.
type Action func(ctx context.Context) error

type MenuItem struct {
	Label   string
	Op      string // used in error messages: "Error <Op>: ..."
	Submenu *Menu
	Action  Action
	Exit    bool
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == "Back" {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

func buildMenuTree(h *handler.Handler) *Menu {

	/* Submenus */
	importMenu := &Menu{
		Title: "Import Data",
		Items: []MenuItem{
			{Label: "Spreadsheet (CSV/XLSX)", Op: "importing spreadsheet", Action: h.ImportSpreadsheet},
			{Label: "FASTA", Op: "importing FASTA file", Action: h.ImportFasta},
			{Label: "Back"},
		},
	}

	/* Root Menu */
	root := &Menu{
		Title: "Welcome to the Fungal Research Database",
		Items: []MenuItem{
			{Label: "Import Data", Submenu: importMenu},
			{Label: "Search Data", Op: "searching", Action: h.Search},
			{Label: "Delete Data", Op: "deleting", Action: h.Delete},
			{Label: "Export Data", Op: "exporting", Action: h.Export},
			{Label: "Help", Op: "showing help", Action: h.Help},
			{Label: "Database Information", Op: "retrieving database information", Action: h.Info},
			{Label: "Import History", Op: "loading import history", Action: h.History},
			{Label: "Exit", Exit: true},
		},
	}

	linkParents(root, nil)

	return root
}
