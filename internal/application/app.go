// Package application runs the numbered text menu of the CLI.
package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/reecem02/relational-db/internal/handler"
)

// App is the interactive menu loop.
type App struct {
	handler *handler.Handler
	prompt  handler.Prompter
	out     io.Writer
	root    *Menu
}

// New builds the menu tree around h.
func New(h *handler.Handler, prompt handler.Prompter, out io.Writer) *App {
	return &App{
		handler: h,
		prompt:  prompt,
		out:     out,
		root:    buildMenuTree(h),
	}
}

// Run shows menus until Exit is chosen or the input ends. Action errors are
// printed and the loop continues.
func (a *App) Run(ctx context.Context) error {
	current := a.root
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.render(current)
		answer, err := a.prompt.Prompt("Enter your choice: ")
		if errors.Is(err, handler.ErrInterrupted) {
			if current.Parent != nil {
				current = current.Parent
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.out, "\nGoodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		item, ok := a.selected(current, answer)
		if !ok {
			fmt.Fprintln(a.out, "Invalid selection. Please try again.")
			continue
		}

		switch {
		case item.Exit:
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		case item.Label == "Back":
			current = current.Parent
		case item.Submenu != nil:
			current = item.Submenu
		case item.Action != nil:
			err := item.Action(ctx)
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out, "\nGoodbye!")
				return nil
			}
			a.handler.Report(ctx, item.Op, err)
			// Actions return to the top after running from a submenu.
			current = a.root
		}
	}
}

func (a *App) render(menu *Menu) {
	fmt.Fprintf(a.out, "\n%s\n", menu.Title)
	for i, item := range menu.Items {
		fmt.Fprintf(a.out, "%d) %s\n", i+1, item.Label)
	}
}

func (a *App) selected(menu *Menu, answer string) (MenuItem, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 || n > len(menu.Items) {
		return MenuItem{}, false
	}
	return menu.Items[n-1], true
}
