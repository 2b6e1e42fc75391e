// Package handler implements the interactive actions behind the menu:
// import, search, delete, export, info and import history.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/reecem02/relational-db/internal/core"
	"github.com/reecem02/relational-db/internal/export"
	"github.com/reecem02/relational-db/internal/logging"
)

// Session holds state shared between actions of one CLI run.
type Session struct {
	last *core.ResultSet
}

// SetResults remembers rs for a later export.
func (s *Session) SetResults(rs *core.ResultSet) { s.last = rs }

// LastResults returns the most recent search results, or nil.
func (s *Session) LastResults() *core.ResultSet { return s.last }

// Handler runs menu actions against the service.
type Handler struct {
	svc      *core.Service
	exporter *export.Exporter
	prompt   Prompter
	out      io.Writer
	session  *Session
}

// New returns a Handler writing to out and reading answers from prompt.
func New(svc *core.Service, exporter *export.Exporter, prompt Prompter, out io.Writer) *Handler {
	return &Handler{
		svc:      svc,
		exporter: exporter,
		prompt:   prompt,
		out:      out,
		session:  &Session{},
	}
}

// Session returns the handler's session.
func (h *Handler) Session() *Session { return h.session }

// Report prints an action error for the user. Ctrl-C prints a short notice
// instead of an error.
func (h *Handler) Report(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrInterrupted) || errors.Is(err, context.Canceled) {
		h.println("Cancelled.")
		return
	}

	logging.FromContext(ctx).Debug("operation failed", "operation", op, "error", err)

	msg := core.MapError(err)
	h.printf("Error %s: %s [%s]\n", op, msg.Message, msg.Code)
	if msg.Action != "" {
		h.printf("  %s\n", msg.Action)
	}
	if msg.Code == "ERR000" {
		h.printf("  Details: %v\n", err)
	}
}

func (h *Handler) printf(format string, args ...any) {
	fmt.Fprintf(h.out, format, args...)
}

func (h *Handler) println(args ...any) {
	fmt.Fprintln(h.out, args...)
}

/* ----------------------------------------
	PROMPTS
---------------------------------------- */

func (h *Handler) ask(label string) (string, error) {
	line, err := h.prompt.Prompt(label)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// choose asks until the answer is one of options.
func (h *Handler) choose(label string, options ...string) (string, error) {
	for {
		answer, err := h.ask(label)
		if err != nil {
			return "", err
		}
		for _, opt := range options {
			if strings.EqualFold(answer, opt) {
				return opt, nil
			}
		}
		h.println("Invalid selection. Please try again.")
	}
}

// confirm returns true only for y or yes.
func (h *Handler) confirm(label string) (bool, error) {
	answer, err := h.ask(label)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

/* ----------------------------------------
	OUTPUT
---------------------------------------- */

// printRow prints a row as an aligned key | value block. Continuation
// lines of multi-line values are indented under the first.
func (h *Handler) printRow(row core.Row) {
	table, _ := row.Get(core.ColSourceTable)
	labID, _ := row.Get(core.ColLabID)
	h.printf("\n--- %s: %s ---\n", table, labID)

	width := 0
	for _, f := range row.Fields {
		if f.Key == core.ColSourceTable {
			continue
		}
		if n := utf8.RuneCountInString(f.Key); n > width {
			width = n
		}
	}

	indent := strings.Repeat(" ", width) + " | "
	for _, f := range row.Fields {
		if f.Key == core.ColSourceTable {
			continue
		}
		lines := strings.Split(f.Value, "\n")
		h.printf("%-*s | %s\n", width, f.Key, lines[0])
		for _, line := range lines[1:] {
			h.printf("%s%s\n", indent, line)
		}
	}
}

func (h *Handler) printRows(rows []core.Row) {
	for _, row := range rows {
		h.printRow(row)
	}
}
