package handler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ErrInterrupted is returned by a Prompter when the user presses Ctrl-C.
// The running action is cancelled; the menu keeps going.
var ErrInterrupted = errors.New("interrupted")

// Prompter reads one line of input after showing label.
// io.EOF means the input is closed and the program should exit.
type Prompter interface {
	Prompt(label string) (string, error)
}

// LinePrompter reads plain lines, for piped input and tests.
type LinePrompter struct {
	r *bufio.Reader
	w io.Writer
}

// NewLinePrompter returns a Prompter reading from r and echoing labels to w.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(r), w: w}
}

func (p *LinePrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.w, label)
	line, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadlinePrompter provides line editing and history on a terminal.
type ReadlinePrompter struct {
	rl *readline.Instance
}

// NewReadlinePrompter opens the terminal for line editing.
func NewReadlinePrompter(historyFile string) (*ReadlinePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		HistoryLimit:    500,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	return &ReadlinePrompter{rl: rl}, nil
}

func (p *ReadlinePrompter) Prompt(label string) (string, error) {
	p.rl.SetPrompt(label)
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupted
	}
	return line, err
}

// Stdout returns a writer that does not corrupt the prompt line.
func (p *ReadlinePrompter) Stdout() io.Writer {
	return p.rl.Stdout()
}

func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}

// IsTerminal reports whether stdin and stdout are a terminal.
func IsTerminal() bool {
	return readline.DefaultIsTerminal()
}
