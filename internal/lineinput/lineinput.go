// SPDX-License-Identifier: MPL-2.0

package lineinput

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/zensh/zensh/internal/testutil"
	"github.com/zensh/zensh/pkg/shell"
)

// ErrNotTerminal is returned by OpenStdio when stdin is not a terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

type (
	// Options configures a line source.
	Options struct {
		// Label is the initial prompt label. Default shell.DefaultPromptLabel.
		Label string
		// Clock stamps the prompt. Default testutil.RealClock.
		Clock testutil.Clock
		// Complete lists the command names starting with a prefix. When set,
		// Tab completes the first word of a terminal line.
		Complete func(prefix string) []string
		// History replaces the line editor's in-memory history, for example
		// with one from OpenHistory.
		History term.History
	}

	// prompt holds the switchable prompt label shared by both sources.
	prompt struct {
		mu    sync.Mutex
		label string
		clock testutil.Clock
	}

	// Terminal reads lines through an x/term line editor (history, cursor
	// movement, Tab completion, Ctrl-D to finish). Output written through it
	// gets the CRLF translation a raw-mode terminal needs, so session output
	// should go through the Terminal too.
	Terminal struct {
		prompt
		term    *term.Terminal
		restore func() error
	}

	// Scanner reads newline-terminated lines from a plain stream such as a
	// pipe. The prompt is written only when a prompt writer is set.
	Scanner struct {
		prompt
		sc  *bufio.Scanner
		out io.Writer
	}
)

func (p *prompt) init(opts Options) {
	p.label = opts.Label
	if p.label == "" {
		p.label = shell.DefaultPromptLabel
	}
	p.clock = opts.Clock
	if p.clock == nil {
		p.clock = testutil.RealClock{}
	}
}

// SetLabel switches the prompt label and returns the previous one.
func (p *prompt) SetLabel(label string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	previous := p.label
	p.label = label
	return previous
}

// Label returns the current prompt label.
func (p *prompt) Label() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.label
}

func (p *prompt) render() string {
	return shell.FormatPrompt(p.Label(), p.clock.Now())
}

// NewTerminal creates a line editor over rw. The caller owns putting the
// underlying terminal into raw mode; see OpenStdio for the local case.
func NewTerminal(rw io.ReadWriter, opts Options) *Terminal {
	t := &Terminal{term: term.NewTerminal(rw, "")}
	t.init(opts)
	if opts.History != nil {
		t.term.History = opts.History
	}
	if opts.Complete != nil {
		t.term.AutoCompleteCallback = t.autoComplete(opts.Complete)
	}
	return t
}

// StdinIsTerminal reports whether the process input is a terminal.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// OpenStdio puts the process terminal into raw mode and returns a line
// editor over stdin and stdout. Close restores the terminal.
func OpenStdio(opts Options) (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}

	t := NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, opts)
	t.restore = func() error { return term.Restore(fd, state) }

	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		_ = t.SetSize(w, h)
	}
	return t, nil
}

// Next prompts and reads one line. Ctrl-D on an empty line returns io.EOF.
func (t *Terminal) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t.term.SetPrompt(t.render())
	return t.term.ReadLine()
}

// Write writes session output through the line editor.
func (t *Terminal) Write(p []byte) (int, error) {
	return t.term.Write(p)
}

// SetSize updates the editor's idea of the terminal size.
func (t *Terminal) SetSize(width, height int) error {
	return t.term.SetSize(width, height)
}

// Close restores the terminal mode when the Terminal came from OpenStdio.
func (t *Terminal) Close() error {
	if t.restore == nil {
		return nil
	}
	restore := t.restore
	t.restore = nil
	return restore()
}

// NewScanner reads lines from r. When out is not nil, a prompt is written
// to it before every read.
func NewScanner(r io.Reader, out io.Writer, opts Options) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	s := &Scanner{sc: sc, out: out}
	s.init(opts)
	return s
}

// Next prompts (when enabled) and reads one line without its terminator.
func (s *Scanner) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.out != nil {
		fmt.Fprint(s.out, s.render())
	}
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
