// SPDX-License-Identifier: MPL-2.0

package lineinput

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/zensh/zensh/internal/testutil"
	"github.com/zensh/zensh/pkg/shell"
)

// Both sources must satisfy the evaluator's line source.
var (
	_ shell.LineSource = (*Terminal)(nil)
	_ shell.LineSource = (*Scanner)(nil)
)

func TestScanner_Lines(t *testing.T) {
	t.Parallel()

	sc := NewScanner(strings.NewReader("echo a\r\n\necho b"), nil, Options{})
	ctx := context.Background()

	var got []string
	for {
		line, err := sc.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		got = append(got, line)
	}
	if want := []string{"echo a", "", "echo b"}; strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestScanner_Prompt(t *testing.T) {
	t.Parallel()

	clock := testutil.NewFakeClock(time.Time{})
	var out bytes.Buffer
	sc := NewScanner(strings.NewReader("one\ntwo\n"), &out, Options{Clock: clock})

	if _, err := sc.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	clock.Advance(1500 * time.Millisecond)
	if previous := sc.SetLabel("ZLUA"); previous != shell.DefaultPromptLabel {
		t.Errorf("SetLabel() returned %q, want %q", previous, shell.DefaultPromptLabel)
	}
	if _, err := sc.Next(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := "[00:00:00.000/SHELL] >>\t[00:00:01.500/ZLUA] >>\t"
	if out.String() != want {
		t.Errorf("prompts = %q, want %q", out.String(), want)
	}
}

func TestScanner_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sc := NewScanner(strings.NewReader("never read\n"), nil, Options{})
	if _, err := sc.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestTerminal_ReadsLinesWithPrompt(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	rw := struct {
		io.Reader
		io.Writer
	}{strings.NewReader("echo hi\rexit 2\r"), &out}

	tm := NewTerminal(rw, Options{Label: "TEST", Clock: testutil.NewFakeClock(time.Time{})})
	ctx := context.Background()

	for _, want := range []string{"echo hi", "exit 2"} {
		line, err := tm.Next(ctx)
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if line != want {
			t.Errorf("Next() = %q, want %q", line, want)
		}
	}
	if _, err := tm.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("Next() at end of input error = %v, want io.EOF", err)
	}
	if !strings.Contains(out.String(), "[00:00:00.000/TEST] >>") {
		t.Errorf("output = %q, want the prompt", out.String())
	}
	if err := tm.Close(); err != nil {
		t.Errorf("Close() on a non-stdio terminal error: %v", err)
	}
}

func TestTerminal_WriteTranslatesNewlines(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	tm := NewTerminal(struct {
		io.Reader
		io.Writer
	}{strings.NewReader(""), &out}, Options{})

	if _, err := tm.Write([]byte("a\nb\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if out.String() != "a\r\nb\r\n" {
		t.Errorf("output = %q, want CRLF line endings", out.String())
	}
}

func TestTerminal_DrivesEvaluator(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	tm := NewTerminal(struct {
		io.Reader
		io.Writer
	}{strings.NewReader("echo one two\r"), &out}, Options{})

	reg := shell.NewRegistry(nil)
	if err := reg.Register("echo", "", func(_ context.Context, inv *shell.Invocation) error {
		inv.Println(strings.Join(inv.Args, " "))
		return nil
	}, shell.Variadic); err != nil {
		t.Fatal(err)
	}
	eval := shell.NewEvaluator(reg, shell.Options{Stdout: tm, Stderr: tm, Lines: tm, WorkDir: t.TempDir()})

	if err := eval.Run(context.Background(), tm); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(out.String(), "one two\r\n") {
		t.Errorf("output = %q, want the echoed line", out.String())
	}
}
