// SPDX-License-Identifier: MPL-2.0

package builtins

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/zensh/zensh/pkg/shell"
)

func TestLua_InlineChunk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"lua 1 + 2", "3\n"},
		{"lua [[a]] .. [[b]]", "\"ab\"\n"},
		{"lua is_equal(2, 2)", "true\n"},
		{"lua add(2, 3)", "5\n5\n"},
		{"lua log([[from lua]])", "from lua\n"},
		{"lua print(1, [[two]])", "1\ttwo\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			s := newTestSession(t, nil)
			if err := s.run(t, tt.input); err != nil {
				t.Fatalf("Execute() error: %v\nstderr: %s", err, s.stderr.String())
			}
			if got := s.stdout.String(); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLua_InlineError(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, nil)
	err := s.run(t, "lua error([[nope]]); echo after")
	var evalErr *shell.EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("Execute() error = %v, want *shell.EvalError", err)
	}
	if !strings.Contains(s.stderr.String(), "nope") {
		t.Errorf("stderr = %q, want the Lua error", s.stderr.String())
	}
	if !strings.Contains(s.stdout.String(), "after") {
		t.Error("a Lua error stopped interactive evaluation")
	}
}

func TestLua_SandboxedLibraries(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, nil)
	if err := s.run(t, "lua os == nil and io == nil"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got := s.stdout.String(); got != "true\n" {
		t.Errorf("stdout = %q, want true", got)
	}
}

func TestLua_ShellEval(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, nil)
	if err := s.run(t, "lua shell.eval([[echo nested]])"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got, want := s.stdout.String(), "nested\ntrue\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}

	s.stdout.Reset()
	err := s.run(t, "lua shell.eval([[exit 4]]); echo after")
	var exit *shell.ExitRequest
	if !errors.As(err, &exit) || exit.Code != 4 {
		t.Fatalf("Execute() error = %v, want exit request with code 4", err)
	}
	if strings.Contains(s.stdout.String(), "after") {
		t.Error("evaluation continued after an exit from Lua")
	}
}

func TestLua_Session(t *testing.T) {
	t.Parallel()

	src := &labeledSource{
		label: shell.DefaultPromptLabel,
		lines: []string{
			"lua",
			"x = 41",
			"function f()",
			"  return x + 1",
			"end",
			"f()",
			"undefined_call()",
			"exit",
			"echo back",
		},
	}
	s := newTestSession(t, src)

	if err := s.eval.Run(t.Context(), src); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got, want := s.stdout.String(), "42\nExiting ZLUA shell...\nback\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if !strings.Contains(s.stderr.String(), "error:") {
		t.Errorf("stderr = %q, want the runtime error", s.stderr.String())
	}
	if want := []string{LuaPromptLabel, shell.DefaultPromptLabel}; strings.Join(src.labels, ",") != strings.Join(want, ",") {
		t.Errorf("labels = %v, want %v", src.labels, want)
	}
}

func TestLua_SessionEndsAtEOF(t *testing.T) {
	t.Parallel()

	src := &labeledSource{lines: []string{"lua", "1 + 1"}}
	s := newTestSession(t, src)
	if err := s.eval.Run(t.Context(), src); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got, want := s.stdout.String(), "2\nExiting ZLUA shell...\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestLua_SessionWithoutInput(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, nil)
	if err := s.run(t, "lua"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(s.stderr.String(), "no interactive input available") {
		t.Errorf("stderr = %q", s.stderr.String())
	}
}

func TestSh(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, nil)
	if err := os.WriteFile(filepath.Join(s.eval.WorkDir(), "marker.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.run(t, `sh "echo $((40 + 2))"; sh echo joined words; sh "ls *.txt"`); err != nil {
		t.Fatalf("Execute() error: %v\nstderr: %s", err, s.stderr.String())
	}
	if got, want := s.stdout.String(), "42\njoined words\nmarker.txt\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestSh_Failures(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, nil)
	err := s.run(t, `sh "exit 3"`)
	var status *ExitStatusError
	if !errors.As(err, &status) || status.Status != 3 {
		t.Fatalf("Execute() error = %v, want exit status 3", err)
	}
	if !strings.Contains(s.stderr.String(), "i_sh: exit status 3") {
		t.Errorf("stderr = %q", s.stderr.String())
	}

	s.stderr.Reset()
	if err := s.run(t, `sh "if then"; sh`); err != nil {
		t.Fatalf("syntax errors should be input errors, got %v", err)
	}
	if !strings.Contains(s.stderr.String(), "expected a shell program") {
		t.Errorf("stderr = %q", s.stderr.String())
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX program")
	}
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo is not on PATH")
	}

	s := newTestSession(t, nil)
	if err := s.run(t, "run echo from the host"); err != nil {
		t.Fatalf("Execute() error: %v\nstderr: %s", err, s.stderr.String())
	}
	if !strings.Contains(s.stdout.String(), "from the host") {
		t.Errorf("stdout = %q", s.stdout.String())
	}

	s.stderr.Reset()
	if err := s.run(t, "run definitely-not-a-program-zensh; run"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, want := range []string{"was not found", "expected a program to run"} {
		if !strings.Contains(s.stderr.String(), want) {
			t.Errorf("stderr = %q, want %q", s.stderr.String(), want)
		}
	}
}

func TestRun_InputIsEmpty(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX programs")
	}
	for _, program := range []string{"cat", "sh"} {
		if _, err := exec.LookPath(program); err != nil {
			t.Skipf("%s is not on PATH", program)
		}
	}

	s := newTestSession(t, nil)
	done := make(chan error, 1)
	go func() {
		done <- s.eval.Execute(context.Background(), `run cat; run sh -c "read line || echo input closed"`)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Execute() error: %v\nstderr: %s", err, s.stderr.String())
		}
	case <-time.After(10 * time.Second):
		t.Fatal("a program reading its input never finished")
	}
	if !strings.Contains(s.stdout.String(), "input closed") {
		t.Errorf("stdout = %q, want the end-of-input message", s.stdout.String())
	}
}
