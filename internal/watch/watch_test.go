// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zensh/zensh/pkg/shell"
)

const testDebounce = 150 * time.Millisecond

// recorder collects OnChange calls.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.fired <- struct{}{}
	return nil
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a run")
	}
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func startWatcher(t *testing.T, cfg Config) (*Watcher, <-chan error) {
	t.Helper()

	cfg.Debounce = testDebounce
	cfg.Logger = log.New(io.Discard)
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w, done
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, Config{Dir: dir, OnChange: rec.onChange})

	writeFile(t, filepath.Join(dir, "a.zsh"), "echo a")
	writeFile(t, filepath.Join(dir, "b.zsh"), "echo b")
	writeFile(t, filepath.Join(dir, "a.zsh"), "echo a again")
	rec.wait(t)

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("runs = %d, want 1: %v", len(calls), calls)
	}
	if !slices.Equal(calls[0], []string{"a.zsh", "b.zsh"}) {
		t.Errorf("changed = %v, want [a.zsh b.zsh]", calls[0])
	}
}

func TestWatcher_PatternsAndIgnores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "nested", "deep"), 0o755); err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	startWatcher(t, Config{
		Dir:      dir,
		Patterns: []string{"**/*.zsh"},
		Ignore:   []string{"vendor/**"},
		OnChange: rec.onChange,
	})

	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored by pattern")
	writeFile(t, filepath.Join(dir, "x.swp"), "ignored by default")
	writeFile(t, filepath.Join(dir, "nested", "deep", "run.zsh"), "echo deep")
	rec.wait(t)

	calls := rec.snapshot()
	for _, call := range calls {
		for _, path := range call {
			if path != "nested/deep/run.zsh" {
				t.Errorf("unexpected path in run: %q", path)
			}
		}
	}
}

func TestWatcher_ExitRequestEndsRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(Config{
		Dir:      dir,
		Debounce: testDebounce,
		Logger:   log.New(io.Discard),
		OnChange: func(context.Context, []string) error {
			return &shell.ExitRequest{Code: 5}
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	// New already watches dir, so the event is queued even before Run reads it.
	// A single write: every further write would push the debounce back.
	writeFile(t, filepath.Join(dir, "trigger.zsh"), "exit 5")

	select {
	case err := <-done:
		var exit *shell.ExitRequest
		if !errors.As(err, &exit) || exit.Code != 5 {
			t.Fatalf("Run() error = %v, want exit request 5", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not end after the exit request")
	}
}

func TestWatcher_ClearScreen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	var out syncBuffer
	startWatcher(t, Config{Dir: dir, ClearScreen: true, Stdout: &out, OnChange: rec.onChange})

	writeFile(t, filepath.Join(dir, "a.zsh"), "echo a")
	rec.wait(t)
	if out.String() != clearScreen {
		t.Errorf("stdout = %q, want the clear sequence", out.String())
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, done := startWatcher(t, Config{Dir: t.TempDir()})
	// Run may not have flipped the started flag yet; retry briefly.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !w.started.Load() {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
			t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
		}
		return
	}
	select {
	case err := <-done:
		t.Fatalf("first Run() ended early: %v", err)
	default:
		t.Fatal("first Run() never started")
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{
		{Dir: t.TempDir(), Patterns: []string{"[unclosed"}},
		{Dir: t.TempDir(), Ignore: []string{"{a,b"}},
	} {
		if _, err := New(cfg); err == nil {
			t.Errorf("New(%+v) should reject the pattern", cfg)
		}
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	f, err := newFilter([]string{"**/*.zsh", "Makefile"}, []string{"build/**"})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		rel  string
		want bool
	}{
		{"run.zsh", true},
		{"scripts/deep/run.zsh", true},
		{"Makefile", true},
		{"README.md", false},
		{"build/out.zsh", false},
		{".git/objects/pack/x.zsh", false},
		{"scripts/run.zsh~", false},
	}
	for _, tt := range tests {
		if got := f.match(tt.rel); got != tt.want {
			t.Errorf("match(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
	if !f.ignoredDir(".git") || !f.ignoredDir("node_modules") || f.ignoredDir("scripts") {
		t.Error("ignoredDir() should skip VCS and dependency directories only")
	}
}

func TestDefaultIgnores_ReturnsCopy(t *testing.T) {
	t.Parallel()

	got := DefaultIgnores()
	got[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() should return a copy")
	}
}

func TestScriptRunner(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "my script.zsh"), "greet")

	reg := shell.NewRegistry(log.New(io.Discard))
	if err := reg.Register("greet", "", func(_ context.Context, inv *shell.Invocation) error {
		inv.Println("hi from script")
		return nil
	}, 0); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("exec", "", func(ctx context.Context, inv *shell.Invocation) error {
		return inv.Eval.RunScript(ctx, inv.Args[0])
	}, 1); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	eval := shell.NewEvaluator(reg, shell.Options{
		Stdout:          &stdout,
		Stderr:          &stderr,
		Logger:          log.New(io.Discard),
		WorkDir:         dir,
		ScriptExtension: "zsh",
	})

	run := ScriptRunner(eval, "my script.zsh")
	if err := run(context.Background(), []string{"my script.zsh"}); err != nil {
		t.Fatalf("run error: %v\nstderr: %s", err, stderr.String())
	}
	if stdout.String() != "hi from script\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
