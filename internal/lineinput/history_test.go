// SPDX-License-Identifier: MPL-2.0

package lineinput

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistory_PersistsAcrossOpens(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "history")
	h, err := OpenHistory(path, 10)
	if err != nil {
		t.Fatalf("OpenHistory() error: %v", err)
	}
	for _, line := range []string{"echo one", "", "  ", "echo two", "echo two", "exit"} {
		h.Add(line)
	}
	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reopened, err := OpenHistory(path, 10)
	if err != nil {
		t.Fatalf("OpenHistory() error: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	want := []string{"exit", "echo two", "echo one"}
	if reopened.Len() != len(want) {
		t.Fatalf("Len() after reopen = %d, want %d", reopened.Len(), len(want))
	}
	for i, w := range want {
		if got := reopened.At(i); got != w {
			t.Errorf("At(%d) = %q, want %q", i, got, w)
		}
	}
}

func TestHistory_BoundedAndCompacted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("a\nb\nc\nd\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	h, err := OpenHistory(path, 2)
	if err != nil {
		t.Fatalf("OpenHistory() error: %v", err)
	}
	if h.Len() != 2 || h.At(0) != "d" || h.At(1) != "c" {
		t.Errorf("history after open = %d entries, newest %q", h.Len(), h.At(0))
	}
	h.Add("e")
	if h.Len() != 2 || h.At(1) != "d" {
		t.Errorf("history after Add keeps %d entries, oldest %q", h.Len(), h.At(1))
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "c\nd\ne\n" {
		t.Errorf("history file = %q, want the compacted entries plus the new one", data)
	}
}

func TestHistory_AtOutOfRangePanics(t *testing.T) {
	t.Parallel()

	h, err := OpenHistory(filepath.Join(t.TempDir(), "history"), 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = h.Close() })

	defer func() {
		if recover() == nil {
			t.Error("At(0) on an empty history should panic")
		}
	}()
	_ = h.At(0)
}

func TestTerminal_UsesPersistentHistory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("echo remembered\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	h, err := OpenHistory(path, 0)
	if err != nil {
		t.Fatal(err)
	}

	// Up arrow recalls the saved line.
	var out bytes.Buffer
	tm := NewTerminal(struct {
		io.Reader
		io.Writer
	}{strings.NewReader("\x1b[A\r"), &out}, Options{History: h})
	line, err := tm.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if line != "echo remembered" {
		t.Errorf("Next() = %q, want the recalled line", line)
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "echo remembered\n" {
		t.Errorf("history file = %q, want the repeat dropped", data)
	}
}
