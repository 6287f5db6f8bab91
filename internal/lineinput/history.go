// SPDX-License-Identifier: MPL-2.0

package lineinput

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/term"
)

// DefaultHistorySize is the number of lines a History keeps when OpenHistory
// is given no size.
const DefaultHistorySize = 500

var _ term.History = (*History)(nil)

// History is a bounded line history persisted to a file, one entry per
// line. It plugs into the line editor's up/down navigation.
type History struct {
	mu      sync.Mutex
	entries []string // oldest first
	size    int
	file    *os.File
	err     error
}

// OpenHistory loads the entries saved at path and appends new ones to it.
// The file and its directory are created when missing. A file holding more
// than size entries is rewritten with only the most recent ones.
func OpenHistory(path string, size int) (*History, error) {
	if size <= 0 {
		size = DefaultHistorySize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	entries, err := readHistory(path)
	if err != nil {
		return nil, err
	}
	if len(entries) > size {
		entries = entries[len(entries)-size:]
		if err := os.WriteFile(path, []byte(strings.Join(entries, "\n")+"\n"), 0o600); err != nil {
			return nil, fmt.Errorf("compact history: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return &History{entries: entries, size: size, file: f}, nil
}

func readHistory(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer f.Close()

	var entries []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1024*1024)
	for sc.Scan() {
		if line := sc.Text(); strings.TrimSpace(line) != "" {
			entries = append(entries, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// Add records entry as the most recent line. Blank lines and immediate
// repeats are dropped.
func (h *History) Add(entry string) {
	if strings.TrimSpace(entry) == "" || strings.ContainsAny(entry, "\r\n") {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.size {
		h.entries = h.entries[len(h.entries)-h.size:]
	}
	if h.file != nil && h.err == nil {
		if _, err := h.file.WriteString(entry + "\n"); err != nil {
			h.err = fmt.Errorf("write history: %w", err)
		}
	}
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// At returns the entry idx steps back; 0 is the most recent. It panics when
// idx is out of range.
func (h *History) At(idx int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if idx < 0 || idx >= len(h.entries) {
		panic(fmt.Sprintf("lineinput: history index %d out of range [0,%d)", idx, len(h.entries)))
	}
	return h.entries[len(h.entries)-1-idx]
}

// Close closes the history file and reports the first write failure, if any.
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		return h.err
	}
	err := errors.Join(h.err, h.file.Close())
	h.file = nil
	return err
}
