// SPDX-License-Identifier: MPL-2.0

package lineinput

import (
	"bytes"
	"context"
	"io"
	"slices"
	"strings"
	"testing"
)

func staticNames(names ...string) func(string) []string {
	return func(prefix string) []string {
		var out []string
		for _, n := range names {
			if strings.HasPrefix(n, prefix) {
				out = append(out, n)
			}
		}
		return out
	}
}

func TestCompleteLine(t *testing.T) {
	t.Parallel()

	complete := staticNames("echo", "exec", "exit", "help", "f_cat", "f_cp")
	tests := []struct {
		name        string
		line        string
		pos         int
		wantLine    string
		wantPos     int
		wantMatches []string
		wantOK      bool
	}{
		{"unique", "he", 2, "help ", 5, nil, true},
		{"unique keeps the rest", "he world", 2, "help world", 4, nil, true},
		{"common prefix", "e", 1, "", 0, []string{"echo", "exec", "exit"}, false},
		{"longer word is unique", "exi", 3, "exit ", 5, nil, true},
		{"grows to common prefix", "f", 1, "f_c", 3, nil, true},
		{"ambiguous lists", "ex", 2, "", 0, []string{"exec", "exit"}, false},
		{"no match", "zz", 2, "", 0, nil, false},
		{"second word is left alone", "echo he", 7, "", 0, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			line, pos, matches, ok := completeLine(tt.line, tt.pos, complete)
			if line != tt.wantLine || pos != tt.wantPos || ok != tt.wantOK || !slices.Equal(matches, tt.wantMatches) {
				t.Errorf("completeLine(%q, %d) = (%q, %d, %q, %v), want (%q, %d, %q, %v)",
					tt.line, tt.pos, line, pos, matches, ok, tt.wantLine, tt.wantPos, tt.wantMatches, tt.wantOK)
			}
		})
	}
}

func TestCommonPrefix(t *testing.T) {
	t.Parallel()

	if got := commonPrefix([]string{"f_cat", "f_cp", "f_chmod"}); got != "f_c" {
		t.Errorf("commonPrefix() = %q, want f_c", got)
	}
	if got := commonPrefix([]string{"echo", "exit"}); got != "e" {
		t.Errorf("commonPrefix() = %q, want e", got)
	}
}

func TestTerminal_TabCompletesCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	tm := NewTerminal(struct {
		io.Reader
		io.Writer
	}{strings.NewReader("he\tme\rex\t\r"), &out}, Options{Complete: staticNames("echo", "exec", "exit", "help")})

	line, err := tm.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if line != "help me" {
		t.Errorf("Next() = %q, want the completed command", line)
	}

	line, err = tm.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if line != "ex" {
		t.Errorf("Next() = %q, want the ambiguous word unchanged", line)
	}
	if !strings.Contains(out.String(), "exec  exit") {
		t.Errorf("output = %q, want the candidates listed", out.String())
	}
}
