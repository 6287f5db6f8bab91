// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "echo hi", []string{"echo", "hi"}},
		{"extra whitespace", "  echo \t  hi   there ", []string{"echo", "hi", "there"}},
		{"double quoted region", `echo "hello world"`, []string{"echo", "hello world"}},
		{"single quoted region", `echo 'a  b' c`, []string{"echo", "a  b", "c"}},
		{"quote inside a word", `say he"llo wor"ld`, []string{"say", "hello world"}},
		{"either quote closes", `echo "a'b c"`, []string{"echo", "ab", "c"}},
		{"empty quotes dropped", `echo ""`, []string{"echo"}},
		{"unterminated quote runs to end", `echo "a b`, []string{"echo", "a b"}},
		{"unicode", "echo héllo wörld", []string{"echo", "héllo", "wörld"}},
		{"blank", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Tokenize(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "echo hi", []string{"echo hi"}},
		{"semicolons", "echo hi;echo bye", []string{"echo hi", "echo bye"}},
		{"newlines", "a\nb\nc", []string{"a", "b", "c"}},
		{"mixed", "a; b\nc", []string{"a", " b", "c"}},
		{"empty kept", "a;;b", []string{"a", "", "b"}},
		{"trailing delimiter", "a;", []string{"a", ""}},
		{"quotes do not protect", `echo "x;y"`, []string{`echo "x`, `y"`}},
		{"empty input", "", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SplitStatements(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SplitStatements(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
