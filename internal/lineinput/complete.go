// SPDX-License-Identifier: MPL-2.0

package lineinput

import (
	"fmt"
	"strings"
)

const keyTab = '\t'

// completeLine completes the command word under the cursor. A unique match
// is completed with a trailing space; several matches are completed to their
// common prefix. When the word cannot grow, the matches are returned for
// listing and ok is false.
func completeLine(line string, pos int, complete func(prefix string) []string) (newLine string, newPos int, matches []string, ok bool) {
	word := line[:pos]
	if strings.ContainsAny(word, " \t") {
		return "", 0, nil, false
	}
	matches = complete(word)
	rest := line[pos:]

	switch len(matches) {
	case 0:
		return "", 0, nil, false
	case 1:
		completed := matches[0]
		if !strings.HasPrefix(rest, " ") {
			completed += " "
		}
		return completed + rest, len(completed), nil, true
	}

	prefix := commonPrefix(matches)
	if len(prefix) > len(word) {
		return prefix + rest, len(prefix), nil, true
	}
	return "", 0, matches, false
}

func commonPrefix(words []string) string {
	prefix := words[0]
	for _, w := range words[1:] {
		n := 0
		for n < len(prefix) && n < len(w) && prefix[n] == w[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return prefix
}

// autoComplete adapts completeLine to the line editor's key callback.
// Ambiguous matches are listed above the prompt.
func (t *Terminal) autoComplete(complete func(prefix string) []string) func(string, int, rune) (string, int, bool) {
	return func(line string, pos int, key rune) (string, int, bool) {
		if key != keyTab {
			return "", 0, false
		}
		newLine, newPos, matches, ok := completeLine(line, pos, complete)
		if len(matches) > 0 {
			fmt.Fprintln(t.term, strings.Join(matches, "  "))
		}
		return newLine, newPos, ok
	}
}
