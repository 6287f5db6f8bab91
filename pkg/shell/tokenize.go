// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"strings"
	"unicode"
)

// Tokenize splits one statement into whitespace-delimited tokens.
//
// A single or double quote toggles quoted mode and is dropped from the
// output; whitespace inside quoted mode is kept. Either quote character
// closes a region opened by the other. There are no escape sequences, and
// a token that ends up empty (such as "") is discarded.
func Tokenize(statement string) []string {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
	)

	for _, r := range statement {
		switch {
		case r == '"' || r == '\'':
			quoted = !quoted
		case unicode.IsSpace(r) && !quoted:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// SplitStatements splits raw input on ';' and newlines. Delimiters inside
// quotes are not protected. Empty statements are preserved so the evaluator
// can report them.
func SplitStatements(input string) []string {
	var (
		statements []string
		start      int
	)
	for i, r := range input {
		if r == ';' || r == '\n' {
			statements = append(statements, input[start:i])
			start = i + 1
		}
	}
	return append(statements, input[start:])
}
