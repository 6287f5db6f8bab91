// SPDX-License-Identifier: MPL-2.0

// Package shell is the command-dispatch engine of zensh.
//
// A Registry holds named commands, optional categories and aliases. An
// Evaluator splits raw input into statements on ';' and newlines, tokenizes
// each statement (whitespace separated, quote-toggled regions), resolves the
// command name through at most one alias hop, validates the argument count
// and runs the command. Mistyped names get a "did you mean" suggestion from
// Suggest.
//
// Scripts are evaluated with RunScript, which threads the nesting depth
// through the context and refuses to go past the configured ceiling, so
// concurrent sessions never share a counter.
//
// The package never reads from a terminal itself: front ends supply lines
// through a LineSource and drive the loop with Evaluator.Run.
package shell
