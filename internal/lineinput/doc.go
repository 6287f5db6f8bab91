// SPDX-License-Identifier: MPL-2.0

// Package lineinput provides the front ends that feed the shell loop one
// line at a time: a line editor for terminals (local or SSH) and a plain
// scanner for pipes and redirected input. Both render the
// "[15:04:05.000/LABEL] >>" prompt and let a sub-session such as the Lua
// interpreter switch the label while it owns the input.
package lineinput
