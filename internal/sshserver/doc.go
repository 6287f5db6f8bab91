// SPDX-License-Identifier: MPL-2.0

// Package sshserver serves the shell over SSH using the Wish library.
//
// Every SSH session gets its own evaluator over the shared command registry,
// so sessions keep separate working directories and undo history while
// seeing the same commands. Sessions that request a PTY get the line editor
// from package lineinput; sessions without one read plain lines, and a
// session started with a command (`ssh host echo hi`) evaluates that single
// input and exits with its status.
//
// Authentication is token based: the password must be a token issued by
// GenerateToken. Public keys are always rejected.
package sshserver
