// SPDX-License-Identifier: MPL-2.0

// Package coreutils exposes the u-root core utilities (github.com/u-root/u-root/pkg/core)
// as shell commands in the "files" category.
//
// Each utility is registered as f_<name> with its bare name as alias, so both
// `ls -l` and `f_ls -l` work. Utilities take their own flags, run in the
// session directory and write to the session streams, which makes them
// behave the same at a local prompt and in an SSH session. They never read
// standard input.
//
// Failures surface like any other command failure:
//
//	f_cat: open missing.txt: no such file or directory
package coreutils
