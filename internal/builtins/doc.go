// SPDX-License-Identifier: MPL-2.0

// Package builtins holds the commands every zensh session starts with:
// help, clear, exit, echo, exec and hello, the session commands (cd, pwd,
// undo, redo, loglevel), the embedded interpreters (i_lua, i_sh), host
// processes (h_run) and the macros and aliases declared in the
// configuration file.
package builtins
