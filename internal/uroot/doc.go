// SPDX-License-Identifier: MPL-2.0

// Package uroot is the command table of the shell.
//
// A Registry maps names to Commands and doubles as the cmdspec.Provider the
// highlighter and completer consult, so every command that can run is also
// known to the line editor. Commands the interpreter handles itself (cd,
// echo, exit) are added with RegisterSpec: they cannot be dispatched here
// but are still highlighted and completed.
//
// DefaultRegistry carries the file utilities from u-root's pkg/core:
// cat, chmod, cp, find, ls, mkdir, mv, rm and touch. Errors they return
// are prefixed with the command name:
//
//	cat: missing.txt: no such file or directory
package uroot
