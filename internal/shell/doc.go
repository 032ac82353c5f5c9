// SPDX-License-Identifier: MPL-2.0

// Package shell is the interactive command shell that hosts the line editor.
//
// A Shell prints a prompt, reads a line with lineedit.Editor, parses it with
// mvdan.cc/sh and runs it on an interp.Runner whose exec handler dispatches to
// a per-shell uroot.Registry of builtins and file utilities. The same registry
// drives syntax highlighting and tab completion, so a command is coloured as
// valid exactly when the shell can run it.
//
// The shell owns its palette, history and working directory. Builtins such as
// palette and history act on them directly; there is no global state shared
// between shells, which lets one process serve many SSH sessions.
package shell
