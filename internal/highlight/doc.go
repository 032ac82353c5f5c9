// SPDX-License-Identifier: MPL-2.0

// Package highlight classifies a command line into coloured tokens.
//
// The Tokenizer splits a line in one left-to-right pass and asks optional
// collaborators whether commands exist and whether path arguments resolve.
// A Palette maps each TokenKind to an ANSI SGR sequence and can be stored as
// JSON of the form {"colors": {"Command": "\u001b[38;5;117m", ...}}.
package highlight
