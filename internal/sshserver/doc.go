// SPDX-License-Identifier: MPL-2.0

// Package sshserver serves pansh sessions over SSH using the Wish library.
//
// Every connection gets its own shell: interactive sessions run the line
// editor on the client's PTY, and sessions that send a command run that one
// line and exit with its status.
package sshserver
