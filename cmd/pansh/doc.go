// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the pansh command line.
//
// The root command runs the interactive shell, or a single line with -c.
// Subcommands serve the shell over SSH and inspect the palette and the
// configuration.
package cmd
