// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the `pansh` command tree.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "pansh",
		Short: "An interactive shell with a highlighting line editor",
		Long: TitleStyle.Render("pansh") + SubtitleStyle.Render(" - An interactive shell with a highlighting line editor") + `

pansh reads command lines with syntax highlighting, history and Tab
completion, and runs them with a built-in POSIX shell interpreter
(mvdan/sh) and u-root file utilities. No external programs are started.

` + SubtitleStyle.Render("Examples:") + `
  pansh                     Start the interactive shell
  pansh -c 'ls -l'          Run one line and exit
  pansh serve               Serve the shell over SSH
  pansh palette show        Show the highlighting colours
  pansh config show         Show current configuration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("command") {
				return app.runLine(cmd.Context(), flags)
			}
			return app.runInteractive(cmd.Context(), flags)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/pansh/config.cue)")
	rootCmd.Flags().StringVarP(&flags.command, "command", "c", "", "run one command line and exit")

	rootCmd.AddCommand(newServeCommand(app, flags))
	rootCmd.AddCommand(newPaletteCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
