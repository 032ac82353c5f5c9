// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/invowk/pansh/internal/config"
	"github.com/invowk/pansh/internal/issue"
)

type (
	// App wires CLI services and shared dependencies. All Cobra command
	// handlers receive an App reference.
	App struct {
		Config config.Provider
		Fs     afero.Fs
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		// verbose is resolved from --verbose and ui.verbose once the
		// configuration is loaded.
		verbose bool
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Fs     afero.Fs
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// rootFlags are the flags shared by every command.
	rootFlags struct {
		verbose    bool
		configPath string
		command    string
	}
)

// NewApp creates an App, filling unset dependencies with the process defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		Fs:     deps.Fs,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Fs == nil {
		app.Fs = afero.NewOsFs()
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func (f *rootFlags) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: f.configPath}
}

// loadConfig loads the configuration. A broken configuration is reported as
// a warning and the defaults are used, so the shell always starts.
func (a *App) loadConfig(ctx context.Context, flags *rootFlags) *config.Config {
	a.verbose = flags.verbose

	cfg, err := a.Config.Load(ctx, flags.loadOptions())
	if err != nil {
		a.warn(err, issue.ConfigLoadFailedId)
		slog.Debug("using default configuration", "error", err)
		cfg = config.DefaultConfig()
	}
	if cfg.UI.Verbose {
		a.verbose = true
	}
	return cfg
}

// newLogger creates a component logger on stderr.
func (a *App) newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: prefix})
	if a.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// warn prints a non-fatal problem together with its issue page in verbose mode.
func (a *App) warn(err error, id issue.Id) {
	fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.verbose))
	if a.verbose {
		renderIssue(a.stderr, id)
	}
}
