// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/invowk/pansh/internal/config"
	"github.com/invowk/pansh/internal/highlight"
	"github.com/invowk/pansh/internal/issue"
	"github.com/invowk/pansh/internal/shell"
	"github.com/invowk/pansh/internal/terminal"
	"github.com/invowk/pansh/internal/watch"
)

// runInteractive runs the line editor loop on the App's standard streams.
func (a *App) runInteractive(ctx context.Context, flags *rootFlags) error {
	cfg := a.loadConfig(ctx, flags)
	logger := a.newLogger("shell")

	term, err := a.openTerminal(logger)
	if err != nil {
		return newServiceError(fmt.Errorf("failed to open terminal: %w", err), issue.TerminalRequiredId)
	}
	defer func() { _ = term.Close() }()

	sh, err := a.newShell(cfg, term, shell.WithLogger(logger))
	if err != nil {
		return err
	}

	if cfg.Palette.File != "" {
		watchCtx, stopWatch := context.WithCancel(ctx)
		defer stopWatch()
		a.watchPalette(watchCtx, sh, string(cfg.Palette.File), logger)
	}

	status, runErr := sh.Run(ctx)
	if err := sh.Close(); err != nil {
		a.warn(issue.NewErrorContext().
			WithOperation("save history").
			WithResource(string(cfg.History.File)).
			WithSuggestions(
				"Check that the history file's directory is writable",
				"Set history.persist to false to stop saving history",
			).
			Wrap(err).
			BuildError(), issue.HistoryUnavailableId)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if status != 0 {
		return &ExitError{Code: status}
	}
	return nil
}

// runLine executes the -c line and exits with its status. History is
// neither read nor written.
func (a *App) runLine(ctx context.Context, flags *rootFlags) error {
	cfg := a.loadConfig(ctx, flags)
	cfg.History.Persist = false
	cfg.UI.Banner = false

	term := terminal.New(strings.NewReader(""), a.stdout)
	defer func() { _ = term.Close() }()

	sh, err := a.newShell(cfg, term,
		shell.WithLogger(a.newLogger("shell")),
		shell.WithStdin(a.stdin),
		shell.WithStderr(a.stderr),
	)
	if err != nil {
		return err
	}

	status := sh.Execute(ctx, flags.command)
	if status == shell.ExitNotFound && a.verbose {
		renderIssue(a.stderr, issue.CommandNotFoundId)
	}
	if status != 0 {
		return &ExitError{Code: status}
	}
	return nil
}

// newShell creates a shell configured from cfg. A palette that cannot be
// loaded only produces a warning.
func (a *App) newShell(cfg *config.Config, term shell.Terminal, extra ...shell.Option) (*shell.Shell, error) {
	opts, err := shell.ConfigOptions(cfg, a.Fs)
	if err != nil {
		a.warn(err, issue.PaletteLoadFailedId)
	}

	sh, err := shell.New(term, append(opts, extra...)...)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("start shell").
			WithResource(string(cfg.Shell.StartDir)).
			WithSuggestion("Check that shell.start_dir names an existing directory").
			Wrap(err).
			BuildError()
	}
	return sh, nil
}

// watchPalette reloads the palette file into sh whenever it changes on disk.
// The new colours apply from the next prompt.
func (a *App) watchPalette(ctx context.Context, sh *shell.Shell, path string, logger *log.Logger) {
	w, err := watch.New(watch.Config{
		Files:  []string{path},
		Logger: logger,
		OnChange: func(context.Context, []string) error {
			p, ok := highlight.LoadPalette(a.Fs, path)
			if !ok {
				return fmt.Errorf("palette file %s is unreadable, keeping the current colours", path)
			}
			sh.ReplacePalette(p)
			logger.Debug("palette file reloaded", "path", path)
			return nil
		},
	})
	if err != nil {
		logger.Debug("palette file is not watched", "err", err)
		return
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			logger.Warn("stopped watching palette file", "err", err)
		}
	}()
}

// openTerminal puts stdin in raw mode when it is a terminal. Other readers
// are used as they are, which lets scripts pipe keystrokes in.
func (a *App) openTerminal(logger *log.Logger) (*terminal.Terminal, error) {
	if f, ok := a.stdin.(*os.File); ok {
		return terminal.Open(f, a.stdout, terminal.WithLogger(logger))
	}
	return terminal.New(a.stdin, a.stdout, terminal.WithLogger(logger)), nil
}
