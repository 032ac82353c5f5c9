// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"

	"github.com/invowk/pansh/internal/completion"
	"github.com/invowk/pansh/internal/highlight"
	"github.com/invowk/pansh/internal/lineedit"
	"github.com/invowk/pansh/internal/uroot"
	"github.com/invowk/pansh/pkg/fspath"
)

// DefaultHelpStyle is the glamour style used by the help builtin.
const DefaultHelpStyle = "dark"

type (
	// Terminal is what a Shell reads keys from and writes to. Suspend and
	// Resume bracket every command so that commands see a normal terminal.
	Terminal interface {
		lineedit.ByteSource
		Suspend() error
		Resume() error
	}

	// Option configures a Shell.
	Option func(*Shell)

	// Shell is an interactive session. A Shell is not safe for concurrent
	// use, except for ReplacePalette; run one per terminal.
	Shell struct {
		term     Terminal
		editor   *lineedit.Editor
		runner   *interp.Runner
		registry *uroot.Registry
		paths    *fspath.FS
		palette  *highlight.Palette
		logger   *log.Logger
		context  ShellContext

		pendingPalette atomic.Pointer[highlight.Palette]

		startDir    string
		stdin       io.Reader
		stderr      io.Writer
		historyFile string
		historyMax  int
		banner      bool
		urootUtils  bool
		helpStyle   string
		editorOpts  []lineedit.Option
	}
)

// WithLogger sets the shell's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// WithPrompt sets the identity shown in the prompt. home is shown as "~" and
// becomes $HOME for the interpreter.
func WithPrompt(user, host, home string) Option {
	return func(s *Shell) {
		s.context.User = user
		s.context.Host = host
		s.context.Home = home
	}
}

// WithStartDir sets the initial working directory. Empty means the process
// working directory.
func WithStartDir(dir string) Option {
	return func(s *Shell) { s.startDir = dir }
}

// WithHistoryFile loads history from path at start and writes it back on
// Close. maxSize bounds the number of kept lines.
func WithHistoryFile(path string, maxSize int) Option {
	return func(s *Shell) {
		s.historyFile = path
		s.historyMax = maxSize
	}
}

// WithHistorySize bounds history without persisting it.
func WithHistorySize(maxSize int) Option {
	return func(s *Shell) { s.historyMax = maxSize }
}

// WithPalette sets the palette the shell starts with. The shell keeps the
// pointer; the palette builtin mutates it in place.
func WithPalette(p *highlight.Palette) Option {
	return func(s *Shell) { s.palette = p }
}

// WithBanner enables or disables the welcome banner.
func WithBanner(enabled bool) Option {
	return func(s *Shell) { s.banner = enabled }
}

// WithUrootUtils enables or disables the u-root file utilities.
func WithUrootUtils(enabled bool) Option {
	return func(s *Shell) { s.urootUtils = enabled }
}

// WithStdin sets the standard input commands read from. The default is an
// empty reader, since the terminal's input belongs to the line editor.
func WithStdin(r io.Reader) Option {
	return func(s *Shell) { s.stdin = r }
}

// WithStderr sends command errors to w instead of the terminal.
func WithStderr(w io.Writer) Option {
	return func(s *Shell) { s.stderr = w }
}

// WithHelpStyle sets the glamour style name for the help builtin.
func WithHelpStyle(style string) Option {
	return func(s *Shell) { s.helpStyle = style }
}

// WithEditorOptions passes extra options to the line editor.
func WithEditorOptions(opts ...lineedit.Option) Option {
	return func(s *Shell) { s.editorOpts = append(s.editorOpts, opts...) }
}

// New creates a Shell on term. It fails when the start directory does not
// exist.
func New(term Terminal, opts ...Option) (*Shell, error) {
	s := &Shell{
		term: term,
		context: ShellContext{
			User: "root",
			Host: "panos",
			Home: "/root",
		},
		stdin:      strings.NewReader(""),
		historyMax: lineedit.DefaultMaxHistory,
		banner:     true,
		urootUtils: true,
		helpStyle:  DefaultHelpStyle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.stderr == nil {
		s.stderr = term
	}
	if s.palette == nil {
		s.palette = highlight.DefaultPalette()
	}

	s.registry = s.newRegistry()

	env := append(os.Environ(), "HOME="+s.context.Home)
	runner, err := interp.New(
		interp.Dir(s.startDir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(s.stdin, term, s.stderr),
		interp.CallHandler(s.callHandler),
		interp.ExecHandlers(s.execHandler),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}
	s.runner = runner
	s.context.Cwd = runner.Dir

	s.paths = fspath.NewOS(func() string { return s.runner.Dir })

	history := lineedit.NewHistory(s.historyMax)
	if s.historyFile != "" {
		if err := loadHistory(s.paths.Fs(), s.historyFile, history); err != nil {
			s.logger.Warn("history not loaded", "file", s.historyFile, "err", err)
		}
	}

	editorOpts := []lineedit.Option{
		lineedit.WithHistory(history),
		lineedit.WithPalette(s.palette),
		lineedit.WithTokenizer(highlight.NewTokenizer(
			highlight.WithCommands(s.registry),
			highlight.WithPaths(s.paths),
		)),
		lineedit.WithCompleter(completion.New(s.paths, s.registry)),
		lineedit.WithValidator(s.validate),
		lineedit.WithLogger(s.logger),
	}
	s.editor = lineedit.NewEditor(term, append(editorOpts, s.editorOpts...)...)

	s.logger.Debug("shell ready", "dir", s.context.Cwd, "commands", len(s.registry.Names()))
	return s, nil
}

// Context returns a snapshot of the session state.
func (s *Shell) Context() ShellContext {
	return s.context
}

// Registry returns the commands this shell can run.
func (s *Shell) Registry() *uroot.Registry {
	return s.registry
}

// Palette returns the shell-owned palette.
func (s *Shell) Palette() *highlight.Palette {
	return s.palette
}

// ReplacePalette schedules p to replace the palette's colours before the
// next prompt. It may be called from any goroutine.
func (s *Shell) ReplacePalette(p *highlight.Palette) {
	s.pendingPalette.Store(p.Clone())
}

func (s *Shell) applyPendingPalette() {
	if p := s.pendingPalette.Swap(nil); p != nil {
		s.palette.CopyFrom(p)
		s.logger.Debug("palette replaced")
	}
}

// History returns the line history.
func (s *Shell) History() *lineedit.History {
	return s.editor.History()
}

// Run reads and executes lines until exit, Ctrl+D on an empty line, the
// input ending or ctx being cancelled. It returns the last exit status.
func (s *Shell) Run(ctx context.Context) (int, error) {
	if s.banner {
		if err := s.printBanner(); err != nil {
			return s.context.LastExit, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return s.context.LastExit, err
		}

		s.applyPendingPalette()
		width, err := s.printPrompt()
		if err != nil {
			return s.context.LastExit, err
		}

		res, err := s.editor.ReadLine(width)
		if errors.Is(err, lineedit.ErrInputClosed) {
			s.logger.Debug("input closed")
			return s.context.LastExit, nil
		}
		if err != nil {
			return s.context.LastExit, err
		}

		switch res.Status {
		case lineedit.StatusAccepted:
			s.Execute(ctx, res.Line)
			if s.runner.Exited() {
				return s.context.LastExit, nil
			}
		case lineedit.StatusCancelled:
			if res.EndOfInput {
				_, err := io.WriteString(s.term, "\r\n")
				return s.context.LastExit, err
			}
		case lineedit.StatusScreenCleared:
			if s.banner {
				if err := s.printBanner(); err != nil {
					return s.context.LastExit, err
				}
			}
		}
	}
}

// Close saves history to the history file, if one is set.
func (s *Shell) Close() error {
	if s.historyFile == "" {
		return nil
	}
	return saveHistory(s.paths.Fs(), s.historyFile, s.History())
}

// validate refuses lines that name a missing file where one must exist.
func (s *Shell) validate(line string) bool {
	return !highlight.HasInvalidPath(s.editor.Tokenize(line))
}
