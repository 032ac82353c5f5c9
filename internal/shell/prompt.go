// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/invowk/pansh/internal/highlight"
	"github.com/invowk/pansh/internal/terminal"
)

const (
	bannerTitle = "pansh"
	bannerHelp  = "Type 'help' for available commands"
)

// ShellContext is the per-session state shown in the prompt.
//
//nolint:revive // ShellContext reads better than Context at call sites outside the package
type ShellContext struct {
	// Cwd is the working directory, following cd.
	Cwd  string
	User string
	Host string
	// Home is abbreviated to "~" by DisplayPath.
	Home string
	// LastExit is the status of the last executed line.
	LastExit int
}

var bannerStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(lipgloss.Color("14")).
	Padding(1, 2)

var (
	bannerTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	bannerHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// DisplayPath returns Cwd with the home directory shown as "~".
func (c ShellContext) DisplayPath() string {
	home := strings.TrimSuffix(c.Home, "/")
	switch {
	case home == "":
		return c.Cwd
	case c.Cwd == home:
		return "~"
	case strings.HasPrefix(c.Cwd, home+"/"):
		return "~" + c.Cwd[len(home):]
	default:
		return c.Cwd
	}
}

// Prompt renders the coloured prompt and returns it with its width in
// screen columns.
func (c ShellContext) Prompt(p *highlight.Palette) (prompt string, width int) {
	path := c.DisplayPath()
	parts := []struct {
		text string
		kind highlight.TokenKind
	}{
		{c.User, highlight.KindPromptUser},
		{"@", highlight.KindPromptSeparator},
		{c.Host, highlight.KindPromptHost},
		{":", highlight.KindPromptSeparator},
		{path, highlight.KindPromptPath},
		{"$ ", highlight.KindPromptSymbol},
	}

	var sb strings.Builder
	for _, part := range parts {
		sb.WriteString(p.Colorize(part.text, part.kind))
		width += runewidth.StringWidth(part.text)
	}
	return sb.String(), width
}

// printPrompt starts a fresh line with the prompt.
func (s *Shell) printPrompt() (int, error) {
	prompt, width := s.context.Prompt(s.palette)
	_, err := io.WriteString(s.term, "\r"+prompt)
	return width, err
}

func (s *Shell) printBanner() error {
	content := bannerTitleStyle.Render(bannerTitle) + "\n" +
		bannerHelpStyle.Render(bannerHelp)
	_, err := io.WriteString(terminal.NewlineWriter(s.term), "\n"+bannerStyle.Render(content)+"\n\n")
	return err
}
