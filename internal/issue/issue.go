// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	ConfigLoadFailedId Id = iota + 1
	PaletteLoadFailedId
	HistoryUnavailableId
	CommandNotFoundId
	TerminalRequiredId
	SSHServeFailedId
	HostKeyUnavailableId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a Markdown help page for one kind of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the page source with a "See also" list of links.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	links := append(i.DocLinks(), i.extLinks...)
	if len(links) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range links {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return sb.String()
}

// Render renders the page with glamour using the named style ("dark",
// "light", "notty", ...) or a style file path.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

pansh reads ` + "`config.cue`" + ` from the config directory, or the file given with ` + "`--config`" + `.
The file is checked against a schema before any value is used.

## Things you can try
- Print the path pansh is using:
~~~
$ pansh config path
~~~
- Write a complete file with every default and compare:
~~~
$ pansh config dump > /tmp/config.cue
~~~
- Remove the file to fall back to built-in defaults.`,
		docLinks: []HttpLink{"https://cuelang.org/docs/tour/"},
	}

	paletteLoadFailedIssue = &Issue{
		id: PaletteLoadFailedId,
		mdMsg: `
# Palette could not be loaded

The palette file is missing or is not valid JSON. pansh keeps using the
built-in palette.

## Things you can try
- Export the current palette as a starting point:
~~~
$ pansh palette export > palette.json
~~~
- Point ` + "`palette.file`" + ` in your config at the new file.`,
	}

	historyUnavailableIssue = &Issue{
		id: HistoryUnavailableId,
		mdMsg: `
# History file unavailable

History from earlier sessions could not be read, or this session's lines could
not be saved. The shell still works; history is kept in memory only.

## Things you can try
- Check the permissions of the file named in ` + "`history.file`" + `
- Set ` + "`history.persist: false`" + ` to stop using the file.`,
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found

pansh runs its own builtins and file utilities; it does not start programs
from ` + "`$PATH`" + `.

## Things you can try
- List what is available:
~~~
pansh$ help
~~~`,
	}

	terminalRequiredIssue = &Issue{
		id: TerminalRequiredId,
		mdMsg: `
# Terminal required

The interactive shell needs a terminal on standard input.

## Things you can try
- Run a single line instead:
~~~
$ pansh -c 'ls -l'
~~~
- When connecting over SSH, request a PTY (` + "`ssh -t`" + `).`,
	}

	sshServeFailedIssue = &Issue{
		id: SSHServeFailedId,
		mdMsg: `
# SSH server failed to start

## Things you can try
- Check that nothing else listens on the configured port:
~~~
$ pansh config show | grep ssh
~~~
- Pick another port with ` + "`pansh serve --port 2223`" + `.`,
		extLinks: []HttpLink{"https://github.com/charmbracelet/wish"},
	}

	hostKeyUnavailableIssue = &Issue{
		id: HostKeyUnavailableId,
		mdMsg: `
# SSH host key unavailable

The host key is created on first start when it does not exist. Creating or
reading it failed.

## Things you can try
- Make sure the directory of ` + "`ssh.host_key`" + ` is writable.
- Delete a corrupt key file so a new one is generated.`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		paletteLoadFailedIssue.Id():  paletteLoadFailedIssue,
		historyUnavailableIssue.Id(): historyUnavailableIssue,
		commandNotFoundIssue.Id():    commandNotFoundIssue,
		terminalRequiredIssue.Id():   terminalRequiredIssue,
		sshServeFailedIssue.Id():     sshServeFailedIssue,
		hostKeyUnavailableIssue.Id(): hostKeyUnavailableIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
