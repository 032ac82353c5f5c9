// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/invowk/pansh/internal/highlight"
	"github.com/invowk/pansh/internal/uroot"
	"github.com/invowk/pansh/pkg/cmdspec"
)

var (
	// errUsage is returned by builtins given arguments they do not understand.
	errUsage = errors.New("usage")

	errPaletteUnreadable = errors.New("palette file is missing or not valid JSON")
)

type (
	// builtin is a command implemented by the shell itself.
	builtin struct {
		spec  cmdspec.Spec
		flags []uroot.FlagInfo
		run   func(ctx context.Context, hc *uroot.HandlerContext, args []string) error
	}
)

// interpreterSpecs describe the commands mvdan.cc/sh runs itself. They are
// registered for highlighting and completion only.
var interpreterSpecs = []cmdspec.Spec{
	{
		Name:    "cd",
		Summary: "change the working directory",
		Usage:   "cd [dir]",
		Args:    []cmdspec.ArgSpec{cmdspec.Dir("dir", true)},
	},
	{Name: "pwd", Summary: "print the working directory", Usage: "pwd"},
	{Name: "echo", Summary: "print arguments", Usage: "echo [-n] [arg...]"},
	{Name: "exit", Summary: "leave the shell", Usage: "exit [status]"},
	{Name: "true", Summary: "succeed", Usage: "true"},
	{Name: "false", Summary: "fail", Usage: "false"},
}

// Name returns the command name.
func (b *builtin) Name() string { return b.spec.Name }

// Spec returns the argument description.
func (b *builtin) Spec() cmdspec.Spec { return b.spec }

// SupportedFlags returns the flags the builtin understands.
func (b *builtin) SupportedFlags() []uroot.FlagInfo { return b.flags }

// Run executes the builtin. Errors are prefixed with the command name.
func (b *builtin) Run(ctx context.Context, args []string) error {
	if err := b.run(ctx, uroot.GetHandlerContext(ctx), args); err != nil {
		if errors.Is(err, errUsage) {
			return fmt.Errorf("%s: %w: %s", b.spec.Name, err, b.spec.Usage)
		}
		return fmt.Errorf("%s: %w", b.spec.Name, err)
	}
	return nil
}

// newRegistry collects everything this shell can run or highlight.
func (s *Shell) newRegistry() *uroot.Registry {
	r := uroot.NewRegistry()
	for _, spec := range interpreterSpecs {
		r.RegisterSpec(spec)
	}
	for _, b := range s.builtins() {
		r.Register(b)
	}
	if s.urootUtils {
		r.Merge(uroot.DefaultRegistry)
	}
	return r
}

func (s *Shell) builtins() []*builtin {
	return []*builtin{
		{
			spec: cmdspec.Spec{
				Name:    "help",
				Summary: "list commands or describe one",
				Usage:   "help [command]",
			},
			run: s.runHelp,
		},
		{
			spec: cmdspec.Spec{
				Name:    "history",
				Summary: "list, clear or resize the line history",
				Usage:   "history [-c | -s size]",
			},
			flags: []uroot.FlagInfo{
				{Name: "c", ShortName: "c", Description: "clear the history"},
				{Name: "s", ShortName: "s", Description: "keep only the newest VALUE entries", TakesValue: true},
			},
			run:   s.runHistory,
		},
		{
			spec: cmdspec.Spec{
				Name:    "palette",
				Summary: "show or change the highlighting colours",
				Usage:   "palette [show|set <kind> <color>|unset <kind>|load <file>|save <file>|reset [basic]]",
				Args: []cmdspec.ArgSpec{
					{Name: "action", Kind: cmdspec.KindAny, Description: "show, set, unset, load, save or reset"},
					cmdspec.File("file", false),
				},
			},
			run: s.runPalette,
		},
		{
			spec: cmdspec.Spec{
				Name:    "clear",
				Summary: "clear the screen",
				Usage:   "clear",
			},
			run: runClear,
		},
		{
			spec: cmdspec.Spec{
				Name:    "uname",
				Summary: "print system information",
				Usage:   "uname [-a]",
			},
			flags: []uroot.FlagInfo{{Name: "a", ShortName: "a", Description: "print all information"}},
			run:   s.runUname,
		},
	}
}

func (s *Shell) runHelp(_ context.Context, hc *uroot.HandlerContext, args []string) error {
	var md string
	switch len(args) {
	case 1:
		md = s.commandListMarkdown()
	case 2:
		spec, ok := s.registry.SpecFor(args[1])
		if !ok {
			return fmt.Errorf("no help for %q", args[1])
		}
		md = s.commandMarkdown(spec)
	default:
		return errUsage
	}

	out, err := glamour.Render(md, s.helpStyle)
	if err != nil {
		return fmt.Errorf("failed to render help: %w", err)
	}
	_, err = fmt.Fprint(hc.Stdout, out)
	return err
}

func (s *Shell) commandListMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Commands\n\n| Command | Description |\n|---|---|\n")
	for _, spec := range s.registry.Specs() {
		fmt.Fprintf(&sb, "| `%s` | %s |\n", spec.Name, spec.Summary)
	}
	sb.WriteString("\nType `help <command>` for more information on a specific command.\n")
	return sb.String()
}

func (s *Shell) commandMarkdown(spec cmdspec.Spec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n", spec.Name, spec.Summary)
	if spec.Usage != "" {
		fmt.Fprintf(&sb, "```\n%s\n```\n", spec.Usage)
	}

	cmd, ok := s.registry.Lookup(spec.Name)
	if !ok {
		return sb.String()
	}
	if flags := cmd.SupportedFlags(); len(flags) > 0 {
		sb.WriteString("\n## Flags\n\n| Flag | Description |\n|---|---|\n")
		for _, f := range flags {
			fmt.Fprintf(&sb, "| `%s` | %s |\n", f.Usage(), f.Description)
		}
	}
	return sb.String()
}

func (s *Shell) runHistory(_ context.Context, hc *uroot.HandlerContext, args []string) error {
	switch {
	case len(args) == 2 && args[1] == "-c":
		s.History().Clear()
		return nil
	case len(args) == 3 && args[1] == "-s":
		size, err := strconv.Atoi(args[2])
		if err != nil || size <= 0 {
			return errUsage
		}
		s.History().SetMaxSize(size)
		return nil
	case len(args) > 1:
		return errUsage
	}

	for i, line := range s.History().Entries() {
		if _, err := fmt.Fprintf(hc.Stdout, "%5d  %s\n", i+1, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shell) runPalette(_ context.Context, hc *uroot.HandlerContext, args []string) error {
	action := "show"
	if len(args) > 1 {
		action = strings.ToLower(args[1])
	}
	rest := args[min(len(args), 2):]

	switch action {
	case "show":
		return showPalette(hc, s.palette)

	case "set":
		if len(rest) != 2 {
			return errUsage
		}
		kind, err := highlight.ParseTokenKind(rest[0])
		if err != nil {
			return err
		}
		code, err := ParseColor(rest[1])
		if err != nil {
			return err
		}
		return s.palette.SetColor(kind, code)

	case "unset":
		if len(rest) != 1 {
			return errUsage
		}
		kind, err := highlight.ParseTokenKind(rest[0])
		if err != nil {
			return err
		}
		s.palette.Unset(kind)
		return nil

	case "load":
		if len(rest) != 1 {
			return errUsage
		}
		path := resolve(hc.Dir, rest[0])
		loaded, ok := highlight.LoadPalette(s.paths.Fs(), path)
		if !ok {
			return fmt.Errorf("%s: not a readable palette file", rest[0])
		}
		s.palette.CopyFrom(loaded)
		_, err := fmt.Fprintf(hc.Stdout, "Loaded palette from %s\n", rest[0])
		return err

	case "save":
		if len(rest) != 1 {
			return errUsage
		}
		if err := s.palette.Save(s.paths.Fs(), resolve(hc.Dir, rest[0])); err != nil {
			return err
		}
		_, err := fmt.Fprintf(hc.Stdout, "Saved palette to %s\n", rest[0])
		return err

	case "reset":
		switch {
		case len(rest) == 0:
			s.palette.CopyFrom(highlight.DefaultPalette())
		case len(rest) == 1 && rest[0] == "basic":
			s.palette.CopyFrom(highlight.BasicPalette())
		default:
			return errUsage
		}
		return nil

	default:
		return fmt.Errorf("unknown action %q: %w", action, errUsage)
	}
}

func showPalette(hc *uroot.HandlerContext, p *highlight.Palette) error {
	for _, k := range highlight.Kinds() {
		sample := p.Colorize("Sample "+k.String()+" text", k)
		if _, err := fmt.Fprintf(hc.Stdout, "  %-16s %s\n", k, sample); err != nil {
			return err
		}
	}
	return nil
}

// ParseColor turns a colour as typed by a user into an SGR sequence: a
// number 0-255 selects a 256-colour foreground, a list like "1;32" is used
// as SGR parameters, and text starting with ESC, "\e", "\033" or "\x1b" is
// taken literally after unescaping.
func ParseColor(s string) (string, error) {
	for _, esc := range []string{`\e`, `\033`, `\x1b`, `\u001b`} {
		if strings.HasPrefix(s, esc) {
			s = "\x1b" + s[len(esc):]
			break
		}
	}
	if strings.HasPrefix(s, "\x1b[") {
		return s, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 255 {
			return "", fmt.Errorf("colour %d out of range 0-255", n)
		}
		return "\x1b[38;5;" + s + "m", nil
	}
	if s != "" && strings.Trim(s, "0123456789;") == "" {
		return "\x1b[" + s + "m", nil
	}
	return "", fmt.Errorf("invalid colour %q", s)
}

func runClear(_ context.Context, hc *uroot.HandlerContext, _ []string) error {
	_, err := fmt.Fprint(hc.Stdout, "\x1b[2J\x1b[H")
	return err
}

func (s *Shell) runUname(_ context.Context, hc *uroot.HandlerContext, args []string) error {
	all := false
	for _, arg := range args[1:] {
		if arg != "-a" {
			return errUsage
		}
		all = true
	}

	line := sysname()
	if all {
		line = strings.Join([]string{
			sysname(), s.context.Host, kernelRelease(), runtime.Version(), machine(),
		}, " ")
	}
	_, err := fmt.Fprintln(hc.Stdout, line)
	return err
}

func sysname() string {
	switch runtime.GOOS {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows_NT"
	default:
		return runtime.GOOS
	}
}

func machine() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	default:
		return runtime.GOARCH
	}
}

// kernelRelease reads the release from /proc/version, e.g. "6.6.68".
func kernelRelease() string {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return "unknown"
	}
	if fields := strings.Fields(string(data)); len(fields) >= 3 {
		return fields[2]
	}
	return "unknown"
}

// resolve makes path absolute against dir.
func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
