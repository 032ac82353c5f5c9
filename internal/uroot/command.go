// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"

	"github.com/invowk/pansh/pkg/cmdspec"
)

type (
	// Command is a shell command the Registry can dispatch to.
	Command interface {
		// Name returns the command name as typed at the prompt.
		Name() string

		// Run executes the command. The context carries the HandlerContext
		// with the command's stdio and working directory. args[0] is the
		// command name.
		Run(ctx context.Context, args []string) error

		// Spec describes the command's positional arguments for highlighting
		// and completion.
		Spec() cmdspec.Spec

		// SupportedFlags returns the flags the command understands, for help
		// output.
		SupportedFlags() []FlagInfo
	}

	// FlagInfo describes one flag of a command.
	FlagInfo struct {
		// Name is the flag name without dashes.
		Name string
		// ShortName is the single-character alias, if any.
		ShortName string
		// Description explains what the flag does.
		Description string
		// TakesValue indicates the flag consumes the next argument.
		TakesValue bool
	}
)

// Usage renders the flag as it would be typed, e.g. "-m MODE".
func (f FlagInfo) Usage() string {
	name := "-" + f.Name
	if len(f.Name) > 1 {
		name = "-" + name
	}
	if f.TakesValue {
		name += " VALUE"
	}
	return name
}
