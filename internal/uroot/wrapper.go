// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"
	"fmt"

	"github.com/u-root/u-root/pkg/core"

	"github.com/invowk/pansh/pkg/cmdspec"
)

type (
	// baseWrapper holds the metadata every command shares.
	baseWrapper struct {
		spec  cmdspec.Spec
		flags []FlagInfo
	}

	// coreCommand runs a u-root pkg/core utility against the handler context.
	coreCommand struct {
		baseWrapper
		newCore func() core.Command
	}
)

// Name returns the command name.
func (w *baseWrapper) Name() string {
	return w.spec.Name
}

// Spec returns the argument description.
func (w *baseWrapper) Spec() cmdspec.Spec {
	return w.spec
}

// SupportedFlags returns the flags supported by this command.
func (w *baseWrapper) SupportedFlags() []FlagInfo {
	return w.flags
}

// Run executes the wrapped utility. args[0] is the command name.
func (c *coreCommand) Run(ctx context.Context, args []string) error {
	cmd := c.newCore()
	configureCommand(ctx, cmd)

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}
	return wrapError(c.Name(), cmd.RunContext(ctx, cmdArgs...))
}

// configureCommand points a u-root command at the handler context's stdio,
// working directory and environment.
func configureCommand(ctx context.Context, cmd core.Command) {
	hc := GetHandlerContext(ctx)
	cmd.SetIO(hc.Stdin, hc.Stdout, hc.Stderr)
	cmd.SetWorkingDir(hc.Dir)
	cmd.SetLookupEnv(hc.LookupEnv)
}

// wrapError prefixes err with the command name. Returns nil if err is nil.
func wrapError(cmdName string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", cmdName, err)
}
