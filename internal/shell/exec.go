// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

const (
	// ExitUsage is the status of a line that does not parse.
	ExitUsage = 2
	// ExitNotFound is the status of an unknown command.
	ExitNotFound = 127
)

// Execute runs one line and returns its exit status. Blank lines leave the
// last status unchanged.
func (s *Shell) Execute(ctx context.Context, line string) int {
	if strings.TrimSpace(line) == "" {
		return s.context.LastExit
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		fmt.Fprintf(s.stderr, "pansh: %v\n", err)
		s.context.LastExit = ExitUsage
		return ExitUsage
	}

	if err := s.term.Suspend(); err != nil {
		s.logger.Warn("failed to suspend terminal", "err", err)
	}
	err = s.runner.Run(ctx, file)
	if rerr := s.term.Resume(); rerr != nil {
		s.logger.Warn("failed to resume terminal", "err", rerr)
	}

	status := 0
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			status = int(exitStatus)
		} else {
			fmt.Fprintf(s.stderr, "pansh: %v\n", err)
			status = 1
		}
	}

	s.context.LastExit = status
	s.context.Cwd = s.runner.Dir
	s.logger.Debug("executed", "line", line, "status", status, "dir", s.context.Cwd)
	return status
}

// callHandler lower-cases registered command names so that lookup is
// case-insensitive for interpreter builtins as well as registry commands.
func (s *Shell) callHandler(_ context.Context, args []string) ([]string, error) {
	if len(args) == 0 {
		return args, nil
	}
	if lower := strings.ToLower(args[0]); lower != args[0] && s.registry.Exists(lower) {
		args[0] = lower
	}
	return args, nil
}

// execHandler runs commands the interpreter does not implement itself. No
// external programs are started: anything not registered is not found.
func (s *Shell) execHandler(_ interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		hc := interp.HandlerCtx(ctx)

		cmd, ok := s.registry.Lookup(args[0])
		if !ok {
			fmt.Fprintf(hc.Stderr, "%s: command not found\n", args[0])
			return interp.ExitStatus(ExitNotFound)
		}

		err := cmd.Run(ctx, args)
		if err == nil {
			return nil
		}
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return exitStatus
		}
		fmt.Fprintln(hc.Stderr, err)
		return interp.ExitStatus(1)
	}
}
