// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"

	"github.com/invowk/pansh/internal/shell"
	"github.com/invowk/pansh/internal/terminal"
)

// sessionMiddleware runs a shell for the session. A session that carries a
// command runs just that line; otherwise the client must have a PTY.
func (s *Server) sessionMiddleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		interactive := activeterm.Middleware()(s.runInteractive)
		return func(sess ssh.Session) {
			if sess.RawCommand() != "" {
				s.runCommand(sess)
			} else {
				interactive(sess)
			}
			next(sess)
		}
	}
}

// runInteractive runs the line editor loop on the client's PTY.
func (s *Server) runInteractive(sess ssh.Session) {
	term := terminal.New(sess, sess, terminal.WithCRLF(), terminal.WithLogger(s.sessionLogger(sess)))
	defer func() { _ = term.Close() }()

	sh, err := s.newShell(sess, term)
	if err != nil {
		s.fail(sess, err)
		return
	}
	defer s.closeShell(sess, sh)

	status, err := sh.Run(sess.Context())
	if err != nil {
		s.sessionLogger(sess).Debug("session ended", "error", err)
	}
	_ = sess.Exit(status) //nolint:errcheck // Client may already be gone
}

// runCommand executes the session's command as one shell line.
func (s *Server) runCommand(sess ssh.Session) {
	term := terminal.New(sess, sess)
	defer func() { _ = term.Close() }()

	sh, err := s.newShell(sess, term, shell.WithBanner(false), shell.WithStderr(sess.Stderr()))
	if err != nil {
		s.fail(sess, err)
		return
	}
	defer s.closeShell(sess, sh)

	status := sh.Execute(sess.Context(), sess.RawCommand())
	_ = sess.Exit(status) //nolint:errcheck // Client may already be gone
}

func (s *Server) newShell(sess ssh.Session, term *terminal.Terminal, extra ...shell.Option) (*shell.Shell, error) {
	opts := append([]shell.Option{shell.WithLogger(s.sessionLogger(sess))}, s.cfg.Session(sess)...)
	return shell.New(term, append(opts, extra...)...)
}

func (s *Server) closeShell(sess ssh.Session, sh *shell.Shell) {
	if err := sh.Close(); err != nil {
		s.sessionLogger(sess).Warn("failed to close shell", "error", err)
	}
}

func (s *Server) fail(sess ssh.Session, err error) {
	s.sessionLogger(sess).Error("failed to start shell", "error", err)
	wish.Errorln(sess, fmt.Sprintf("pansh: %v", err))
	_ = sess.Exit(1) //nolint:errcheck // Client may already be gone
}

func (s *Server) sessionLogger(sess ssh.Session) *log.Logger {
	return s.logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())
}
