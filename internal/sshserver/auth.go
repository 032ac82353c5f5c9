// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"crypto/subtle"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

// authOptions returns the login methods the server accepts. There is always
// at least one: a client that offers no credentials never gets a shell.
func (s *Server) authOptions() []ssh.Option {
	var opts []ssh.Option
	if s.cfg.AuthorizedKeysPath != "" {
		opts = append(opts, wish.WithAuthorizedKeys(s.cfg.AuthorizedKeysPath))
	}
	if s.cfg.Password != "" {
		opts = append(opts, wish.WithPasswordAuth(s.passwordHandler))
	}
	return opts
}

// passwordHandler accepts the configured password for any user name.
func (s *Server) passwordHandler(ctx ssh.Context, password string) bool {
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) == 1 {
		return true
	}
	s.logger.Warn("rejected password login", "user", ctx.User(), "remote", ctx.RemoteAddr())
	return false
}

// Password returns the password clients log in with, or "" when only
// authorized keys are accepted.
func (s *Server) Password() string {
	return s.cfg.Password
}
