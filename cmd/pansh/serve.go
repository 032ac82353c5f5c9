// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/ssh"
	"github.com/spf13/cobra"

	"github.com/invowk/pansh/internal/config"
	"github.com/invowk/pansh/internal/issue"
	"github.com/invowk/pansh/internal/shell"
	"github.com/invowk/pansh/internal/sshserver"
)

type serveFlags struct {
	host           string
	port           int
	hostKey        string
	authorizedKeys string
}

func newServeCommand(app *App, root *rootFlags) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shell over SSH",
		Long: `Serve the shell over SSH.

Every connection gets its own shell. Interactive sessions need a PTY
(ssh -t); a session that sends a command runs that line and exits.
History is not persisted for SSH sessions.

Clients log in with a key listed in ssh.authorized_keys or with
ssh.password. When neither is configured a password is generated and
printed at startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.loadConfig(cmd.Context(), root)
			if cmd.Flags().Changed("host") {
				cfg.SSH.Host = flags.host
			}
			if cmd.Flags().Changed("port") {
				cfg.SSH.Port = flags.port
			}
			if cmd.Flags().Changed("host-key") {
				cfg.SSH.HostKey = config.FilePath(flags.hostKey)
			}
			if cmd.Flags().Changed("authorized-keys") {
				cfg.SSH.AuthorizedKeys = config.FilePath(flags.authorizedKeys)
			}
			return app.serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", config.DefaultSSHHost, "address to listen on")
	cmd.Flags().IntVar(&flags.port, "port", config.DefaultSSHPort, "port to listen on (0 picks a free port)")
	cmd.Flags().StringVar(&flags.hostKey, "host-key", "", "host key file, generated when missing")
	cmd.Flags().StringVar(&flags.authorizedKeys, "authorized-keys", "", "authorized_keys file of the public keys that may log in")
	return cmd
}

// serve runs the SSH server until ctx is cancelled or the server fails.
func (a *App) serve(ctx context.Context, cfg *config.Config) error {
	hostKey := string(cfg.SSH.HostKey)
	if hostKey != "" {
		dir := filepath.Dir(hostKey)
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return newServiceError(issue.WrapWithContext(err, "create host key directory", dir), issue.HostKeyUnavailableId)
		}
	}

	sessionCfg := *cfg
	sessionCfg.History.Persist = false
	if _, err := shell.ConfigPalette(&sessionCfg, a.Fs); err != nil {
		a.warn(err, issue.PaletteLoadFailedId)
	}

	shellLogger := a.newLogger("shell")
	srv := sshserver.New(sshserver.Config{
		Host:               cfg.SSH.Host,
		Port:               cfg.SSH.Port,
		HostKeyPath:        hostKey,
		AuthorizedKeysPath: string(cfg.SSH.AuthorizedKeys),
		Password:           cfg.SSH.Password,
		Logger:             a.newLogger("ssh-server"),
		Session: func(sess ssh.Session) []shell.Option {
			// Palette errors were reported once at startup.
			opts, _ := shell.ConfigOptions(&sessionCfg, a.Fs) //nolint:errcheck // Falls back to the built-in palette
			return append(opts,
				shell.WithPrompt(sess.User(), sessionCfg.Prompt.Host, sessionCfg.Prompt.Home),
				shell.WithLogger(shellLogger.With("user", sess.User())),
			)
		},
	})

	if err := srv.Start(ctx); err != nil {
		return newServiceError(err, issue.SSHServeFailedId)
	}
	fmt.Fprintf(a.stdout, "%s %s\n", SuccessStyle.Render("Serving pansh on"), CmdStyle.Render("ssh://"+srv.Address()))
	if cfg.SSH.Password == "" && srv.Password() != "" {
		fmt.Fprintf(a.stdout, "%s %s\n", SubtitleStyle.Render("Session password:"), CmdStyle.Render(srv.Password()))
	}

	select {
	case <-ctx.Done():
		return srv.Stop()
	case err, ok := <-srv.Err():
		_ = srv.Stop() //nolint:errcheck // The serve error is what matters
		if ok && err != nil {
			return newServiceError(err, issue.SSHServeFailedId)
		}
		return nil
	}
}
