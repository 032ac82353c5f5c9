// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/invowk/pansh/internal/config"
	"github.com/invowk/pansh/internal/issue"
)

// newConfigCommand creates the `pansh config` command tree.
func newConfigCommand(app *App, root *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pansh configuration",
		Long: `Manage pansh configuration.

Configuration is stored in:
  - Linux: $XDG_CONFIG_HOME/pansh/config.cue (default ~/.config/pansh)
  - macOS: ~/Library/Application Support/pansh/config.cue
  - Windows: %APPDATA%\pansh\config.cue`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.showConfig(cmd.Context(), root, format)
		},
	}
	showCmd.Flags().StringVar(&format, "format", "text", "output format (text, toml)")
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Config.Load(cmd.Context(), root.loadOptions())
			if err != nil {
				return newServiceError(err, issue.ConfigLoadFailedId)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.showConfigPath(root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig(ctx context.Context, root *rootFlags, format string) error {
	cfg, err := a.Config.Load(ctx, root.loadOptions())
	if err != nil {
		return newServiceError(err, issue.ConfigLoadFailedId)
	}

	switch format {
	case formatTOML:
		data, err := config.MarshalTOML(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(a.stdout, string(data))
		return nil
	case "text":
	default:
		return fmt.Errorf("unknown format %q (want text or %s)", format, formatTOML)
	}

	source, err := a.Config.Source(root.loadOptions())
	if err != nil {
		return err
	}
	if source == "" {
		source = SubtitleStyle.Render("(using defaults)")
	}

	w := a.stdout
	key := func(name string) string { return CmdStyle.Render(name) }
	value := func(v any) string { return SuccessStyle.Render(fmt.Sprint(v)) }

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", key("Config file"), source)

	sections := []struct {
		name   string
		values [][2]string
	}{
		{"history", [][2]string{
			{"max_size", strconv.Itoa(cfg.History.MaxSize)},
			{"file", string(cfg.History.File)},
			{"persist", strconv.FormatBool(cfg.History.Persist)},
		}},
		{"palette", [][2]string{
			{"file", string(cfg.Palette.File)},
			{"mode", cfg.Palette.Mode.String()},
		}},
		{"prompt", [][2]string{
			{"user", cfg.Prompt.User},
			{"host", cfg.Prompt.Host},
			{"home", cfg.Prompt.Home},
		}},
		{"shell", [][2]string{
			{"start_dir", string(cfg.Shell.StartDir)},
			{"uroot_utils", strconv.FormatBool(cfg.Shell.UrootUtils)},
		}},
		{"ui", [][2]string{
			{"verbose", strconv.FormatBool(cfg.UI.Verbose)},
			{"banner", strconv.FormatBool(cfg.UI.Banner)},
		}},
		{"ssh", [][2]string{
			{"host", cfg.SSH.Host},
			{"port", strconv.Itoa(cfg.SSH.Port)},
			{"host_key", string(cfg.SSH.HostKey)},
			{"authorized_keys", string(cfg.SSH.AuthorizedKeys)},
			{"password", maskSecret(cfg.SSH.Password)},
		}},
	}
	for _, section := range sections {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s:\n", key(section.name))
		for _, kv := range section.values {
			v := value(kv[1])
			if kv[1] == "" {
				v = SubtitleStyle.Render("(default)")
			}
			fmt.Fprintf(w, "  %s: %s\n", kv[0], v)
		}
	}
	return nil
}

func (a *App) showConfigPath(root *rootFlags) error {
	if root.configPath != "" {
		fmt.Fprintf(a.stdout, "Config file: %s\n", root.configPath)
		return nil
	}

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(a.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

	source, err := a.Config.Source(root.loadOptions())
	if err != nil {
		return err
	}
	if source == "" {
		fmt.Fprintf(a.stdout, "In use: %s\n", SubtitleStyle.Render("(defaults, no file found)"))
	} else {
		fmt.Fprintf(a.stdout, "In use: %s\n", source)
	}
	return nil
}

// maskSecret hides a configured secret; "" stays "" so it shows as default.
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	return "(set)"
}
