// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/invowk/pansh/internal/cueutil"
	"github.com/invowk/pansh/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "pansh"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// HistoryFileName is the default history file inside the config directory.
	HistoryFileName = "history"
	// HostKeyFileName is the default SSH host key inside the config directory.
	HostKeyFileName = "ssh_host_ed25519"
)

//go:embed config_schema.cue
var configSchema string

// configDirOverride replaces the platform config directory in tests, where
// os.UserHomeDir does not reliably follow HOME.
var configDirOverride string

// SetConfigDirOverride makes ConfigDir return dir. Reset undoes it.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears test overrides.
func Reset() {
	configDirOverride = ""
}

// ConfigDir returns the pansh configuration directory: %APPDATA%\pansh on
// Windows, ~/Library/Application Support/pansh on macOS and
// $XDG_CONFIG_HOME/pansh (default ~/.config/pansh) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions loads configuration without touching package state. It
// returns the file that was read, or "" when only defaults apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return nil, "", err
	}

	resolvedPath, err := resolveConfigFile(opts, cfgDir)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'pansh config dump' to see a complete valid configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fillPaths(cfgDir)

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Paths must not be blank and ssh.port must be between 1 and 65535").
			Wrap(joinFieldErrors(errs)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("history.max_size", defaults.History.MaxSize)
	v.SetDefault("history.file", defaults.History.File)
	v.SetDefault("history.persist", defaults.History.Persist)
	v.SetDefault("palette.file", defaults.Palette.File)
	v.SetDefault("palette.mode", defaults.Palette.Mode)
	v.SetDefault("prompt.user", defaults.Prompt.User)
	v.SetDefault("prompt.host", defaults.Prompt.Host)
	v.SetDefault("prompt.home", defaults.Prompt.Home)
	v.SetDefault("shell.start_dir", defaults.Shell.StartDir)
	v.SetDefault("shell.uroot_utils", defaults.Shell.UrootUtils)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.banner", defaults.UI.Banner)
	v.SetDefault("ssh.host", defaults.SSH.Host)
	v.SetDefault("ssh.port", defaults.SSH.Port)
	v.SetDefault("ssh.host_key", defaults.SSH.HostKey)
	v.SetDefault("ssh.authorized_keys", defaults.SSH.AuthorizedKeys)
	v.SetDefault("ssh.password", defaults.SSH.Password)
}

// resolveConfigFile picks the file to load: the explicit path, then
// <cfgDir>/config.cue, then ./config.cue. It returns "" when none exists.
func resolveConfigFile(opts LoadOptions, cfgDir string) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'pansh config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	name := ConfigFileName + "." + ConfigFileExt
	for _, candidate := range []string{filepath.Join(cfgDir, name), name} {
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// fillPaths points unset file locations into cfgDir.
func (c *Config) fillPaths(cfgDir string) {
	if c.History.File == "" {
		c.History.File = FilePath(filepath.Join(cfgDir, HistoryFileName))
	}
	if c.SSH.HostKey == "" {
		c.SSH.HostKey = FilePath(filepath.Join(cfgDir, HostKeyFileName))
	}
}

// joinFieldErrors reports every field error from IsValid in one error that
// still matches ErrInvalidConfig.
func joinFieldErrors(errs []error) error {
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(flatten(errs)...))
}

// flatten expands section errors into their field errors.
func flatten(errs []error) []error {
	var out []error
	for _, err := range errs {
		switch e := err.(type) {
		case *InvalidConfigError:
			out = append(out, flatten(e.FieldErrors)...)
		case *InvalidHistoryConfigError:
			out = append(out, flatten(e.FieldErrors)...)
		case *InvalidSSHConfigError:
			out = append(out, flatten(e.FieldErrors)...)
		default:
			out = append(out, err)
		}
	}
	return out
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper validates the CUE file at path against #Config and merges
// its values into v. Fields are optional, so the document is decoded to a
// map without requiring concrete values for absent fields.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	res, err := cueutil.ParseAndDecodeString[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*res.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(cfgDir, 0o755)
}

// CreateDefaultConfig writes a default config file to the config directory
// unless one exists. It returns the file path.
func CreateDefaultConfig() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE renders cfg as a config.cue document. File locations that
// match the defaults derived from the config directory may be empty; empty
// paths are left out.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// pansh configuration file\n\n")

	sb.WriteString("history: {\n")
	fmt.Fprintf(&sb, "\tmax_size: %d\n", cfg.History.MaxSize)
	writeOptionalPath(&sb, "\t", "file", cfg.History.File)
	fmt.Fprintf(&sb, "\tpersist: %v\n", cfg.History.Persist)
	sb.WriteString("}\n")

	sb.WriteString("\npalette: {\n")
	writeOptionalPath(&sb, "\t", "file", cfg.Palette.File)
	fmt.Fprintf(&sb, "\tmode: %q\n", cfg.Palette.Mode)
	sb.WriteString("}\n")

	sb.WriteString("\nprompt: {\n")
	fmt.Fprintf(&sb, "\tuser: %q\n", cfg.Prompt.User)
	fmt.Fprintf(&sb, "\thost: %q\n", cfg.Prompt.Host)
	fmt.Fprintf(&sb, "\thome: %q\n", cfg.Prompt.Home)
	sb.WriteString("}\n")

	sb.WriteString("\nshell: {\n")
	writeOptionalPath(&sb, "\t", "start_dir", cfg.Shell.StartDir)
	fmt.Fprintf(&sb, "\turoot_utils: %v\n", cfg.Shell.UrootUtils)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tbanner: %v\n", cfg.UI.Banner)
	sb.WriteString("}\n")

	sb.WriteString("\nssh: {\n")
	fmt.Fprintf(&sb, "\thost: %q\n", cfg.SSH.Host)
	fmt.Fprintf(&sb, "\tport: %d\n", cfg.SSH.Port)
	writeOptionalPath(&sb, "\t", "host_key", cfg.SSH.HostKey)
	writeOptionalPath(&sb, "\t", "authorized_keys", cfg.SSH.AuthorizedKeys)
	sb.WriteString("}\n")

	return sb.String()
}

func writeOptionalPath(sb *strings.Builder, indent, key string, p FilePath) {
	if p == "" {
		return
	}
	fmt.Fprintf(sb, "%s%s: %q\n", indent, key, string(p))
}
