// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	// ColorMode256 selects the built-in 256-colour palette.
	ColorMode256 ColorMode = "256"
	// ColorModeBasic selects the built-in 16-colour palette.
	ColorModeBasic ColorMode = "basic"

	// DefaultHistorySize is the default number of remembered lines.
	DefaultHistorySize = 1000
	// DefaultSSHHost is the default SSH listen host.
	DefaultSSHHost = "127.0.0.1"
	// DefaultSSHPort is the default SSH listen port.
	DefaultSSHPort = 2222
)

var (
	// ErrInvalidColorMode is returned when a ColorMode value is not recognized.
	ErrInvalidColorMode = errors.New("invalid color mode")
	// ErrInvalidFilePath is returned when a FilePath is set but blank.
	ErrInvalidFilePath = errors.New("invalid file path")
	// ErrInvalidHistoryConfig is the sentinel error wrapped by InvalidHistoryConfigError.
	ErrInvalidHistoryConfig = errors.New("invalid history config")
	// ErrInvalidSSHConfig is the sentinel error wrapped by InvalidSSHConfigError.
	ErrInvalidSSHConfig = errors.New("invalid ssh config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorMode chooses the built-in palette used when no palette file is set.
	ColorMode string

	// InvalidColorModeError is returned when a ColorMode value is not recognized.
	// It wraps ErrInvalidColorMode for errors.Is() compatibility.
	InvalidColorModeError struct {
		Value ColorMode
	}

	// FilePath is a filesystem path in the configuration. The zero value
	// means "use the default location".
	FilePath string

	// InvalidFilePathError is returned when a FilePath is whitespace-only.
	InvalidFilePathError struct {
		Value FilePath
	}

	// InvalidHistoryConfigError collects HistoryConfig field errors.
	InvalidHistoryConfigError struct {
		FieldErrors []error
	}

	// InvalidSSHConfigError collects SSHConfig field errors.
	InvalidSSHConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sections.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		History HistoryConfig `json:"history,omitempty" mapstructure:"history" toml:"history"`
		Palette PaletteConfig `json:"palette,omitempty" mapstructure:"palette" toml:"palette"`
		Prompt  PromptConfig  `json:"prompt,omitempty" mapstructure:"prompt" toml:"prompt"`
		Shell   ShellConfig   `json:"shell,omitempty" mapstructure:"shell" toml:"shell"`
		UI      UIConfig      `json:"ui,omitempty" mapstructure:"ui" toml:"ui"`
		SSH     SSHConfig     `json:"ssh,omitempty" mapstructure:"ssh" toml:"ssh"`
	}

	// HistoryConfig configures line history.
	HistoryConfig struct {
		// MaxSize bounds the number of remembered lines (default: 1000)
		MaxSize int `json:"max_size,omitempty" mapstructure:"max_size" toml:"max_size"`
		// File is where history is persisted between sessions
		File FilePath `json:"file,omitempty" mapstructure:"file" toml:"file"`
		// Persist enables loading and saving File (default: true)
		Persist bool `json:"persist,omitempty" mapstructure:"persist" toml:"persist"`
	}

	// PaletteConfig selects the highlighting colours.
	PaletteConfig struct {
		// File is a JSON palette loaded at startup; empty uses Mode
		File FilePath `json:"file,omitempty" mapstructure:"file" toml:"file,omitempty"`
		Mode ColorMode `json:"mode,omitempty" mapstructure:"mode" toml:"mode"`
	}

	// PromptConfig sets the identity shown in the prompt.
	PromptConfig struct {
		User string `json:"user,omitempty" mapstructure:"user" toml:"user"`
		Host string `json:"host,omitempty" mapstructure:"host" toml:"host"`
		// Home is abbreviated to "~" in the prompt path
		Home string `json:"home,omitempty" mapstructure:"home" toml:"home"`
	}

	// ShellConfig configures the command host.
	ShellConfig struct {
		// StartDir is the initial working directory; empty uses the process directory
		StartDir FilePath `json:"start_dir,omitempty" mapstructure:"start_dir" toml:"start_dir,omitempty"`
		// UrootUtils registers the u-root file utilities (default: true)
		UrootUtils bool `json:"uroot_utils,omitempty" mapstructure:"uroot_utils" toml:"uroot_utils"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging
		Verbose bool `json:"verbose,omitempty" mapstructure:"verbose" toml:"verbose"`
		// Banner prints the welcome banner on start and after clearing the screen
		Banner bool `json:"banner,omitempty" mapstructure:"banner" toml:"banner"`
	}

	// SSHConfig configures `pansh serve`.
	SSHConfig struct {
		Host    string   `json:"host,omitempty" mapstructure:"host" toml:"host"`
		Port    int      `json:"port,omitempty" mapstructure:"port" toml:"port"`
		HostKey FilePath `json:"host_key,omitempty" mapstructure:"host_key" toml:"host_key"`
		// AuthorizedKeys lists the public keys that may log in
		AuthorizedKeys FilePath `json:"authorized_keys,omitempty" mapstructure:"authorized_keys" toml:"authorized_keys,omitempty"`
		// Password is accepted for password logins; empty without
		// AuthorizedKeys means a generated one
		Password string `json:"password,omitempty" mapstructure:"password" toml:"-"`
	}
)

// String returns the string representation of the ColorMode.
func (m ColorMode) String() string { return string(m) }

// IsValid returns whether the ColorMode is one of the defined modes,
// and a list of validation errors if it is not.
func (m ColorMode) IsValid() (bool, []error) {
	switch m {
	case ColorMode256, ColorModeBasic:
		return true, nil
	default:
		return false, []error{&InvalidColorModeError{Value: m}}
	}
}

// Error implements the error interface.
func (e *InvalidColorModeError) Error() string {
	return fmt.Sprintf("invalid color mode %q (valid: 256, basic)", e.Value)
}

// Unwrap returns ErrInvalidColorMode for errors.Is() compatibility.
func (e *InvalidColorModeError) Unwrap() error { return ErrInvalidColorMode }

// String returns the string representation of the FilePath.
func (p FilePath) String() string { return string(p) }

// IsValid returns whether the FilePath is empty or holds a non-blank path.
func (p FilePath) IsValid() (bool, []error) {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidFilePathError) Error() string {
	return fmt.Sprintf("invalid file path %q: must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidFilePath for errors.Is() compatibility.
func (e *InvalidFilePathError) Unwrap() error { return ErrInvalidFilePath }

// IsValid returns whether the HistoryConfig has valid fields.
func (c HistoryConfig) IsValid() (bool, []error) {
	var errs []error
	if c.MaxSize < 1 {
		errs = append(errs, fmt.Errorf("max_size must be at least 1, got %d", c.MaxSize))
	}
	if valid, fieldErrs := c.File.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidHistoryConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidHistoryConfigError) Error() string {
	return fmt.Sprintf("invalid history config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidHistoryConfig for errors.Is() compatibility.
func (e *InvalidHistoryConfigError) Unwrap() error { return ErrInvalidHistoryConfig }

// IsValid returns whether the SSHConfig has valid fields.
func (c SSHConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Host) == "" {
		errs = append(errs, errors.New("host must not be empty"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1-65535", c.Port))
	}
	if valid, fieldErrs := c.HostKey.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.AuthorizedKeys.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidSSHConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidSSHConfigError) Error() string {
	return fmt.Sprintf("invalid ssh config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidSSHConfig for errors.Is() compatibility.
func (e *InvalidSSHConfigError) Unwrap() error { return ErrInvalidSSHConfig }

// IsValid returns whether the Config has valid fields. Prompt and UI hold
// free-form strings and booleans and are checked by the CUE schema only.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.History.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Palette.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Palette.File.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Shell.StartDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.SSH.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// SSHAddress returns host:port for the SSH server.
func (c *Config) SSHAddress() string {
	return net.JoinHostPort(c.SSH.Host, strconv.Itoa(c.SSH.Port))
}

// DefaultConfig returns the default configuration. File locations under
// the config directory are filled in when the configuration is loaded.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			MaxSize: DefaultHistorySize,
			Persist: true,
		},
		Palette: PaletteConfig{
			Mode: ColorMode256,
		},
		Prompt: PromptConfig{
			User: "root",
			Host: "panos",
			Home: "/root",
		},
		Shell: ShellConfig{
			UrootUtils: true,
		},
		UI: UIConfig{
			Banner: true,
		},
		SSH: SSHConfig{
			Host: DefaultSSHHost,
			Port: DefaultSSHPort,
		},
	}
}
