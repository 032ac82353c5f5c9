// SPDX-License-Identifier: MPL-2.0

// Package config loads pansh settings with Viper from a CUE file.
//
// The file is config.cue in the config directory ($XDG_CONFIG_HOME/pansh on
// Linux, ~/Library/Application Support/pansh on macOS, %APPDATA%\pansh on
// Windows), or ./config.cue, or the path given with --config. It is
// validated against the embedded config_schema.cue before its values are
// merged over the built-in defaults. Every key is optional.
package config
