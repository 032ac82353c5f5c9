// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where Load looks for config.cue. The zero value
	// uses the platform config directory.
	LoadOptions struct {
		// ConfigFilePath is the --config flag; a missing file is an error.
		ConfigFilePath string
		// ConfigDirPath replaces the platform config directory.
		ConfigDirPath string
	}

	// Provider is how commands obtain the pansh configuration. Tests
	// substitute fixed configurations through it.
	Provider interface {
		// Load returns the defaults merged with the selected file, if any.
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
		// Source returns the file Load reads for opts, or "" when only
		// defaults apply.
		Source(opts LoadOptions) (string, error)
	}

	// cueProvider reads config.cue through viper and the embedded schema.
	cueProvider struct{}
)

// NewProvider returns the provider used by the pansh binary.
func NewProvider() Provider {
	return cueProvider{}
}

func (cueProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	return cfg, err
}

func (cueProvider) Source(opts LoadOptions) (string, error) {
	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	return resolveConfigFile(opts, cfgDir)
}
