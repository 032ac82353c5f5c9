// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"github.com/spf13/afero"

	"github.com/invowk/pansh/internal/config"
	"github.com/invowk/pansh/internal/highlight"
	"github.com/invowk/pansh/internal/issue"
)

// ConfigPalette returns the palette cfg selects. A palette file that cannot
// be loaded is reported in the returned error together with the built-in
// palette for cfg.Palette.Mode, so the caller may warn and carry on.
func ConfigPalette(cfg *config.Config, fsys afero.Fs) (*highlight.Palette, error) {
	if cfg.Palette.File == "" {
		return builtinPalette(cfg.Palette.Mode), nil
	}
	if loaded, ok := highlight.LoadPalette(fsys, string(cfg.Palette.File)); ok {
		return loaded, nil
	}
	return builtinPalette(cfg.Palette.Mode), issue.NewErrorContext().
		WithOperation("load palette").
		WithResource(string(cfg.Palette.File)).
		WithSuggestion("Check that the file exists and contains a JSON object with a \"colors\" map").
		WithSuggestion("Run 'pansh palette export' to see a valid palette file").
		Wrap(errPaletteUnreadable).
		BuildError()
}

// ConfigOptions translates cfg into shell options. Errors are those of
// ConfigPalette; the options are usable either way.
func ConfigOptions(cfg *config.Config, fsys afero.Fs) ([]Option, error) {
	palette, err := ConfigPalette(cfg, fsys)

	history := WithHistorySize(cfg.History.MaxSize)
	if cfg.History.Persist {
		history = WithHistoryFile(string(cfg.History.File), cfg.History.MaxSize)
	}

	opts := []Option{
		WithPrompt(cfg.Prompt.User, cfg.Prompt.Host, cfg.Prompt.Home),
		WithStartDir(string(cfg.Shell.StartDir)),
		history,
		WithPalette(palette),
		WithBanner(cfg.UI.Banner),
		WithUrootUtils(cfg.Shell.UrootUtils),
	}
	return opts, err
}

// builtinPalette returns the palette for a colour mode.
func builtinPalette(mode config.ColorMode) *highlight.Palette {
	if mode == config.ColorModeBasic {
		return highlight.BasicPalette()
	}
	return highlight.DefaultPalette()
}
