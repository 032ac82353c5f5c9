// SPDX-License-Identifier: MPL-2.0

package highlight

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/afero"
)

// Reset clears all SGR attributes.
const Reset = "\x1b[0m"

// basic ANSI attributes used by the fallback colours.
const (
	ansiBold          = "\x1b[1m"
	ansiUnderline     = "\x1b[4m"
	ansiRed           = "\x1b[31m"
	ansiGreen         = "\x1b[32m"
	ansiYellow        = "\x1b[33m"
	ansiCyan          = "\x1b[36m"
	ansiWhite         = "\x1b[37m"
	ansiBrightBlack   = "\x1b[90m"
	ansiBrightGreen   = "\x1b[92m"
	ansiBrightYellow  = "\x1b[93m"
	ansiBrightBlue    = "\x1b[94m"
	ansiBrightMagenta = "\x1b[95m"
	ansiBrightCyan    = "\x1b[96m"
	ansiBrightWhite   = "\x1b[97m"
)

var basicColors = map[TokenKind]string{
	KindDefault:         ansiWhite,
	KindCommand:         ansiBrightCyan,
	KindValidCommand:    ansiBrightCyan,
	KindInvalidCommand:  ansiRed + ansiUnderline,
	KindArgument:        ansiWhite,
	KindFlag:            ansiBrightYellow,
	KindString:          ansiBrightGreen,
	KindPath:            ansiBrightBlue,
	KindInvalidPath:     ansiRed + ansiUnderline,
	KindNumber:          ansiBrightMagenta,
	KindPipe:            ansiBrightWhite + ansiBold,
	KindRedirect:        ansiBrightWhite + ansiBold,
	KindVariable:        ansiCyan,
	KindComment:         ansiBrightBlack,
	KindError:           ansiRed + ansiBold,
	KindWarning:         ansiYellow + ansiBold,
	KindSuccess:         ansiGreen + ansiBold,
	KindPromptUser:      ansiBrightGreen,
	KindPromptHost:      ansiBrightGreen,
	KindPromptSeparator: ansiWhite,
	KindPromptPath:      ansiBrightBlue,
	KindPromptSymbol:    ansiWhite,
}

// darkColors is the 256-colour theme for dark backgrounds.
var darkColors = map[TokenKind]string{
	KindDefault:         fg256(252),
	KindCommand:         fg256(117),
	KindValidCommand:    fg256(117),
	KindInvalidCommand:  fg256(196) + ansiUnderline,
	KindArgument:        fg256(188),
	KindFlag:            fg256(222),
	KindString:          fg256(150),
	KindPath:            fg256(111),
	KindInvalidPath:     fg256(196) + ansiUnderline,
	KindNumber:          fg256(183),
	KindPipe:            fg256(255) + ansiBold,
	KindRedirect:        fg256(255) + ansiBold,
	KindVariable:        fg256(152),
	KindComment:         fg256(245),
	KindError:           fg256(196) + ansiBold,
	KindWarning:         fg256(226) + ansiBold,
	KindSuccess:         fg256(46) + ansiBold,
	KindPromptUser:      fg256(114),
	KindPromptHost:      fg256(114),
	KindPromptSeparator: fg256(250),
	KindPromptPath:      fg256(111),
	KindPromptSymbol:    fg256(250),
}

type (
	// Palette maps token kinds to SGR sequences. Kinds without an explicit
	// entry use the basic 16-colour default. A Palette is not safe for
	// concurrent mutation.
	Palette struct {
		colors map[TokenKind]string
	}

	// paletteFile is the on-disk JSON shape.
	paletteFile struct {
		Colors map[string]string `json:"colors"`
	}
)

// DefaultPalette returns the 256-colour dark theme.
func DefaultPalette() *Palette {
	return &Palette{colors: maps.Clone(darkColors)}
}

// BasicPalette returns a palette with no overrides, which renders every
// kind in its 16-colour default.
func BasicPalette() *Palette {
	return &Palette{colors: make(map[TokenKind]string)}
}

// DefaultColor returns the built-in fallback for k.
func DefaultColor(k TokenKind) string {
	if c, ok := basicColors[k]; ok {
		return c
	}
	return ansiWhite
}

// Color returns the SGR sequence for k.
func (p *Palette) Color(k TokenKind) string {
	if c, ok := p.colors[k]; ok {
		return c
	}
	return DefaultColor(k)
}

// SetColor overrides the sequence for k.
func (p *Palette) SetColor(k TokenKind, code string) error {
	if ok, errs := k.IsValid(); !ok {
		return errs[0]
	}
	p.colors[k] = code
	return nil
}

// Unset removes the override for k so the default applies again.
func (p *Palette) Unset(k TokenKind) {
	delete(p.colors, k)
}

// CopyFrom replaces p's colours with those of other.
func (p *Palette) CopyFrom(other *Palette) {
	p.colors = maps.Clone(other.colors)
}

// Clone returns an independent copy.
func (p *Palette) Clone() *Palette {
	return &Palette{colors: maps.Clone(p.colors)}
}

// Colorize wraps text in the colour for k.
func (p *Palette) Colorize(text string, k TokenKind) string {
	return p.Color(k) + text + Reset
}

// Render colours each token and concatenates the result.
func (p *Palette) Render(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(p.Color(tok.Kind))
		sb.WriteString(tok.Text)
		sb.WriteString(Reset)
	}
	return sb.String()
}

// MarshalJSON writes every kind, including defaults, so a saved file is a
// complete theme.
func (p *Palette) MarshalJSON() ([]byte, error) {
	f := paletteFile{Colors: make(map[string]string, len(allKinds))}
	for _, k := range allKinds {
		f.Colors[string(k)] = p.Color(k)
	}
	return json.Marshal(f)
}

// UnmarshalJSON reads the colours map. Unknown keys are ignored.
func (p *Palette) UnmarshalJSON(data []byte) error {
	var f paletteFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Colors == nil {
		return fmt.Errorf("palette: missing %q object", "colors")
	}
	colors := make(map[TokenKind]string, len(f.Colors))
	for name, code := range f.Colors {
		k, err := ParseTokenKind(name)
		if err != nil {
			continue
		}
		colors[k] = code
	}
	p.colors = colors
	return nil
}

// LoadPalette reads a palette file. Any failure yields nil, false and the
// caller keeps its current palette.
func LoadPalette(fs afero.Fs, path string) (*Palette, bool) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, false
	}
	p := BasicPalette()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, false
	}
	return p, true
}

// Save writes the palette as JSON.
func (p *Palette) Save(fs afero.Fs, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode palette: %w", err)
	}
	if err := afero.WriteFile(fs, path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write palette: %w", err)
	}
	return nil
}

func fg256(n int) string {
	return fmt.Sprintf("\x1b[38;5;%dm", n)
}
