// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/invowk/pansh/internal/highlight"
	"github.com/invowk/pansh/internal/issue"
	"github.com/invowk/pansh/internal/shell"
)

const (
	formatJSON = "json"
	formatTOML = "toml"
)

// paletteDocument is the TOML shape of a palette; it mirrors the JSON file.
type paletteDocument struct {
	Colors map[string]string `toml:"colors"`
}

func newPaletteCommand(app *App, root *rootFlags) *cobra.Command {
	paletteCmd := &cobra.Command{
		Use:   "palette",
		Short: "Inspect the highlighting palette",
		Long: `Inspect the highlighting palette selected by the configuration.

The palette is palette.file when it is set and readable, otherwise the
built-in theme for palette.mode. Inside the shell, the palette builtin
changes colours for the running session.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	paletteCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show every token kind in its colour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := app.loadPalette(cmd, root)
			fmt.Fprintln(app.stdout, renderPaletteTable(p))
			return nil
		},
	})

	var format string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print the palette as a palette file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := app.loadPalette(cmd, root)
			out, err := exportPalette(p, format)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&format, "format", formatJSON, "output format (json, toml)")
	paletteCmd.AddCommand(exportCmd)

	return paletteCmd
}

func (a *App) loadPalette(cmd *cobra.Command, root *rootFlags) *highlight.Palette {
	cfg := a.loadConfig(cmd.Context(), root)
	p, err := shell.ConfigPalette(cfg, a.Fs)
	if err != nil {
		a.warn(err, issue.PaletteLoadFailedId)
	}
	return p
}

func renderPaletteTable(p *highlight.Palette) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtitleStyle).
		Headers("KIND", "SAMPLE", "CODE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	for _, k := range highlight.Kinds() {
		code := p.Color(k)
		t.Row(k.String(), p.Colorize("Sample "+k.String()+" text", k), escapeCode(code))
	}
	return t.Render()
}

// escapeCode shows an escape sequence the way it is written in a palette file.
func escapeCode(code string) string {
	quoted := strconv.QuoteToASCII(code)
	return strings.ReplaceAll(quoted[1:len(quoted)-1], `\x1b`, `\e`)
}

func exportPalette(p *highlight.Palette, format string) (string, error) {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode palette: %w", err)
		}
		return string(data) + "\n", nil
	case formatTOML:
		doc := paletteDocument{Colors: make(map[string]string, len(highlight.Kinds()))}
		for _, k := range highlight.Kinds() {
			doc.Colors[k.String()] = p.Color(k)
		}
		data, err := toml.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("failed to encode palette as TOML: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown format %q (want %s or %s)", format, formatJSON, formatTOML)
	}
}
