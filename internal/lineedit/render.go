// SPDX-License-Identifier: MPL-2.0

package lineedit

import (
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/invowk/pansh/internal/highlight"
)

const (
	clearToEnd  = "\x1b[K"
	clearScreen = "\x1b[2J\x1b[H"
	flashStyle  = "\x1b[7;31m"
)

// column returns the escape sequence moving to the 1-based column col.
func column(col int) string {
	return "\x1b[" + strconv.Itoa(col) + "G"
}

// cursorColumn is the screen column of the logical cursor. Wide runes take
// two cells.
func (e *Editor) cursorColumn() int {
	return e.promptWidth + runewidth.StringWidth(e.buf.BeforeCursor()) + 1
}

// redraw repaints the whole line after the prompt.
func (e *Editor) redraw() error {
	var sb strings.Builder
	sb.WriteString(column(e.promptWidth + 1))
	sb.WriteString(clearToEnd)
	if e.buf.Len() > 0 {
		sb.WriteString(e.palette.Render(e.tokenizer.Tokenize(e.buf.String())))
	}
	sb.WriteString(highlight.Reset)
	sb.WriteString(column(e.cursorColumn()))
	return e.write(sb.String())
}

func (e *Editor) moveCursor() error {
	return e.write(column(e.cursorColumn()))
}

// flashLine shows the line in reverse red, waits, then repaints it normally.
func (e *Editor) flashLine() error {
	var sb strings.Builder
	sb.WriteString(column(e.promptWidth + 1))
	sb.WriteString(clearToEnd)
	sb.WriteString(flashStyle)
	sb.WriteString(e.buf.String())
	sb.WriteString(highlight.Reset)
	sb.WriteString(column(e.cursorColumn()))
	if err := e.write(sb.String()); err != nil {
		return err
	}
	if e.flash > 0 {
		time.Sleep(e.flash)
	}
	return e.redraw()
}

func (e *Editor) write(s string) error {
	_, err := e.src.Write([]byte(s))
	return err
}
