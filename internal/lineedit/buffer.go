// SPDX-License-Identifier: MPL-2.0

package lineedit

import "unicode"

// Buffer is an editable line with a cursor. The cursor counts runes and
// always satisfies 0 <= cursor <= Len().
type Buffer struct {
	text   []rune
	cursor int
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// String returns the current text.
func (b *Buffer) String() string {
	return string(b.text)
}

// Cursor returns the cursor position.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Len returns the number of runes in the buffer.
func (b *Buffer) Len() int {
	return len(b.text)
}

// SetCursor moves the cursor, clamping to the valid range.
func (b *Buffer) SetCursor(pos int) {
	b.cursor = max(0, min(pos, len(b.text)))
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.text = b.text[:0]
	b.cursor = 0
}

// Set replaces the text and moves the cursor to the end.
func (b *Buffer) Set(text string) {
	b.text = append(b.text[:0], []rune(text)...)
	b.cursor = len(b.text)
}

// Replace replaces the text and places the cursor at pos.
func (b *Buffer) Replace(text string, pos int) {
	b.text = append(b.text[:0], []rune(text)...)
	b.SetCursor(pos)
}

// BeforeCursor returns the text left of the cursor.
func (b *Buffer) BeforeCursor() string {
	return string(b.text[:b.cursor])
}

// InsertChar inserts r at the cursor and advances past it.
func (b *Buffer) InsertChar(r rune) {
	b.text = append(b.text, 0)
	copy(b.text[b.cursor+1:], b.text[b.cursor:])
	b.text[b.cursor] = r
	b.cursor++
}

// DeleteAtCursor removes the rune under the cursor.
// Returns true if a rune was removed.
func (b *Buffer) DeleteAtCursor() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.text = append(b.text[:b.cursor], b.text[b.cursor+1:]...)
	return true
}

// Backspace removes the rune before the cursor.
// Returns true if a rune was removed.
func (b *Buffer) Backspace() bool {
	if b.cursor == 0 {
		return false
	}
	b.text = append(b.text[:b.cursor-1], b.text[b.cursor:]...)
	b.cursor--
	return true
}

// Left moves the cursor one rune left.
func (b *Buffer) Left() bool {
	if b.cursor == 0 {
		return false
	}
	b.cursor--
	return true
}

// Right moves the cursor one rune right.
func (b *Buffer) Right() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.cursor++
	return true
}

// Home moves the cursor to the start of the line.
func (b *Buffer) Home() {
	b.cursor = 0
}

// End moves the cursor to the end of the line.
func (b *Buffer) End() {
	b.cursor = len(b.text)
}

// MoveWordLeft moves to the start of the word left of the cursor.
func (b *Buffer) MoveWordLeft() bool {
	pos := b.wordStartLeft()
	moved := pos != b.cursor
	b.cursor = pos
	return moved
}

// MoveWordRight moves past the current word and the whitespace after it.
func (b *Buffer) MoveWordRight() bool {
	i := b.cursor
	for i < len(b.text) && !unicode.IsSpace(b.text[i]) {
		i++
	}
	for i < len(b.text) && unicode.IsSpace(b.text[i]) {
		i++
	}
	moved := i != b.cursor
	b.cursor = i
	return moved
}

// KillToStart removes everything left of the cursor.
func (b *Buffer) KillToStart() bool {
	if b.cursor == 0 {
		return false
	}
	b.text = append(b.text[:0], b.text[b.cursor:]...)
	b.cursor = 0
	return true
}

// KillToEnd removes everything from the cursor to the end.
func (b *Buffer) KillToEnd() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.text = b.text[:b.cursor]
	return true
}

// DeleteWordBackward removes the span MoveWordLeft would move across.
func (b *Buffer) DeleteWordBackward() bool {
	start := b.wordStartLeft()
	if start == b.cursor {
		return false
	}
	b.text = append(b.text[:start], b.text[b.cursor:]...)
	b.cursor = start
	return true
}

// wordStartLeft skips whitespace left of the cursor, then the word before it.
func (b *Buffer) wordStartLeft() int {
	if b.cursor == 0 {
		return 0
	}
	i := b.cursor - 1
	for i > 0 && unicode.IsSpace(b.text[i]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(b.text[i-1]) {
		i--
	}
	return i
}
