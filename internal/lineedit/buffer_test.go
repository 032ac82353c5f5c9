// SPDX-License-Identifier: MPL-2.0

package lineedit

import "testing"

func bufferAt(text string, cursor int) *Buffer {
	b := NewBuffer()
	b.Replace(text, cursor)
	return b
}

func checkBuffer(t *testing.T, b *Buffer, wantText string, wantCursor int) {
	t.Helper()
	if got := b.String(); got != wantText {
		t.Errorf("text = %q, want %q", got, wantText)
	}
	if got := b.Cursor(); got != wantCursor {
		t.Errorf("cursor = %d, want %d", got, wantCursor)
	}
	if b.Cursor() < 0 || b.Cursor() > b.Len() {
		t.Errorf("cursor %d outside [0, %d]", b.Cursor(), b.Len())
	}
}

func TestBuffer_InsertChar(t *testing.T) {
	t.Parallel()

	b := NewBuffer()
	for _, r := range "hllo" {
		b.InsertChar(r)
	}
	b.SetCursor(1)
	b.InsertChar('e')
	checkBuffer(t, b, "hello", 2)

	b.End()
	b.InsertChar('✓')
	checkBuffer(t, b, "hello✓", 6)
}

func TestBuffer_Backspace(t *testing.T) {
	t.Parallel()

	b := NewBuffer()
	for _, r := range "abc" {
		b.InsertChar(r)
	}
	if !b.Backspace() {
		t.Fatal("Backspace() = false at end of non-empty buffer")
	}
	checkBuffer(t, b, "ab", 2)

	b.Home()
	if b.Backspace() {
		t.Error("Backspace() = true at start of line")
	}
	checkBuffer(t, b, "ab", 0)
}

func TestBuffer_DeleteAtCursor(t *testing.T) {
	t.Parallel()

	b := bufferAt("abc", 1)
	if !b.DeleteAtCursor() {
		t.Fatal("DeleteAtCursor() = false inside text")
	}
	checkBuffer(t, b, "ac", 1)

	b.End()
	if b.DeleteAtCursor() {
		t.Error("DeleteAtCursor() = true at end of line")
	}
	checkBuffer(t, b, "ac", 2)
}

func TestBuffer_CursorMotion(t *testing.T) {
	t.Parallel()

	b := bufferAt("ab", 0)
	if b.Left() {
		t.Error("Left() = true at start")
	}
	if !b.Right() || !b.Right() {
		t.Error("Right() = false inside text")
	}
	if b.Right() {
		t.Error("Right() = true at end")
	}
	checkBuffer(t, b, "ab", 2)

	b.SetCursor(-4)
	checkBuffer(t, b, "ab", 0)
	b.SetCursor(40)
	checkBuffer(t, b, "ab", 2)
}

func TestBuffer_WordMotion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		cursor int
		left   int
		right  int
	}{
		{"end of line", "cat foo  bar", 12, 9, 12},
		{"after trailing spaces", "cat foo  ", 9, 4, 9},
		{"middle of word", "cat foo", 5, 4, 7},
		{"start of word", "cat foo bar", 4, 0, 8},
		{"start of line", "cat", 0, 0, 3},
		{"only spaces", "   ", 3, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := bufferAt(tt.text, tt.cursor)
			b.MoveWordLeft()
			checkBuffer(t, b, tt.text, tt.left)

			b = bufferAt(tt.text, tt.cursor)
			b.MoveWordRight()
			checkBuffer(t, b, tt.text, tt.right)
		})
	}
}

func TestBuffer_DeleteWordBackward(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text       string
		cursor     int
		wantText   string
		wantCursor int
		changed    bool
	}{
		{"cat foo bar", 11, "cat foo ", 8, true},
		{"cat foo  ", 9, "cat ", 4, true},
		{"cat foo bar", 6, "cat o bar", 4, true},
		{"cat", 0, "cat", 0, false},
	}
	for _, tt := range tests {
		b := bufferAt(tt.text, tt.cursor)
		if got := b.DeleteWordBackward(); got != tt.changed {
			t.Errorf("DeleteWordBackward(%q@%d) = %v, want %v", tt.text, tt.cursor, got, tt.changed)
		}
		checkBuffer(t, b, tt.wantText, tt.wantCursor)
	}
}

func TestBuffer_Kill(t *testing.T) {
	t.Parallel()

	b := bufferAt("echo hello", 5)
	if !b.KillToEnd() {
		t.Fatal("KillToEnd() = false with text after cursor")
	}
	checkBuffer(t, b, "echo ", 5)
	if b.KillToEnd() {
		t.Error("KillToEnd() = true at end of line")
	}

	b = bufferAt("echo hello", 5)
	if !b.KillToStart() {
		t.Fatal("KillToStart() = false with text before cursor")
	}
	checkBuffer(t, b, "hello", 0)
	if b.KillToStart() {
		t.Error("KillToStart() = true at start of line")
	}
}

func TestBuffer_SetAndClear(t *testing.T) {
	t.Parallel()

	b := NewBuffer()
	b.Set("héllo")
	checkBuffer(t, b, "héllo", 5)
	if got := b.BeforeCursor(); got != "héllo" {
		t.Errorf("BeforeCursor() = %q", got)
	}

	b.SetCursor(2)
	if got := b.BeforeCursor(); got != "hé" {
		t.Errorf("BeforeCursor() = %q, want %q", got, "hé")
	}

	b.Clear()
	checkBuffer(t, b, "", 0)
}
