// SPDX-License-Identifier: MPL-2.0

package lineedit

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invowk/pansh/internal/completion"
	"github.com/invowk/pansh/internal/highlight"
	"github.com/invowk/pansh/pkg/fspath"
)

const (
	keyUp        = "\x1b[A"
	keyDown      = "\x1b[B"
	keyLeft      = "\x1b[D"
	keyHome      = "\x1b[H"
	keyDelete    = "\x1b[3~"
	keyWordLeft  = "\x1b[1;5D"
	keyCtrlA     = "\x01"
	keyCtrlC     = "\x03"
	keyCtrlD     = "\x04"
	keyCtrlK     = "\x0b"
	keyCtrlL     = "\x0c"
	keyCtrlU     = "\x15"
	keyCtrlW     = "\x17"
	keyBackspace = "\x7f"
	keyTab       = "\t"
	keyEnter     = "\r"
)

// scriptSource replays queued bytes and records everything written.
type scriptSource struct {
	in  []byte
	out bytes.Buffer
}

func (s *scriptSource) queue(parts ...string) {
	for _, p := range parts {
		s.in = append(s.in, p...)
	}
}

func (s *scriptSource) NextByte() (byte, bool) {
	if len(s.in) == 0 {
		return 0, false
	}
	b := s.in[0]
	s.in = s.in[1:]
	return b, true
}

func (s *scriptSource) InputAvailable() bool {
	return len(s.in) > 0
}

func (s *scriptSource) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func newTestEditor(opts ...Option) (*Editor, *scriptSource) {
	src := &scriptSource{}
	return NewEditor(src, append([]Option{WithFlashDuration(0)}, opts...)...), src
}

func readAccepted(t *testing.T, e *Editor) string {
	t.Helper()
	res, err := e.ReadLine(0)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, res.Status, "line was not accepted")
	return res.Line
}

func TestReadLine_PlainText(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"hello", "", "ls -la /tmp", "héllo wörld", "日本語"} {
		e, src := newTestEditor()
		src.queue(text, keyEnter)
		assert.Equal(t, text, readAccepted(t, e))
	}
}

func TestReadLine_LineFeedAccepts(t *testing.T) {
	t.Parallel()

	e, src := newTestEditor()
	src.queue("hello\n")
	assert.Equal(t, "hello", readAccepted(t, e))
}

func TestReadLine_CtrlC(t *testing.T) {
	t.Parallel()

	e, src := newTestEditor()
	src.queue("partial", keyCtrlC)

	res, err := e.ReadLine(0)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.False(t, res.EndOfInput)
	assert.Contains(t, src.out.String(), "^C\r\n")
	assert.Equal(t, 0, e.History().Len())
}

func TestReadLine_CtrlD(t *testing.T) {
	t.Parallel()

	t.Run("empty line cancels", func(t *testing.T) {
		t.Parallel()

		e, src := newTestEditor()
		src.queue(keyCtrlD, "ignored", keyEnter)

		res, err := e.ReadLine(0)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, res.Status)
		assert.True(t, res.EndOfInput)
	})

	t.Run("non-empty line deletes at cursor", func(t *testing.T) {
		t.Parallel()

		e, src := newTestEditor()
		src.queue("ab", keyLeft, keyCtrlD, keyEnter)
		assert.Equal(t, "a", readAccepted(t, e))
	})
}

func TestReadLine_ExhaustedSource(t *testing.T) {
	t.Parallel()

	e, src := newTestEditor()
	res, err := e.ReadLine(0)
	require.ErrorIs(t, err, ErrInputClosed)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.True(t, res.EndOfInput)

	src.queue("abc", keyHome)
	res, err = e.ReadLine(0)
	require.ErrorIs(t, err, ErrInputClosed)
	assert.Equal(t, StatusCancelled, res.Status)
}

func TestReadLine_Editing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{"backspace", []string{"hell", keyBackspace, "p"}, "help"},
		{"backspace at start", []string{keyBackspace, "x"}, "x"},
		{"left arrow inserts mid-line", []string{"ab", keyLeft, "c"}, "acb"},
		{"home then delete", []string{"abc", keyHome, keyDelete}, "bc"},
		{"ctrl-a inserts at start", []string{"bc", keyCtrlA, "a"}, "abc"},
		{"kill to end", []string{"echo hello", keyHome, keyCtrlK, "pwd"}, "pwd"},
		{"kill to start", []string{"echo hello", keyCtrlU}, ""},
		{"delete word back", []string{"echo hello world", keyCtrlW}, "echo hello "},
		{"word left", []string{"cat file", keyWordLeft, "-n "}, "cat -n file"},
		{"escape ignored", []string{"a", "\x1b", "b"}, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, src := newTestEditor()
			src.queue(tt.input...)
			src.queue(keyEnter)
			assert.Equal(t, tt.want, readAccepted(t, e))
		})
	}
}

func TestReadLine_HistoryUp(t *testing.T) {
	t.Parallel()

	e, src := newTestEditor()
	src.queue("first", keyEnter)
	require.Equal(t, "first", readAccepted(t, e))

	src.queue(keyUp, keyEnter)
	assert.Equal(t, "first", readAccepted(t, e))
}

func TestReadLine_HistoryRestoresDraft(t *testing.T) {
	t.Parallel()

	e, src := newTestEditor()
	src.queue("one", keyEnter, "two", keyEnter)
	readAccepted(t, e)
	readAccepted(t, e)

	src.queue("dr", keyUp, keyUp, keyUp, keyDown, keyDown, keyEnter)
	assert.Equal(t, "dr", readAccepted(t, e))

	src.queue(keyUp, keyUp, keyDown, keyEnter)
	assert.Equal(t, "dr", readAccepted(t, e))
}

func TestReadLine_HistoryMaxSize(t *testing.T) {
	t.Parallel()

	e, src := newTestEditor()
	e.History().SetMaxSize(3)

	for i := 1; i <= 5; i++ {
		src.queue(fmt.Sprintf("cmd%d", i), keyEnter)
		readAccepted(t, e)
	}
	assert.Equal(t, []string{"cmd3", "cmd4", "cmd5"}, e.History().Entries())
}

func TestReadLine_HistorySkipsEmptyAndRepeats(t *testing.T) {
	t.Parallel()

	e, src := newTestEditor()
	src.queue("", keyEnter, "   ", keyEnter, "ls", keyEnter, "ls", keyEnter)
	for range 4 {
		readAccepted(t, e)
	}
	assert.Equal(t, []string{"ls"}, e.History().Entries())
}

func TestReadLine_ClearScreen(t *testing.T) {
	t.Parallel()

	e, src := newTestEditor()
	src.queue("ab", keyCtrlL, "next", keyEnter)

	res, err := e.ReadLine(2)
	require.NoError(t, err)
	assert.Equal(t, StatusScreenCleared, res.Status)
	assert.True(t, strings.HasSuffix(src.out.String(), "\x1b[2J\x1b[H"))

	// The session carries on with a fresh line.
	assert.Equal(t, "next", readAccepted(t, e))
}

func TestReadLine_ValidatorRejects(t *testing.T) {
	t.Parallel()

	reject := func(line string) bool { return line != "bad" }
	e, src := newTestEditor(WithValidator(reject))
	src.queue("bad", keyEnter, keyCtrlU, "good", keyEnter)

	assert.Equal(t, "good", readAccepted(t, e))
	assert.Contains(t, src.out.String(), flashStyle+"bad")
	assert.Equal(t, []string{"good"}, e.History().Entries())
}

func TestReadLine_Render(t *testing.T) {
	t.Parallel()

	palette := highlight.DefaultPalette()
	e, src := newTestEditor(WithPalette(palette))
	src.queue("ls", keyEnter)
	readAccepted(t, e)

	out := src.out.String()
	// Every redraw returns to the end of the prompt and clears.
	assert.Contains(t, out, "\x1b[1G\x1b[K")
	assert.Contains(t, out, palette.Color(highlight.KindCommand)+"ls"+highlight.Reset)
	assert.Contains(t, out, "\x1b[3G")

	e, src = newTestEditor()
	src.queue("日", keyEnter)
	_, err := e.ReadLine(4)
	require.NoError(t, err)
	assert.Contains(t, src.out.String(), "\x1b[5G\x1b[K")
	assert.Contains(t, src.out.String(), "\x1b[7G", "wide rune should advance two columns")
}

func TestReadLine_SetPalette(t *testing.T) {
	t.Parallel()

	e, src := newTestEditor()
	basic := highlight.BasicPalette()
	require.NoError(t, basic.SetColor(highlight.KindCommand, "\x1b[35m"))
	e.SetPalette(basic)
	e.SetPalette(nil)
	assert.Same(t, basic, e.Palette())

	src.queue("ls", keyEnter)
	readAccepted(t, e)
	assert.Contains(t, src.out.String(), "\x1b[35mls")
}

func newCompletingEditor(t *testing.T) (*Editor, *scriptSource) {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/home/file1.txt", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/home/file2.txt", nil, 0o644))
	paths := fspath.NewFS(fs, func() string { return "/home" })
	return newTestEditor(WithCompleter(completion.New(paths, nil)))
}

func TestReadLine_TabRotation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tabs int
		want string
	}{
		{1, "cat file1.txt"},
		{2, "cat file2.txt"},
		{3, "cat file1.txt"},
	}
	for _, tt := range tests {
		e, src := newCompletingEditor(t)
		src.queue("cat fi", strings.Repeat(keyTab, tt.tabs), keyEnter)
		assert.Equal(t, tt.want, readAccepted(t, e), "after %d tabs", tt.tabs)
	}
}

func TestReadLine_EditResetsCompletion(t *testing.T) {
	t.Parallel()

	e, src := newCompletingEditor(t)
	// Typing and deleting a character reproduces the completed line, but the
	// edit still ends the rotation.
	src.queue("cat fi", keyTab, "x", keyBackspace, keyTab, keyEnter)
	assert.Equal(t, "cat file1.txt", readAccepted(t, e))
}

func TestReadLine_TabWithoutCompleter(t *testing.T) {
	t.Parallel()

	e, src := newTestEditor()
	src.queue("cat fi", keyTab, keyEnter)
	assert.Equal(t, "cat fi", readAccepted(t, e))
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "accepted", StatusAccepted.String())
	assert.Equal(t, "screen-cleared", StatusScreenCleared.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
