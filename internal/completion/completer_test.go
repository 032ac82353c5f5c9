// SPDX-License-Identifier: MPL-2.0

package completion

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invowk/pansh/pkg/cmdspec"
	"github.com/invowk/pansh/pkg/fspath"
)

// newTree builds an in-memory filesystem. Entries ending in "/" are
// directories; everything else is an empty file.
func newTree(t *testing.T, cwd string, entries ...string) fspath.Provider {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(cwd, 0o755))
	for _, e := range entries {
		if e[len(e)-1] == '/' {
			require.NoError(t, fs.MkdirAll(e, 0o755))
			continue
		}
		require.NoError(t, fs.MkdirAll(filepath.Dir(e), 0o755))
		require.NoError(t, afero.WriteFile(fs, e, nil, 0o644))
	}
	return fspath.NewFS(fs, func() string { return cwd })
}

func typedCommands() cmdspec.Static {
	return cmdspec.Static{
		"cd":  {Name: "cd", Args: []cmdspec.ArgSpec{cmdspec.Dir("dir", true)}},
		"cat": {Name: "cat", Args: []cmdspec.ArgSpec{cmdspec.File("file", true)}},
	}
}

func TestComplete_NoMatches(t *testing.T) {
	t.Parallel()

	c := New(newTree(t, "/home"), nil)
	res := c.Complete("cat nonexistent", 15)

	assert.False(t, res.Applied)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, "cat nonexistent", res.NewText)
	assert.Equal(t, 15, res.NewCursor)
}

func TestComplete_SingleFile(t *testing.T) {
	t.Parallel()

	c := New(newTree(t, "/home", "/home/readme.txt"), nil)
	res := c.Complete("cat read", 8)

	assert.True(t, res.Applied)
	assert.Equal(t, "cat readme.txt", res.NewText)
	assert.Equal(t, 14, res.NewCursor)
}

func TestComplete_SingleDirectoryGetsSeparator(t *testing.T) {
	t.Parallel()

	c := New(newTree(t, "/", "/home/"), nil)
	res := c.Complete("cd ho", 5)

	assert.True(t, res.Applied)
	assert.Equal(t, "cd home/", res.NewText)
	assert.Equal(t, 8, res.NewCursor)
}

func TestComplete_Rotation(t *testing.T) {
	t.Parallel()

	c := New(newTree(t, "/home", "/home/file1.txt", "/home/file2.txt"), nil)

	first := c.Complete("cat fi", 6)
	require.True(t, first.Applied)
	assert.Len(t, first.Candidates, 2)
	assert.Equal(t, "cat file1.txt", first.NewText)

	second := c.Complete(first.NewText, first.NewCursor)
	assert.True(t, second.Applied)
	assert.Equal(t, "cat file2.txt", second.NewText)

	third := c.Complete(second.NewText, second.NewCursor)
	assert.True(t, third.Applied)
	assert.Equal(t, "cat file1.txt", third.NewText)
}

func TestComplete_EditedLineStartsFresh(t *testing.T) {
	t.Parallel()

	c := New(newTree(t, "/home", "/home/file1.txt", "/home/file2.txt", "/home/fig.png"), nil)

	first := c.Complete("cat fi", 6)
	require.Len(t, first.Candidates, 3)

	// Typing after the completion breaks the rotation.
	res := c.Complete("cat file", 8)
	assert.Equal(t, "cat file1.txt", res.NewText)
	assert.Len(t, res.Candidates, 2)
}

func TestComplete_EmptyPrefixListsDirectory(t *testing.T) {
	t.Parallel()

	c := New(newTree(t, "/home", "/home/Documents/", "/home/readme.txt"), nil)
	res := c.Complete("ls ", 3)

	assert.True(t, res.Applied)
	assert.Len(t, res.Candidates, 2)
	assert.Equal(t, "ls Documents/", res.NewText)
}

func TestComplete_PathPrefix(t *testing.T) {
	t.Parallel()

	tree := newTree(t, "/", "/home/file.txt")

	tests := []struct {
		name   string
		line   string
		cursor int
		want   string
	}{
		{"partial name in subdirectory", "cat home/fi", 11, "cat home/file.txt"},
		{"trailing separator lists contents", "ls home/", 8, "ls home/file.txt"},
		{"absolute path", "cat /home/f", 11, "cat /home/file.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := New(tree, nil).Complete(tt.line, tt.cursor)
			assert.True(t, res.Applied)
			assert.Equal(t, tt.want, res.NewText)
		})
	}
}

func TestComplete_MissingDirectory(t *testing.T) {
	t.Parallel()

	c := New(newTree(t, "/home", "/home/file.txt"), nil)
	res := c.Complete("cat nowhere/fi", 14)

	assert.False(t, res.Applied)
}

func TestReset_ReproducesFirstCandidate(t *testing.T) {
	t.Parallel()

	c := New(newTree(t, "/home", "/home/file1.txt", "/home/file2.txt"), nil)

	first := c.Complete("cat fi", 6)
	c.Reset()

	again := c.Complete("cat fi", 6)
	assert.Equal(t, first.NewText, again.NewText)
}

func TestComplete_DirectoriesSortFirst(t *testing.T) {
	t.Parallel()

	c := New(newTree(t, "/home", "/home/abc.txt", "/home/aaa_folder/", "/home/Abd/"), nil)
	res := c.Complete("ls a", 4)

	assert.Equal(t, "ls aaa_folder/", res.NewText)
	assert.Equal(t, []string{"aaa_folder/", "Abd/", "abc.txt"}, res.Candidates)
}

func TestComplete_CaseInsensitive(t *testing.T) {
	t.Parallel()

	c := New(newTree(t, "/home", "/home/README.txt"), nil)
	res := c.Complete("cat read", 8)

	assert.True(t, res.Applied)
	assert.Equal(t, "cat README.txt", res.NewText)
}

func TestComplete_PreservesTrailingText(t *testing.T) {
	t.Parallel()

	tree := newTree(t, "/home", "/home/file.txt")

	res := New(tree, nil).Complete("cat fi | grep test", 6)
	assert.True(t, res.Applied)
	assert.Equal(t, "cat file.txt | grep test", res.NewText)
	assert.Equal(t, 12, res.NewCursor)

	// The rest of a word under the cursor is replaced, not kept.
	res = New(tree, nil).Complete("cat fiXX | wc", 6)
	assert.Equal(t, "cat file.txt | wc", res.NewText)
}

func TestComplete_StartOfLine(t *testing.T) {
	t.Parallel()

	c := New(newTree(t, "/home", "/home/script.sh"), nil)
	res := c.Complete("scr", 3)

	assert.True(t, res.Applied)
	assert.Equal(t, "script.sh", res.NewText)
}

func TestComplete_ArgumentKinds(t *testing.T) {
	t.Parallel()

	tree := newTree(t, "/home",
		"/home/documents/", "/home/downloads/",
		"/home/data.txt", "/home/diary.txt")

	tests := []struct {
		name     string
		commands cmdspec.Provider
		line     string
		want     []string
	}{
		{"directory command", typedCommands(), "cd d", []string{"documents/", "downloads/"}},
		{"file command", typedCommands(), "cat d", []string{"data.txt", "diary.txt"}},
		{"unknown command", typedCommands(), "unknown d", []string{"documents/", "downloads/", "data.txt", "diary.txt"}},
		{"no command provider", nil, "cd d", []string{"documents/", "downloads/", "data.txt", "diary.txt"}},
		{"flags do not count", typedCommands(), "cat -n d", []string{"data.txt", "diary.txt"}},
		{"beyond declared args", typedCommands(), "cd x d", []string{"documents/", "downloads/", "data.txt", "diary.txt"}},
		{"after a pipe", typedCommands(), "ls | cd d", []string{"documents/", "downloads/"}},
		{"quoted previous argument", typedCommands(), `cd "my dir" d`, []string{"documents/", "downloads/", "data.txt", "diary.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := New(tree, tt.commands)
			res := c.Complete(tt.line, len([]rune(tt.line)))
			assert.True(t, res.Applied)
			assert.Equal(t, tt.want, res.Candidates)
		})
	}
}

func TestComplete_DirectoryCommandWithPath(t *testing.T) {
	t.Parallel()

	tree := newTree(t, "/", "/home/user/", "/home/ubuntu/", "/home/test.txt")
	c := New(tree, typedCommands())

	res := c.Complete("cd home/u", 9)
	assert.True(t, res.Applied)
	assert.Equal(t, []string{"home/ubuntu/", "home/user/"}, res.Candidates)
}

type panickyPaths struct{ fspath.Provider }

func (panickyPaths) ListFiles(string) ([]string, error) { panic("disk on fire") }

func TestComplete_ProviderFailureYieldsNothing(t *testing.T) {
	t.Parallel()

	c := New(panickyPaths{newTree(t, "/home", "/home/file.txt")}, nil)
	res := c.Complete("cat fi", 6)

	assert.False(t, res.Applied)
	assert.Empty(t, res.Candidates)
}

func TestSplitWords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"cp", "a b", "c"}, splitWords(`cp "a b" c `))
	assert.Equal(t, []string{"x", ""}, splitWords(`x ''`))
	assert.Nil(t, splitWords("   "))
}
