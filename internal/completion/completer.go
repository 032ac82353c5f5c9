// SPDX-License-Identifier: MPL-2.0

// Package completion implements Tab completion of filesystem paths.
//
// A Completer remembers the line it last completed so that pressing Tab again
// on an unchanged result cycles through the remaining candidates.
package completion

import (
	"slices"
	"strings"
	"unicode"

	"github.com/invowk/pansh/pkg/cmdspec"
	"github.com/invowk/pansh/pkg/fspath"
)

type (
	// Result describes the outcome of one Complete call.
	Result struct {
		// NewText is the full line after completion. Equal to the input when
		// Applied is false.
		NewText string
		// NewCursor is the rune offset of the cursor in NewText.
		NewCursor int
		Applied   bool
		// Candidates lists every completion for the word, in rotation order.
		Candidates []string
	}

	// Completer proposes replacements for the word under the cursor.
	Completer struct {
		paths    fspath.Provider
		commands cmdspec.Provider

		// rotation state
		candidates []string
		index      int
		anchor     []rune
		anchorPos  int
		wordStart  int
	}
)

// New creates a Completer. commands may be nil, in which case every argument
// completes to both files and directories.
func New(paths fspath.Provider, commands cmdspec.Provider) *Completer {
	c := &Completer{paths: paths, commands: commands}
	c.Reset()
	return c
}

// Reset forgets any in-progress rotation.
func (c *Completer) Reset() {
	c.candidates = nil
	c.index = -1
	c.anchor = nil
	c.anchorPos = 0
	c.wordStart = 0
}

// Complete completes the word ending at cursor, a rune offset into line.
func (c *Completer) Complete(line string, cursor int) Result {
	rs := []rune(line)
	cursor = max(0, min(cursor, len(rs)))

	if c.isRotation(line) {
		c.index = (c.index + 1) % len(c.candidates)
		text, pos := applyCandidate(c.anchor, c.wordStart, c.candidates[c.index])
		return Result{NewText: text, NewCursor: pos, Applied: true, Candidates: slices.Clone(c.candidates)}
	}

	start := wordStart(rs, cursor)
	word := string(rs[start:cursor])
	candidates := c.candidatesFor(word, c.kindAt(rs[:start]))
	if len(candidates) == 0 {
		c.Reset()
		return Result{NewText: line, NewCursor: cursor}
	}

	c.candidates = candidates
	c.index = 0
	c.anchor = rs
	c.anchorPos = cursor
	c.wordStart = start

	text, pos := applyCandidate(rs, start, candidates[0])
	return Result{NewText: text, NewCursor: pos, Applied: true, Candidates: slices.Clone(candidates)}
}

// isRotation reports whether line is exactly what the selected candidate
// produced, meaning Tab was pressed again without an intervening edit.
func (c *Completer) isRotation(line string) bool {
	if len(c.candidates) <= 1 || c.index < 0 {
		return false
	}
	text, _ := applyCandidate(c.anchor, c.wordStart, c.candidates[c.index])
	return text == line
}

// kindAt determines which entries the word may complete to, given the text
// preceding it.
func (c *Completer) kindAt(prefix []rune) cmdspec.OptionKind {
	if c.commands == nil {
		return cmdspec.KindAny
	}
	words := splitWords(string(currentSegment(prefix)))
	if len(words) == 0 {
		return cmdspec.KindAny
	}
	spec, ok := c.commands.SpecFor(words[0])
	if !ok {
		return cmdspec.KindAny
	}
	positional := 0
	for _, w := range words[1:] {
		if !strings.HasPrefix(w, "-") {
			positional++
		}
	}
	arg, ok := spec.Positional(positional)
	if !ok {
		return cmdspec.KindAny
	}
	return arg.Kind
}

// candidatesFor lists directory entries matching the partial path, sorted
// directories first.
func (c *Completer) candidatesFor(partial string, kind cmdspec.OptionKind) (out []string) {
	if c.paths == nil {
		return nil
	}
	defer func() {
		// Completion is advisory; a misbehaving provider yields nothing.
		if recover() != nil {
			out = nil
		}
	}()

	dir, prefix, name := c.splitPartial(partial)
	if !c.paths.DirectoryExists(dir) {
		return nil
	}
	sep := string(c.paths.Separator())

	if kind.AcceptsDirectories() {
		if dirs, err := c.paths.ListDirectories(dir); err == nil {
			for _, d := range dirs {
				if hasPrefixFold(d, name) {
					out = append(out, prefix+d+sep)
				}
			}
		}
	}
	if kind.AcceptsFiles() {
		if files, err := c.paths.ListFiles(dir); err == nil {
			for _, f := range files {
				if hasPrefixFold(f, name) {
					out = append(out, prefix+f)
				}
			}
		}
	}

	slices.SortStableFunc(out, func(a, b string) int {
		ad, bd := c.isDirCandidate(a), c.isDirCandidate(b)
		switch {
		case ad && !bd:
			return -1
		case !ad && bd:
			return 1
		}
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}

// splitPartial breaks a partial path into the directory to search, the text
// to keep in front of each candidate, and the name prefix to match.
func (c *Completer) splitPartial(partial string) (dir, prefix, name string) {
	if partial == "" {
		return c.paths.CurrentDirectory(), "", ""
	}
	if fspath.HasTrailingSeparator(c.paths, partial) {
		return fspath.Resolve(c.paths, partial), partial, ""
	}

	dirPart := c.paths.DirectoryName(partial)
	name = c.paths.FileName(partial)
	if dirPart == "" {
		return c.paths.CurrentDirectory(), "", name
	}
	prefix = dirPart
	if !fspath.HasTrailingSeparator(c.paths, prefix) {
		prefix += string(c.paths.Separator())
	}
	return fspath.Resolve(c.paths, dirPart), prefix, name
}

func (c *Completer) isDirCandidate(s string) bool {
	return fspath.HasTrailingSeparator(c.paths, s)
}

// applyCandidate replaces the word starting at start, through to its end,
// with candidate and keeps the rest of the line.
func applyCandidate(line []rune, start int, candidate string) (string, int) {
	end := start
	for end < len(line) && !IsBoundary(line[end]) {
		end++
	}
	var b strings.Builder
	b.WriteString(string(line[:start]))
	b.WriteString(candidate)
	b.WriteString(string(line[end:]))
	return b.String(), start + len([]rune(candidate))
}

// IsBoundary reports whether r delimits completion words.
func IsBoundary(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '|', '>', '<', ';', '&':
		return true
	}
	return false
}

func wordStart(line []rune, cursor int) int {
	i := cursor
	for i > 0 && !IsBoundary(line[i-1]) {
		i--
	}
	return i
}

// currentSegment returns the text after the last command separator.
func currentSegment(prefix []rune) []rune {
	for i := len(prefix) - 1; i >= 0; i-- {
		switch prefix[i] {
		case '|', ';', '&':
			return prefix[i+1:]
		}
	}
	return prefix
}

// splitWords splits on unquoted whitespace and strips the quotes.
func splitWords(s string) []string {
	var (
		words   []string
		current strings.Builder
		quote   rune
		inWord  bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		words = append(words, current.String())
	}
	return words
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}
