// SPDX-License-Identifier: MPL-2.0

package highlight

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/invowk/pansh/pkg/cmdspec"
	"github.com/invowk/pansh/pkg/fspath"
)

type (
	// Token is one classified span of a line. Start counts runes.
	Token struct {
		Text  string
		Kind  TokenKind
		Start int
	}

	// Option configures a Tokenizer.
	Option func(*Tokenizer)

	// Tokenizer classifies command lines. Without collaborators every command
	// word is KindCommand and every path-like word is KindPath.
	Tokenizer struct {
		commands cmdspec.Provider
		paths    fspath.Provider
	}

	// segment is the parse state of one command between separators.
	segment struct {
		expectCommand  bool
		spec           cmdspec.Spec
		positional     int
		redirectTarget bool
	}
)

// WithCommands sets the collaborator that knows which commands exist and
// what arguments they take.
func WithCommands(p cmdspec.Provider) Option {
	return func(t *Tokenizer) { t.commands = p }
}

// WithPaths sets the collaborator used to check that path arguments exist.
func WithPaths(p fspath.Provider) Option {
	return func(t *Tokenizer) { t.paths = p }
}

// NewTokenizer creates a Tokenizer.
func NewTokenizer(opts ...Option) *Tokenizer {
	t := &Tokenizer{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize splits line into non-overlapping tokens that cover it entirely,
// except that nothing follows a comment.
func (t *Tokenizer) Tokenize(line string) []Token {
	rs := []rune(line)
	tokens := make([]Token, 0, 8)
	emit := func(start, end int, kind TokenKind) {
		tokens = append(tokens, Token{Text: string(rs[start:end]), Kind: kind, Start: start})
	}

	seg := segment{expectCommand: true}
	for i := 0; i < len(rs); {
		start := i
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			for i < len(rs) && unicode.IsSpace(rs[i]) {
				i++
			}
			emit(start, i, KindDefault)

		case r == '#':
			emit(start, len(rs), KindComment)
			return tokens

		case r == '"' || r == '\'':
			i = scanQuoted(rs, i)
			emit(start, i, KindString)
			seg.literal()

		case r == '|':
			i++
			emit(start, i, KindPipe)
			seg = segment{expectCommand: true}

		case r == '>' || r == '<':
			i++
			if r == '>' && i < len(rs) && (rs[i] == '>' || rs[i] == '&') {
				i++
			}
			emit(start, i, KindRedirect)
			seg.redirectTarget = true

		case r == '$':
			i++
			for i < len(rs) && isVariableRune(rs[i]) {
				i++
			}
			emit(start, i, KindVariable)
			seg.literal()

		default:
			for i < len(rs) && !isWordBreak(rs[i]) {
				i++
			}
			emit(start, i, t.classifyWord(string(rs[start:i]), &seg))
		}
	}
	return tokens
}

// classifyWord applies the word rules in priority order.
func (t *Tokenizer) classifyWord(word string, seg *segment) TokenKind {
	if seg.expectCommand {
		seg.expectCommand = false
		if t.commands == nil {
			return KindCommand
		}
		if spec, ok := t.commands.SpecFor(word); ok {
			seg.spec = spec
		}
		if t.commands.Exists(word) {
			return KindValidCommand
		}
		return KindInvalidCommand
	}

	redirect := seg.redirectTarget
	seg.redirectTarget = false
	if strings.HasPrefix(word, "-") {
		return KindFlag
	}

	var (
		arg    cmdspec.ArgSpec
		hasArg bool
	)
	if !redirect {
		arg, hasArg = seg.spec.Positional(seg.positional)
		seg.positional++
	}

	if IsPathLike(word) {
		if hasArg && arg.MustExist && !t.pathExists(word, arg.Kind) {
			return KindInvalidPath
		}
		return KindPath
	}
	if isNumber(word) {
		return KindNumber
	}
	return KindArgument
}

func (t *Tokenizer) pathExists(word string, kind cmdspec.OptionKind) bool {
	if t.paths == nil {
		return true
	}
	path := fspath.Resolve(t.paths, word)
	switch kind {
	case cmdspec.KindDirectoryOnly:
		return t.paths.DirectoryExists(path)
	case cmdspec.KindFileOnly:
		return t.paths.FileExists(path)
	default:
		return t.paths.DirectoryExists(path) || t.paths.FileExists(path)
	}
}

// literal records a quoted string or variable, which fills the command slot
// or a positional slot like any word.
func (s *segment) literal() {
	switch {
	case s.expectCommand:
		s.expectCommand = false
	case s.redirectTarget:
		s.redirectTarget = false
	default:
		s.positional++
	}
}

// HasInvalidPath reports whether any token is KindInvalidPath.
func HasInvalidPath(tokens []Token) bool {
	for _, tok := range tokens {
		if tok.Kind == KindInvalidPath {
			return true
		}
	}
	return false
}

// IsPathLike reports whether word looks like a filesystem path.
func IsPathLike(word string) bool {
	return strings.ContainsAny(word, `/\`) || word == "." || word == ".."
}

// scanQuoted returns the index just past the string starting at rs[start].
// An unterminated string runs to the end of the line.
func scanQuoted(rs []rune, start int) int {
	quote := rs[start]
	i := start + 1
	for i < len(rs) && rs[i] != quote {
		if rs[i] == '\\' && i+1 < len(rs) {
			i += 2
			continue
		}
		i++
	}
	if i < len(rs) {
		i++
	}
	return i
}

func isWordBreak(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '|', '>', '<', '"', '\'', '#':
		return true
	}
	return false
}

func isVariableRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isNumber accepts decimal numbers such as 42, -3, 2.5 or 1e3. The rune
// filter keeps ParseFloat from accepting Inf, NaN and hex literals.
func isNumber(word string) bool {
	for _, r := range word {
		switch {
		case unicode.IsDigit(r), r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	_, err := strconv.ParseFloat(word, 64)
	return err == nil
}
