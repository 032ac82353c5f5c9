// SPDX-License-Identifier: MPL-2.0

package lineedit

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/invowk/pansh/internal/completion"
	"github.com/invowk/pansh/internal/highlight"
	"github.com/invowk/pansh/internal/keys"
)

// DefaultFlashDuration is how long a rejected line stays highlighted.
const DefaultFlashDuration = 150 * time.Millisecond

const (
	// StatusAccepted means Enter was pressed; Result.Line holds the line.
	StatusAccepted Status = iota
	// StatusCancelled means Ctrl+C, or Ctrl+D on an empty line.
	StatusCancelled
	// StatusScreenCleared means the screen was cleared and the caller should
	// redraw its prompt and call ReadLine again.
	StatusScreenCleared
)

// ErrInputClosed is returned with a cancelled result when the byte source
// has no more input.
var ErrInputClosed = errors.New("input closed")

type (
	// Status is the way a ReadLine call ended.
	Status int

	// Result is the outcome of ReadLine.
	Result struct {
		Status Status
		Line   string
		// EndOfInput is set on a cancelled result caused by Ctrl+D on an
		// empty line or by the source running dry, as opposed to Ctrl+C.
		EndOfInput bool
	}

	// ByteSource is the terminal the editor reads keys from and draws on.
	ByteSource interface {
		keys.ByteReader
		io.Writer
		// InputAvailable reports whether NextByte would return without blocking.
		InputAvailable() bool
	}

	// Validator decides whether an entered line may be accepted.
	Validator func(line string) bool

	// Option configures an Editor.
	Option func(*Editor)

	// Editor reads one line at a time from a ByteSource with editing,
	// history, highlighting and completion. An Editor is not safe for
	// concurrent use; History and Palette must not be changed while
	// ReadLine is running.
	Editor struct {
		src       *trackingSource
		decoder   *keys.Decoder
		buf       *Buffer
		history   *History
		palette   *highlight.Palette
		tokenizer *highlight.Tokenizer
		completer *completion.Completer
		validator Validator
		logger    *log.Logger
		flash     time.Duration

		promptWidth int
	}

	// trackingSource remembers whether the underlying source ran out.
	trackingSource struct {
		ByteSource
		closed bool
	}
)

// Accepted returns an accepted Result for line.
func Accepted(line string) Result {
	return Result{Status: StatusAccepted, Line: line}
}

// Cancelled returns a cancelled Result.
func Cancelled() Result {
	return Result{Status: StatusCancelled}
}

func endOfInput() Result {
	return Result{Status: StatusCancelled, EndOfInput: true}
}

// ScreenCleared returns a screen-cleared Result.
func ScreenCleared() Result {
	return Result{Status: StatusScreenCleared}
}

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusCancelled:
		return "cancelled"
	case StatusScreenCleared:
		return "screen-cleared"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// WithHistory shares h with the editor instead of a fresh History.
func WithHistory(h *History) Option {
	return func(e *Editor) { e.history = h }
}

// WithPalette sets the colours used for highlighting.
func WithPalette(p *highlight.Palette) Option {
	return func(e *Editor) { e.palette = p }
}

// WithTokenizer sets the tokenizer used for highlighting.
func WithTokenizer(t *highlight.Tokenizer) Option {
	return func(e *Editor) { e.tokenizer = t }
}

// WithCompleter enables Tab completion.
func WithCompleter(c *completion.Completer) Option {
	return func(e *Editor) { e.completer = c }
}

// WithValidator installs a hook that can refuse lines on Enter.
func WithValidator(v Validator) Option {
	return func(e *Editor) { e.validator = v }
}

// WithLogger sets the logger for key-level debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithFlashDuration sets how long a rejected line is highlighted.
func WithFlashDuration(d time.Duration) Option {
	return func(e *Editor) { e.flash = d }
}

// NewEditor creates an Editor reading from src.
func NewEditor(src ByteSource, opts ...Option) *Editor {
	e := &Editor{
		src:     &trackingSource{ByteSource: src},
		decoder: keys.NewDecoder(),
		buf:     NewBuffer(),
		flash:   DefaultFlashDuration,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.history == nil {
		e.history = NewHistory(DefaultMaxHistory)
	}
	if e.palette == nil {
		e.palette = highlight.DefaultPalette()
	}
	if e.tokenizer == nil {
		e.tokenizer = highlight.NewTokenizer()
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

// History returns the editor's history.
func (e *Editor) History() *History {
	return e.history
}

// Palette returns the palette used for highlighting.
func (e *Editor) Palette() *highlight.Palette {
	return e.palette
}

// SetPalette switches to p for subsequent redraws.
func (e *Editor) SetPalette(p *highlight.Palette) {
	if p != nil {
		e.palette = p
	}
}

// Tokenize classifies line with the editor's tokenizer.
func (e *Editor) Tokenize(line string) []highlight.Token {
	return e.tokenizer.Tokenize(line)
}

// ReadLine edits a line after a prompt promptWidth columns wide. The prompt
// must already be on screen. The error is non-nil only when writing to the
// source fails or the source is exhausted.
func (e *Editor) ReadLine(promptWidth int) (Result, error) {
	e.promptWidth = promptWidth
	e.buf.Clear()
	e.history.Begin()
	if e.completer != nil {
		e.completer.Reset()
	}

	for {
		ev := e.decoder.Decode(e.src)
		if ev.Kind != keys.KindTab && e.completer != nil {
			e.completer.Reset()
		}

		res, done, err := e.handle(ev)
		if err != nil || done {
			return res, err
		}
	}
}

// handle applies one key. done is true when ReadLine should return.
func (e *Editor) handle(ev keys.Event) (res Result, done bool, err error) {
	switch ev.Kind {
	case keys.KindEnter:
		line := e.buf.String()
		if e.validator != nil && !e.validator(line) {
			e.logger.Debug("line rejected", "line", line)
			return Result{}, false, e.flashLine()
		}
		if err := e.write("\r\n"); err != nil {
			return Result{}, true, err
		}
		e.history.Add(line)
		return Accepted(line), true, nil

	case keys.KindInterrupt:
		return Cancelled(), true, e.write("^C\r\n")

	case keys.KindEndOfInput:
		if e.buf.Len() == 0 {
			if e.src.closed {
				return endOfInput(), true, ErrInputClosed
			}
			return endOfInput(), true, nil
		}
		if e.buf.DeleteAtCursor() {
			return Result{}, false, e.redraw()
		}
		if e.src.closed {
			return endOfInput(), true, ErrInputClosed
		}
		return Result{}, false, nil

	case keys.KindClearScreen:
		return ScreenCleared(), true, e.write(clearScreen)

	case keys.KindTab:
		return Result{}, false, e.complete()

	case keys.KindChar:
		e.buf.InsertChar(ev.Char)
		return Result{}, false, e.redraw()

	case keys.KindUp:
		if line, ok := e.history.Prev(e.buf.String()); ok {
			e.buf.Set(line)
			return Result{}, false, e.redraw()
		}
	case keys.KindDown:
		if line, ok := e.history.Next(); ok {
			e.buf.Set(line)
			return Result{}, false, e.redraw()
		}

	case keys.KindLeft:
		return Result{}, false, e.moveIf(e.buf.Left())
	case keys.KindRight:
		return Result{}, false, e.moveIf(e.buf.Right())
	case keys.KindHome:
		e.buf.Home()
		return Result{}, false, e.moveCursor()
	case keys.KindEnd:
		e.buf.End()
		return Result{}, false, e.moveCursor()
	case keys.KindWordLeft:
		return Result{}, false, e.moveIf(e.buf.MoveWordLeft())
	case keys.KindWordRight:
		return Result{}, false, e.moveIf(e.buf.MoveWordRight())

	case keys.KindBackspace:
		return Result{}, false, e.redrawIf(e.buf.Backspace())
	case keys.KindDelete:
		return Result{}, false, e.redrawIf(e.buf.DeleteAtCursor())
	case keys.KindKillToStart:
		return Result{}, false, e.redrawIf(e.buf.KillToStart())
	case keys.KindKillToEnd:
		return Result{}, false, e.redrawIf(e.buf.KillToEnd())
	case keys.KindDeleteWordBack:
		return Result{}, false, e.redrawIf(e.buf.DeleteWordBackward())

	default:
		e.logger.Debug("ignored key", "key", ev)
	}
	return Result{}, false, nil
}

func (e *Editor) complete() error {
	if e.completer == nil {
		return nil
	}
	res := e.completer.Complete(e.buf.String(), e.buf.Cursor())
	if !res.Applied {
		return nil
	}
	e.logger.Debug("completed", "candidates", len(res.Candidates), "text", res.NewText)
	e.buf.Replace(res.NewText, res.NewCursor)
	return e.redraw()
}

func (e *Editor) moveIf(moved bool) error {
	if !moved {
		return nil
	}
	return e.moveCursor()
}

func (e *Editor) redrawIf(changed bool) error {
	if !changed {
		return nil
	}
	return e.redraw()
}

func (s *trackingSource) NextByte() (byte, bool) {
	b, ok := s.ByteSource.NextByte()
	if !ok {
		s.closed = true
	}
	return b, ok
}
