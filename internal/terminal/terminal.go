// SPDX-License-Identifier: MPL-2.0

// Package terminal adapts byte streams into sources for the line editor.
//
// A Terminal reads its input on a background goroutine so that the editor
// can ask whether more bytes are on the way without blocking. That lets a
// lone ESC key be told apart from the start of an arrow-key sequence.
package terminal

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// DefaultEscapeTimeout is how long InputAvailable waits for the rest of a
// partially received escape sequence.
const DefaultEscapeTimeout = 25 * time.Millisecond

const readChunk = 256

type (
	// Option configures a Terminal.
	Option func(*Terminal)

	// Terminal is a line editor byte source over a reader and a writer.
	Terminal struct {
		in      io.Reader
		out     io.Writer
		tty     *os.File
		fd      int
		timeout time.Duration
		logger  *log.Logger

		mu       sync.Mutex
		reader   cancelreader.CancelReader
		chunks   chan []byte
		quit     chan struct{}
		stopped  chan struct{}
		pending  []byte
		eof      bool
		rawState *term.State
	}
)

// WithEscapeTimeout sets how long InputAvailable waits for more input.
func WithEscapeTimeout(d time.Duration) Option {
	return func(t *Terminal) { t.timeout = d }
}

// WithLogger sets the logger for read errors.
func WithLogger(l *log.Logger) Option {
	return func(t *Terminal) { t.logger = l }
}

// WithCRLF makes every bare "\n" written to the terminal go out as "\r\n".
// Use it when nothing between the program and the screen translates line
// endings, such as an SSH channel.
func WithCRLF() Option {
	return func(t *Terminal) { t.out = NewlineWriter(t.out) }
}

// New creates a Terminal and starts reading in. in is not put into raw mode;
// use OpenStdio for the process terminal.
func New(in io.Reader, out io.Writer, opts ...Option) *Terminal {
	t := &Terminal{
		in:      in,
		out:     out,
		fd:      -1,
		timeout: DefaultEscapeTimeout,
		chunks:  make(chan []byte, 16),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard)
	}
	t.start()
	return t
}

// OpenStdio opens the process's standard input and output. When stdin is a
// terminal it is switched to raw mode until Suspend or Close.
func OpenStdio(opts ...Option) (*Terminal, error) {
	return Open(os.Stdin, os.Stdout, opts...)
}

// Open reads from the file in and writes to out, switching in to raw mode
// when it is a terminal.
func Open(in *os.File, out io.Writer, opts ...Option) (*Terminal, error) {
	t := New(in, out, opts...)
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return t, nil
	}
	t.tty, t.fd = in, fd
	if err := t.makeRaw(); err != nil {
		_ = t.Close()
		return nil, err
	}
	return t, nil
}

// IsTerminal reports whether the Terminal drives a real TTY.
func (t *Terminal) IsTerminal() bool {
	return t.fd >= 0
}

// NextByte blocks until a byte arrives. ok is false once input has ended.
func (t *Terminal) NextByte() (b byte, ok bool) {
	if len(t.pending) == 0 && !t.receive(-1) {
		return 0, false
	}
	b = t.pending[0]
	t.pending = t.pending[1:]
	return b, true
}

// InputAvailable reports whether a byte is buffered, waiting up to the
// escape timeout for one to arrive.
func (t *Terminal) InputAvailable() bool {
	if len(t.pending) > 0 {
		return true
	}
	return t.receive(t.timeout)
}

// Write writes p to the output.
func (t *Terminal) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Size returns the terminal width and height in cells.
func (t *Terminal) Size() (width, height int, err error) {
	if t.fd < 0 {
		return 0, 0, errNotTerminal
	}
	return size(t.tty)
}

// Suspend stops reading input and restores the terminal's previous mode,
// so that a child command can use it. Resume undoes Suspend. Both do
// nothing unless the Terminal drives a TTY.
func (t *Terminal) Suspend() error {
	if t.fd < 0 {
		return nil
	}
	t.stop(false)
	return t.restore()
}

// Resume restarts reading after Suspend.
func (t *Terminal) Resume() error {
	if t.fd < 0 {
		return nil
	}
	if err := t.makeRaw(); err != nil {
		return err
	}
	t.start()
	return nil
}

// Close stops reading and restores the terminal.
func (t *Terminal) Close() error {
	t.stop(true)
	return t.restore()
}

var errNotTerminal = errors.New("not a terminal")

// receive waits up to timeout for a chunk; a negative timeout waits forever.
func (t *Terminal) receive(timeout time.Duration) bool {
	if t.eof {
		return false
	}
	var expired <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case chunk, ok := <-t.chunks:
		if !ok {
			t.eof = true
			return false
		}
		t.pending = chunk
		return true
	case <-expired:
		return false
	}
}

// start launches the reader goroutine. Chunks are delivered on t.chunks,
// which is closed when input ends but not when reading is cancelled. A
// reader kept by stop is still running and is reused as is.
func (t *Terminal) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.reader != nil || t.eof {
		return
	}

	r := newReader(t.in, t.logger)
	t.reader = r
	t.quit = make(chan struct{})
	t.stopped = make(chan struct{})

	go t.readLoop(r, t.quit, t.stopped)
}

// newReader wraps in so that a pending Read can be interrupted. Only files
// can be; cancelreader's fallback for other readers poisons every later
// Read once cancelled, so those get uncancelable instead.
func newReader(in io.Reader, logger *log.Logger) cancelreader.CancelReader {
	if _, ok := in.(cancelreader.File); !ok {
		return &uncancelable{Reader: in}
	}
	r, err := cancelreader.NewReader(in)
	if err != nil {
		logger.Debug("input is not cancelable", "err", err)
		return &uncancelable{Reader: in}
	}
	return r
}

func (t *Terminal) readLoop(r cancelreader.CancelReader, quit <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	for {
		buf := make([]byte, readChunk)
		n, err := r.Read(buf)
		if n > 0 {
			select {
			case t.chunks <- buf[:n]:
			case <-quit:
				return
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, cancelreader.ErrCanceled):
			return
		default:
			if !errors.Is(err, io.EOF) {
				t.logger.Debug("read failed", "err", err)
			}
			close(t.chunks)
			return
		}
	}
}

// stop ends the read loop. A loop blocked on a reader that cannot be
// cancelled keeps running unless final is set, so that start does not race
// a second loop against it.
func (t *Terminal) stop(final bool) {
	t.mu.Lock()
	r, quit, stopped := t.reader, t.quit, t.stopped
	if r == nil {
		t.mu.Unlock()
		return
	}
	if _, ok := r.(*uncancelable); ok && !final {
		t.mu.Unlock()
		return
	}
	t.reader = nil
	t.mu.Unlock()

	close(quit)
	if r.Cancel() {
		<-stopped
	}
	_ = r.Close()
}

func (t *Terminal) makeRaw() error {
	if t.fd < 0 || t.rawState != nil {
		return nil
	}
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.rawState = state
	return nil
}

func (t *Terminal) restore() error {
	if t.rawState == nil {
		return nil
	}
	state := t.rawState
	t.rawState = nil
	return term.Restore(t.fd, state)
}

// uncancelable wraps readers cancelreader cannot interrupt.
type uncancelable struct {
	io.Reader
}

func (u *uncancelable) Cancel() bool { return false }

func (u *uncancelable) Close() error { return nil }
