// SPDX-License-Identifier: MPL-2.0

package terminal

import (
	"bytes"
	"io"
)

// newlineWriter rewrites bare "\n" as "\r\n".
type newlineWriter struct {
	w      io.Writer
	lastCR bool
}

// NewlineWriter returns a writer that turns every "\n" not already preceded
// by "\r" into "\r\n" before passing it to w.
func NewlineWriter(w io.Writer) io.Writer {
	if nw, ok := w.(*newlineWriter); ok {
		return nw
	}
	return &newlineWriter{w: w}
}

func (nw *newlineWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var out bytes.Buffer
	out.Grow(len(p) + bytes.Count(p, []byte{'\n'}))
	prevCR := nw.lastCR
	for _, b := range p {
		if b == '\n' && !prevCR {
			out.WriteByte('\r')
		}
		out.WriteByte(b)
		prevCR = b == '\r'
	}
	if _, err := nw.w.Write(out.Bytes()); err != nil {
		return 0, err
	}
	nw.lastCR = prevCR
	return len(p), nil
}
