// SPDX-License-Identifier: MPL-2.0

package keys

import "unicode/utf8"

const (
	stateGround state = iota
	stateEscape
	stateCSI
	stateSS3
	stateCSIDelete
	stateCSIOne
	stateCSIModifier
	stateCSIDirection
	stateUTF8
)

const esc = 0x1B

type (
	state int

	// ByteReader supplies raw input one byte at a time. ok is false when no
	// more input will arrive.
	ByteReader interface {
		NextByte() (b byte, ok bool)
	}

	// availabilityReporter is implemented by sources that can tell whether a
	// read would return without waiting. The decoder uses it to stop waiting
	// for the rest of an escape sequence that is not coming.
	availabilityReporter interface {
		InputAvailable() bool
	}

	// Decoder turns a byte stream into key events. The zero value is ready to use.
	// A Decoder is not safe for concurrent use.
	Decoder struct {
		state   state
		pending []byte

		utf8buf  [utf8.UTFMax]byte
		utf8have int
		utf8need int
	}
)

// NewDecoder creates a Decoder in the ground state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode reads from r until one event is complete.
//
// When r runs dry in the middle of an escape sequence the partial sequence is
// reported as Escape or Unknown. When r is exhausted at a key boundary the
// result is KindEndOfInput.
func (d *Decoder) Decode(r ByteReader) Event {
	for {
		b, ok := d.next(r)
		if !ok {
			if ev, partial := d.Flush(); partial {
				return ev
			}
			return Key(KindEndOfInput)
		}
		if ev, done := d.step(b); done {
			return ev
		}
	}
}

// Flush abandons a partially decoded sequence. partial is false when the
// decoder was between keys.
func (d *Decoder) Flush() (ev Event, partial bool) {
	s := d.state
	d.reset()
	switch s {
	case stateGround:
		return Event{}, false
	case stateEscape, stateCSI, stateSS3:
		return Key(KindEscape), true
	default:
		return Key(KindUnknown), true
	}
}

// Pending reports whether the decoder is in the middle of a sequence.
func (d *Decoder) Pending() bool {
	return d.state != stateGround || len(d.pending) > 0
}

func (d *Decoder) next(r ByteReader) (byte, bool) {
	if len(d.pending) > 0 {
		b := d.pending[0]
		d.pending = d.pending[1:]
		return b, true
	}
	if d.state != stateGround {
		if ar, ok := r.(availabilityReporter); ok && !ar.InputAvailable() {
			return 0, false
		}
	}
	return r.NextByte()
}

func (d *Decoder) reset() {
	d.state = stateGround
	d.utf8have = 0
	d.utf8need = 0
}

// pushBack queues b to be decoded again from the ground state.
func (d *Decoder) pushBack(b byte) {
	d.pending = append(d.pending, b)
}

// step advances the state machine by one byte.
func (d *Decoder) step(b byte) (Event, bool) {
	switch d.state {
	case stateGround:
		return d.ground(b)

	case stateEscape:
		switch b {
		case '[':
			d.state = stateCSI
			return Event{}, false
		case 'O':
			d.state = stateSS3
			return Event{}, false
		}
		d.reset()
		d.pushBack(b)
		return Key(KindEscape), true

	case stateCSI:
		switch b {
		case '3':
			d.state = stateCSIDelete
			return Event{}, false
		case '1':
			d.state = stateCSIOne
			return Event{}, false
		}
		d.reset()
		return Key(cursorKey(b)), true

	case stateSS3:
		d.reset()
		return Key(cursorKey(b)), true

	case stateCSIDelete:
		d.reset()
		if b == '~' {
			return Key(KindDelete), true
		}
		return Key(KindUnknown), true

	case stateCSIOne:
		switch b {
		case ';':
			d.state = stateCSIModifier
			return Event{}, false
		case '~':
			d.reset()
			return Key(KindHome), true
		}
		d.reset()
		return Key(KindUnknown), true

	case stateCSIModifier:
		d.state = stateCSIDirection
		return Event{}, false

	case stateCSIDirection:
		d.reset()
		switch b {
		case 'C':
			return Key(KindWordRight), true
		case 'D':
			return Key(KindWordLeft), true
		}
		return Key(KindUnknown), true

	case stateUTF8:
		return d.continueRune(b)
	}

	d.reset()
	return Key(KindUnknown), true
}

func (d *Decoder) ground(b byte) (Event, bool) {
	if b == esc {
		d.state = stateEscape
		return Event{}, false
	}
	if k, ok := controlKeys[b]; ok {
		return Key(k), true
	}
	switch {
	case b < 0x20:
		return Key(KindUnknown), true
	case b < utf8.RuneSelf:
		return Char(rune(b)), true
	}

	need := utf8SequenceLength(b)
	if need == 0 {
		return Key(KindUnknown), true
	}
	d.state = stateUTF8
	d.utf8buf[0] = b
	d.utf8have = 1
	d.utf8need = need
	return Event{}, false
}

func (d *Decoder) continueRune(b byte) (Event, bool) {
	if b&0xC0 != 0x80 {
		d.reset()
		d.pushBack(b)
		return Key(KindUnknown), true
	}
	d.utf8buf[d.utf8have] = b
	d.utf8have++
	if d.utf8have < d.utf8need {
		return Event{}, false
	}
	r, _ := utf8.DecodeRune(d.utf8buf[:d.utf8have])
	d.reset()
	if r == utf8.RuneError {
		return Key(KindUnknown), true
	}
	return Char(r), true
}

func cursorKey(b byte) Kind {
	switch b {
	case 'A':
		return KindUp
	case 'B':
		return KindDown
	case 'C':
		return KindRight
	case 'D':
		return KindLeft
	case 'H':
		return KindHome
	case 'F':
		return KindEnd
	default:
		return KindUnknown
	}
}

// utf8SequenceLength returns the encoded length announced by a leading byte,
// or 0 if b cannot start a multi-byte sequence.
func utf8SequenceLength(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}
