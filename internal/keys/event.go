// SPDX-License-Identifier: MPL-2.0

package keys

import "fmt"

const (
	// KindUnknown is an unrecognised byte or escape sequence.
	KindUnknown Kind = iota
	// KindChar is a printable character; Event.Char holds the rune.
	KindChar
	KindEnter
	KindBackspace
	KindDelete
	KindTab
	KindEscape
	KindUp
	KindDown
	KindLeft
	KindRight
	KindHome
	KindEnd
	KindWordLeft
	KindWordRight
	KindKillToStart
	KindKillToEnd
	KindDeleteWordBack
	KindClearScreen
	KindInterrupt
	// KindEndOfInput is Ctrl+D or an exhausted byte source.
	KindEndOfInput
)

var kindNames = [...]string{
	KindUnknown:        "Unknown",
	KindChar:           "Char",
	KindEnter:          "Enter",
	KindBackspace:      "Backspace",
	KindDelete:         "Delete",
	KindTab:            "Tab",
	KindEscape:         "Escape",
	KindUp:             "Up",
	KindDown:           "Down",
	KindLeft:           "Left",
	KindRight:          "Right",
	KindHome:           "Home",
	KindEnd:            "End",
	KindWordLeft:       "WordLeft",
	KindWordRight:      "WordRight",
	KindKillToStart:    "KillToStart",
	KindKillToEnd:      "KillToEnd",
	KindDeleteWordBack: "DeleteWordBack",
	KindClearScreen:    "ClearScreen",
	KindInterrupt:      "Interrupt",
	KindEndOfInput:     "EndOfInput",
}

type (
	// Kind identifies a logical key.
	Kind int

	// Event is one decoded key press. Char is only meaningful for KindChar.
	Event struct {
		Kind Kind
		Char rune
	}
)

// String returns the name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Key returns an Event for a named key.
func Key(k Kind) Event {
	return Event{Kind: k}
}

// Char returns a printable character Event.
func Char(r rune) Event {
	return Event{Kind: KindChar, Char: r}
}

// String renders the event for logs and test failures.
func (e Event) String() string {
	if e.Kind == KindChar {
		return fmt.Sprintf("Char(%q)", e.Char)
	}
	return e.Kind.String()
}

// controlKeys maps single control bytes to their key.
var controlKeys = map[byte]Kind{
	0x01: KindHome,
	0x03: KindInterrupt,
	0x04: KindEndOfInput,
	0x05: KindEnd,
	0x08: KindBackspace,
	0x09: KindTab,
	0x0A: KindEnter,
	0x0B: KindKillToEnd,
	0x0C: KindClearScreen,
	0x0D: KindEnter,
	0x15: KindKillToStart,
	0x17: KindDeleteWordBack,
	0x7F: KindBackspace,
}
