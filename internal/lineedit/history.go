// SPDX-License-Identifier: MPL-2.0

package lineedit

import (
	"slices"
	"strings"
)

// DefaultMaxHistory is the history bound used when none is configured.
const DefaultMaxHistory = 1000

// History holds accepted lines oldest first, plus the browsing state of the
// line currently being edited. Index Len() is the draft slot.
type History struct {
	entries []string
	max     int

	index int
	draft string
}

// NewHistory creates a History bounded to maxSize entries. A non-positive
// maxSize selects DefaultMaxHistory.
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultMaxHistory
	}
	return &History{max: maxSize}
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}

// MaxSize returns the configured bound.
func (h *History) MaxSize() int {
	return h.max
}

// SetMaxSize changes the bound, evicting the oldest entries if needed.
func (h *History) SetMaxSize(n int) {
	if n <= 0 {
		n = DefaultMaxHistory
	}
	h.max = n
	h.trim()
}

// Entries returns a copy of the stored lines, oldest first.
func (h *History) Entries() []string {
	return slices.Clone(h.entries)
}

// Add records an accepted line. Whitespace-only lines and a repeat of the
// most recent entry are ignored. Returns true if the line was stored.
func (h *History) Add(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return false
	}
	h.entries = append(h.entries, line)
	h.trim()
	return true
}

// Clear removes every entry.
func (h *History) Clear() {
	h.entries = nil
	h.index = 0
	h.draft = ""
}

// Begin starts a new browsing session positioned on an empty draft.
func (h *History) Begin() {
	h.index = len(h.entries)
	h.draft = ""
}

// Prev moves one entry back. current is the live buffer, saved as the draft
// when browsing starts. ok is false when nothing changed.
func (h *History) Prev(current string) (line string, ok bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.index == len(h.entries) {
		h.draft = current
	}
	next := max(h.index-1, 0)
	if next == h.index {
		return "", false
	}
	h.index = next
	return h.entries[h.index], true
}

// Next moves one entry forward, returning the draft when it reaches the end.
func (h *History) Next() (line string, ok bool) {
	next := min(h.index+1, len(h.entries))
	if next == h.index {
		return "", false
	}
	h.index = next
	if h.index == len(h.entries) {
		return h.draft, true
	}
	return h.entries[h.index], true
}

func (h *History) trim() {
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = slices.Delete(h.entries, 0, over)
	}
	h.index = min(h.index, len(h.entries))
}
