package store

import (
	"errors"

	"github.com/seatwheel/seatwheel/internal/seating"
)

var ErrInsufficientHistory = errors.New("history needs at least two arrangements")

// History is the ordered log of committed arrangements. The last entry is the
// most recent. It is owned by a single goroutine and is not safe for
// concurrent use.
type History struct {
	entries []seating.Arrangement
}

// NewHistory returns a History holding a copy of entries, oldest first.
func NewHistory(entries []seating.Arrangement) *History {
	h := &History{entries: make([]seating.Arrangement, len(entries))}
	copy(h.entries, entries)
	return h
}

// Append adds a to the end of the log. Rule checking is the generator's job.
func (h *History) Append(a seating.Arrangement) {
	h.entries = append(h.entries, a)
}

// LastTwo returns the second most recent and the most recent arrangement.
func (h *History) LastTwo() (previous, current seating.Arrangement, err error) {
	n := len(h.entries)
	if n < 2 {
		return seating.Arrangement{}, seating.Arrangement{}, ErrInsufficientHistory
	}
	return h.entries[n-2], h.entries[n-1], nil
}

// Last returns the most recent arrangement, or false if the log is empty.
func (h *History) Last() (seating.Arrangement, bool) {
	if len(h.entries) == 0 {
		return seating.Arrangement{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Snapshot returns a copy of every entry, oldest first.
func (h *History) Snapshot() []seating.Arrangement {
	out := make([]seating.Arrangement, len(h.entries))
	copy(out, h.entries)
	return out
}
