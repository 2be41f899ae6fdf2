// Package display turns an arrangement into the list of names viewers see.
//
// Seats 0..Front-1 run along the front of the horseshoe and the remaining
// seats wrap back toward the front, so the back row is shown reversed. Blank
// cells mark the walkway breaks.
package display

import (
	"errors"
	"fmt"
	"strings"

	"github.com/seatwheel/seatwheel/internal/seating"
)

var (
	ErrRosterIndexOutOfRange = errors.New("person index outside roster")
	ErrInvalidLayout         = errors.New("invalid layout")
)

// Layout describes how seats map onto the on-screen grid.
type Layout struct {
	// Front is how many seats keep their order before the rest is mirrored.
	Front int

	// Gaps are positions in the final output where a blank cell is inserted,
	// in ascending order.
	Gaps []int
}

// DefaultLayout renders two rows of nine cells: nine front seats, then the
// seven back seats framed by walkway blanks.
var DefaultLayout = Layout{Front: 9, Gaps: []int{9, 17}}

// GapCount is the number of walkway blanks in every frame.
const GapCount = 2

// Validate checks the layout against the fixed seat count.
func (l Layout) Validate() error {
	if l.Front < 0 || l.Front > seating.SeatCount {
		return fmt.Errorf("%w: front %d outside [0,%d]", ErrInvalidLayout, l.Front, seating.SeatCount)
	}
	if len(l.Gaps) != GapCount {
		return fmt.Errorf("%w: need exactly %d gaps, got %d", ErrInvalidLayout, GapCount, len(l.Gaps))
	}
	last := -1
	for i, gap := range l.Gaps {
		if gap <= last {
			return fmt.Errorf("%w: gaps must be strictly ascending", ErrInvalidLayout)
		}
		// Each gap can at most extend the sequence built so far by one.
		if gap > seating.SeatCount+i {
			return fmt.Errorf("%w: gap %d beyond end of row", ErrInvalidLayout, gap)
		}
		last = gap
	}
	return nil
}

// Frame is one displayed arrangement: roster names in on-screen order with
// blank strings at the walkway positions.
type Frame []string

// Text is the wire form of a frame: names joined by commas.
func (f Frame) Text() string {
	return strings.Join(f, ",")
}

// Clone returns an independent copy of f.
func (f Frame) Clone() Frame {
	if f == nil {
		return nil
	}
	out := make(Frame, len(f))
	copy(out, f)
	return out
}

// Mirror reorders seat positions into on-screen order: the first Front
// seats unchanged, followed by the rest in reverse.
func (l Layout) Mirror(a seating.Arrangement) []int {
	out := make([]int, 0, seating.SeatCount)
	out = append(out, a[:l.Front]...)
	for seat := seating.SeatCount - 1; seat >= l.Front; seat-- {
		out = append(out, a[seat])
	}
	return out
}

// ToDisplay mirrors a, replaces each person index with its roster name and
// inserts the walkway blanks.
func (l Layout) ToDisplay(a seating.Arrangement, roster []string) (Frame, error) {
	mirrored := l.Mirror(a)

	frame := make(Frame, 0, len(mirrored)+len(l.Gaps))
	gaps := l.Gaps
	for _, person := range mirrored {
		for len(gaps) > 0 && gaps[0] == len(frame) {
			frame = append(frame, "")
			gaps = gaps[1:]
		}
		if person < 0 || person >= len(roster) {
			return nil, fmt.Errorf("%w: %d (roster has %d names)", ErrRosterIndexOutOfRange, person, len(roster))
		}
		frame = append(frame, roster[person])
	}
	for range gaps {
		frame = append(frame, "")
	}
	return frame, nil
}

// ToDisplay renders a with DefaultLayout.
func ToDisplay(a seating.Arrangement, roster []string) (Frame, error) {
	return DefaultLayout.ToDisplay(a, roster)
}
