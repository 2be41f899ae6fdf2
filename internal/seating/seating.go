// Package seating describes the fixed sixteen-seat layout and generates new
// arrangements that avoid repeating the recent history.
//
// Seats are numbered 0..15 along the horseshoe. Each seat belongs to one of
// four sections, and two seats are adjacent when their indices differ by one.
package seating

import (
	"errors"
	"fmt"
)

const (
	// SeatCount is the number of seats, and the roster size.
	SeatCount = 16

	// SectionCount is the number of zones seats are grouped into.
	SectionCount = 4
)

var (
	ErrOutOfRange         = errors.New("seat index out of range")
	ErrInvalidArrangement = errors.New("arrangement is not a permutation of the roster")
)

// sections maps seat index to section. The layout is symmetric: the two ends
// of the horseshoe share section 0 and the middle belongs to section 3.
var sections = [SeatCount]int{0, 0, 1, 1, 2, 2, 3, 3, 3, 3, 2, 2, 1, 1, 0, 0}

// Arrangement assigns a person index to every seat: a[i] is the person
// sitting at seat i.
type Arrangement [SeatCount]int

// Identity returns the arrangement where person i sits at seat i.
func Identity() Arrangement {
	var a Arrangement
	for i := range a {
		a[i] = i
	}
	return a
}

// FromSlice converts a decoded history entry into an Arrangement and
// validates it.
func FromSlice(values []int) (Arrangement, error) {
	var a Arrangement
	if len(values) != SeatCount {
		return a, fmt.Errorf("%w: expected %d seats, got %d", ErrInvalidArrangement, SeatCount, len(values))
	}
	copy(a[:], values)
	if err := a.Validate(); err != nil {
		return Arrangement{}, err
	}
	return a, nil
}

// Slice returns the arrangement as a freshly allocated slice.
func (a Arrangement) Slice() []int {
	out := make([]int, SeatCount)
	copy(out, a[:])
	return out
}

// Validate reports whether every person index is in range and appears once.
func (a Arrangement) Validate() error {
	var seen [SeatCount]bool
	for seat, person := range a {
		if person < 0 || person >= SeatCount {
			return fmt.Errorf("%w: seat %d holds person %d", ErrInvalidArrangement, seat, person)
		}
		if seen[person] {
			return fmt.Errorf("%w: person %d seated twice", ErrInvalidArrangement, person)
		}
		seen[person] = true
	}
	return nil
}

// SeatOf returns the seat index each person occupies.
func (a Arrangement) SeatOf() [SeatCount]int {
	var seats [SeatCount]int
	for seat, person := range a {
		seats[person] = seat
	}
	return seats
}

// Section returns the section the given seat belongs to.
func Section(seat int) (int, error) {
	if seat < 0 || seat >= SeatCount {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, seat)
	}
	return sections[seat], nil
}

// SeatsInSection returns the seat indices that make up a section, in order.
func SeatsInSection(section int) []int {
	var seats []int
	for seat, s := range sections {
		if s == section {
			seats = append(seats, seat)
		}
	}
	return seats
}

// NeighborsOf returns the people seated directly beside seat in a. End seats
// have a single neighbour.
func NeighborsOf(a Arrangement, seat int) ([]int, error) {
	if seat < 0 || seat >= SeatCount {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, seat)
	}
	neighbors := make([]int, 0, 2)
	if seat > 0 {
		neighbors = append(neighbors, a[seat-1])
	}
	if seat < SeatCount-1 {
		neighbors = append(neighbors, a[seat+1])
	}
	return neighbors, nil
}

// AdjacencySet records which pairs of people sat next to each other.
type AdjacencySet [SeatCount][SeatCount]bool

// Adjacency builds the symmetric person-pair relation for a.
func Adjacency(a Arrangement) AdjacencySet {
	var adj AdjacencySet
	for seat := 0; seat < SeatCount-1; seat++ {
		p, q := a[seat], a[seat+1]
		adj[p][q] = true
		adj[q][p] = true
	}
	return adj
}

// Adjacent reports whether persons p and q were neighbours.
func (s *AdjacencySet) Adjacent(p, q int) bool {
	return s[p][q]
}
