package seating

import (
	"errors"
	"fmt"
)

var (
	ErrSeatRepeat      = errors.New("person returned to their previous seat")
	ErrSectionRepeat   = errors.New("person stayed in their current section")
	ErrAdjacencyRepeat = errors.New("neighbours from the current arrangement are still adjacent")
)

// CheckRules verifies result against the two most recent arrangements and
// returns the first rule it breaks, or nil.
func CheckRules(previous, current, result Arrangement) error {
	if err := result.Validate(); err != nil {
		return err
	}
	for seat := range result {
		if result[seat] == previous[seat] {
			return fmt.Errorf("%w: person %d at seat %d", ErrSeatRepeat, result[seat], seat)
		}
	}

	currentSeat := current.SeatOf()
	for seat, person := range result {
		if sections[seat] == sections[currentSeat[person]] {
			return fmt.Errorf("%w: person %d in section %d", ErrSectionRepeat, person, sections[seat])
		}
	}

	adj := Adjacency(current)
	for seat := 0; seat < SeatCount-1; seat++ {
		p, q := result[seat], result[seat+1]
		if adj.Adjacent(p, q) {
			return fmt.Errorf("%w: persons %d and %d at seats %d-%d", ErrAdjacencyRepeat, p, q, seat, seat+1)
		}
	}
	return nil
}

// repeatsAdjacency reports whether any consecutive pair in result appears in adj.
func repeatsAdjacency(adj *AdjacencySet, result Arrangement) bool {
	for seat := 0; seat < SeatCount-1; seat++ {
		if adj.Adjacent(result[seat], result[seat+1]) {
			return true
		}
	}
	return false
}
