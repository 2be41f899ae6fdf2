package seating

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

// DefaultMaxAttempts bounds how many complete assignments Generate tries
// before giving up.
const DefaultMaxAttempts = 10000

// ErrInfeasible is returned when no valid arrangement was found within the
// attempt budget.
var ErrInfeasible = errors.New("no valid arrangement found")

// weights[person][seat] is the relative likelihood of drawing person for seat.
// A zero weight means the person may never sit there.
type weights [SeatCount][SeatCount]float64

// Generator produces arrangements that satisfy the seat, section and
// adjacency rules. It is not safe for concurrent use.
type Generator struct {
	rng         *rand.Rand
	maxAttempts int
	observe     func(attempts int, ok bool)
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source. Tests use a seeded source for
// reproducible runs.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithMaxAttempts overrides DefaultMaxAttempts. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithObserver registers a callback invoked once per Generate call with the
// number of attempts used.
func WithObserver(fn func(attempts int, ok bool)) Option {
	return func(g *Generator) { g.observe = fn }
}

// NewGenerator returns a Generator seeded from the runtime's random source.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new arrangement given the two most recent ones.
//
// The seat and section rules are enforced by zeroing weights before the
// search, so they can never be violated by a completed assignment. The
// adjacency rule is checked after each complete assignment, and a violation
// discards that attempt.
func (g *Generator) Generate(ctx context.Context, previous, current Arrangement) (Arrangement, error) {
	if err := previous.Validate(); err != nil {
		return Arrangement{}, fmt.Errorf("previous: %w", err)
	}
	if err := current.Validate(); err != nil {
		return Arrangement{}, fmt.Errorf("current: %w", err)
	}
	w := buildWeights(previous, current)
	return g.search(ctx, &w, previous, current)
}

func buildWeights(previous, current Arrangement) weights {
	var w weights
	for person := range w {
		for seat := range w[person] {
			w[person][seat] = 1
		}
	}

	for seat, person := range previous {
		w[person][seat] = 0
	}
	for seat, person := range current {
		section := sections[seat]
		for s := range SeatCount {
			if sections[s] == section {
				w[person][s] = 0
			}
		}
	}
	return w
}

func (g *Generator) search(ctx context.Context, w *weights, previous, current Arrangement) (Arrangement, error) {
	adj := Adjacency(current)
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			g.report(attempt-1, false)
			return Arrangement{}, err
		}
		result, ok := g.attempt(w)
		if !ok || repeatsAdjacency(&adj, result) {
			continue
		}
		// The weights already rule out seat and section repeats; this is the
		// last line in case a caller hands in a hand-built weight matrix.
		if err := CheckRules(previous, current, result); err != nil {
			continue
		}
		g.report(attempt, true)
		return result, nil
	}
	g.report(g.maxAttempts, false)
	return Arrangement{}, fmt.Errorf("%w after %d attempts", ErrInfeasible, g.maxAttempts)
}

func (g *Generator) report(attempts int, ok bool) {
	if g.observe != nil {
		g.observe(attempts, ok)
	}
}

// attempt fills seats 0..15 in order. On a dead end it steps back one seat,
// excludes the person placed there and resamples; if that seat has no
// candidates left the attempt is abandoned.
func (g *Generator) attempt(w *weights) (Arrangement, bool) {
	var (
		result   Arrangement
		placed   [SeatCount]bool
		excluded [SeatCount][SeatCount]bool
	)

	seat := 0
	for seat < SeatCount {
		if person, ok := g.sample(w, seat, &placed, &excluded[seat]); ok {
			result[seat] = person
			placed[person] = true
			seat++
			continue
		}
		if seat == 0 {
			return result, false
		}

		excluded[seat] = [SeatCount]bool{}
		seat--
		undone := result[seat]
		placed[undone] = false
		excluded[seat][undone] = true

		person, ok := g.sample(w, seat, &placed, &excluded[seat])
		if !ok {
			return result, false
		}
		result[seat] = person
		placed[person] = true
		seat++
	}
	return result, true
}

// sample draws an unplaced, non-excluded person for seat with probability
// proportional to their weight there. It reports false when every remaining
// weight is zero.
func (g *Generator) sample(w *weights, seat int, placed, excluded *[SeatCount]bool) (int, bool) {
	var total float64
	for person := range SeatCount {
		if placed[person] || excluded[person] {
			continue
		}
		total += w[person][seat]
	}
	if total <= 0 {
		return 0, false
	}

	draw := g.rng.Float64() * total
	var running float64
	chosen := -1
	for person := range SeatCount {
		if placed[person] || excluded[person] || w[person][seat] <= 0 {
			continue
		}
		running += w[person][seat]
		chosen = person
		if running > draw {
			break
		}
	}
	return chosen, chosen >= 0
}
