// Package session owns the seating state driven by the operator: the roster,
// the committed history and the working arrangement. It is the only writer of
// that state; viewers only ever see the frames it publishes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seatwheel/seatwheel/internal/display"
	"github.com/seatwheel/seatwheel/internal/fingerprint"
	"github.com/seatwheel/seatwheel/internal/metrics"
	"github.com/seatwheel/seatwheel/internal/printer"
	"github.com/seatwheel/seatwheel/internal/seating"
	"github.com/seatwheel/seatwheel/internal/store"
)

var ErrNoHistoryPath = errors.New("no history file configured")

// Publisher receives every frame the session renders.
type Publisher interface {
	Publish(display.Frame)
}

// Recorder archives committed arrangements.
type Recorder interface {
	Record(seating.Arrangement) (store.Commit, error)
}

// Config wires a Session to its collaborators.
type Config struct {
	Roster    []string
	History   *store.History
	Generator *seating.Generator
	Layout    display.Layout
	Publisher Publisher

	// HistoryPath is where "write json" saves the history.
	HistoryPath string

	// Archive is optional.
	Archive Recorder

	// Out receives operator messages; nil means stdout.
	Out *printer.Printer
}

// Session is not safe for concurrent use; a single command loop drives it.
type Session struct {
	roster      []string
	history     *store.History
	gen         *seating.Generator
	layout      display.Layout
	pub         Publisher
	historyPath string
	archive     Recorder
	out         *printer.Printer

	// working is the arrangement on display; it equals the last history
	// entry until a scramble replaces it.
	working seating.Arrangement
}

// New validates cfg and returns a Session whose working arrangement is the
// most recent history entry.
func New(cfg Config) (*Session, error) {
	if cfg.History == nil {
		return nil, errors.New("session: history is required")
	}
	if cfg.Publisher == nil {
		return nil, errors.New("session: publisher is required")
	}
	if len(cfg.Roster) != seating.SeatCount {
		return nil, fmt.Errorf("session: roster has %d names, need %d", len(cfg.Roster), seating.SeatCount)
	}
	if _, _, err := cfg.History.LastTwo(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if cfg.Layout.Front == 0 && cfg.Layout.Gaps == nil {
		cfg.Layout = display.DefaultLayout
	}
	if err := cfg.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if cfg.Generator == nil {
		cfg.Generator = seating.NewGenerator()
	}
	if cfg.Out == nil {
		cfg.Out = printer.New(nil)
	}

	last, _ := cfg.History.Last()
	return &Session{
		roster:      cfg.Roster,
		history:     cfg.History,
		gen:         cfg.Generator,
		layout:      cfg.Layout,
		pub:         cfg.Publisher,
		historyPath: cfg.HistoryPath,
		archive:     cfg.Archive,
		out:         cfg.Out,
		working:     last,
	}, nil
}

// Working returns the arrangement currently on display.
func (s *Session) Working() seating.Arrangement {
	return s.working
}

// Frame renders the working arrangement.
func (s *Session) Frame() (display.Frame, error) {
	return s.layout.ToDisplay(s.working, s.roster)
}

func (s *Session) publishWorking() error {
	frame, err := s.Frame()
	if err != nil {
		return err
	}
	s.pub.Publish(frame)
	return nil
}

// Scramble generates iterations new arrangements from the last two history
// entries, publishing each one. delay is waited between iterations, not
// before the first.
func (s *Session) Scramble(ctx context.Context, iterations int, delay time.Duration) error {
	for i := range iterations {
		if i > 0 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		previous, current, err := s.history.LastTwo()
		if err != nil {
			return err
		}
		next, err := s.gen.Generate(ctx, previous, current)
		if err != nil {
			return fmt.Errorf("scramble %d/%d: %w", i+1, iterations, err)
		}
		s.working = next
		if err := s.publishWorking(); err != nil {
			return err
		}
		slog.Debug("published arrangement",
			"fingerprint", fingerprint.Generate(next),
			"iteration", i+1,
		)
	}
	s.out.Info("done")
	if iterations > 0 {
		s.out.Highlight("%s %v", fingerprint.Generate(s.working), s.working.Slice())
	}
	return nil
}

// Write commits the working arrangement unless it is already the last
// history entry. With persist set the full history is then saved, whether or
// not anything new was committed. It reports whether an entry was appended.
//
// A failed save leaves the in-memory history as it is.
func (s *Session) Write(persist bool) (bool, error) {
	last, _ := s.history.Last()
	pushed := false
	if s.working == last {
		s.out.Warning("Already pushed")
	} else {
		s.history.Append(s.working)
		pushed = true
		metrics.Commits.Inc()
		s.out.Success("pushing %s", fingerprint.Generate(s.working))
		s.archiveWorking()
		for _, a := range s.history.Snapshot() {
			s.out.Highlight("%v", a.Slice())
		}
	}

	if !persist {
		return pushed, nil
	}
	if s.historyPath == "" {
		return pushed, ErrNoHistoryPath
	}
	if err := store.SaveHistory(s.historyPath, s.history.Snapshot()); err != nil {
		return pushed, fmt.Errorf("save history: %w", err)
	}
	s.out.Success("Wrote to json")
	return pushed, nil
}

func (s *Session) archiveWorking() {
	if s.archive == nil {
		return
	}
	commit, err := s.archive.Record(s.working)
	if err != nil {
		slog.Error("archive commit failed", "error", err)
		return
	}
	slog.Info("archived commit",
		"sequence", commit.Sequence,
		"fingerprint", commit.Fingerprint,
	)
}

// Reset drops any uncommitted scramble and republishes the last history
// entry.
func (s *Session) Reset() error {
	last, _ := s.history.Last()
	s.working = last
	return s.publishWorking()
}
