// Package hub implements the broadcast side of the seating display. The Hub
// keeps the frame currently on screen and fans every new frame out to the
// subscribed viewers, each through its own bounded queue.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/seatwheel/seatwheel/internal/display"
	"github.com/seatwheel/seatwheel/internal/metrics"
)

// DefaultBuffer is the per-viewer queue length used when NewHub is given a
// non-positive size.
const DefaultBuffer = 16

// Subscription is one viewer's queue of published frames.
type Subscription struct {
	id      string
	updates chan display.Frame
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Updates yields frames in publish order. Frames are shared between
// subscribers and must not be modified. The channel is closed on Unsubscribe or
// when the hub stops.
func (s *Subscription) Updates() <-chan display.Frame {
	return s.updates
}

// Hub holds the current frame and the set of active subscriptions. All state
// lives behind one mutex; Publish never blocks on a viewer.
type Hub struct {
	// current is the frame new subscribers receive first.
	current display.Frame

	// subs is the set of active subscriptions.
	subs map[*Subscription]struct{}

	// buffer is the queue length of each subscription.
	buffer int

	// stopped is set once Run returns; later subscriptions are closed
	// immediately.
	stopped bool

	mu sync.RWMutex
}

// NewHub creates a Hub showing initial, with per-viewer queues of buffer
// frames.
func NewHub(initial display.Frame, buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		current: initial.Clone(),
		subs:    make(map[*Subscription]struct{}),
		buffer:  buffer,
	}
}

// Run blocks until ctx is cancelled and then closes every subscription so
// delivery loops exit. Run should be called in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	for sub := range h.subs {
		close(sub.updates)
		delete(h.subs, sub)
	}
	h.stopped = true
	metrics.Viewers.Set(0)
	h.mu.Unlock()

	slog.Info("hub stopped")
}

// Publish makes frame current and queues it for every subscriber. When a
// subscriber's queue is full its oldest queued frame is dropped to make room,
// so a slow viewer skips intermediate frames but never sees them out of
// order.
func (h *Hub) Publish(frame display.Frame) {
	frame = frame.Clone()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = frame
	metrics.FramesPublished.Inc()

	for sub := range h.subs {
		select {
		case sub.updates <- frame:
			continue
		default:
		}

		// The publisher is the only sender and holds the lock, so once a
		// slot is freed the second send cannot block.
		select {
		case <-sub.updates:
			metrics.FramesDropped.Inc()
			slog.Debug("dropped stale frame", "viewer", sub.id)
		default:
		}
		select {
		case sub.updates <- frame:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns the current frame
// together with its subscription. Both happen under the same lock, so a
// concurrent Publish is either reflected in the snapshot or delivered on the
// subscription, never lost.
func (h *Hub) Subscribe() (display.Frame, *Subscription) {
	sub := &Subscription{
		id:      uuid.NewString(),
		updates: make(chan display.Frame, h.buffer),
	}

	h.mu.Lock()
	snapshot := h.current.Clone()
	if h.stopped {
		close(sub.updates)
		h.mu.Unlock()
		return snapshot, sub
	}
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	metrics.Viewers.Set(float64(n))
	h.mu.Unlock()

	slog.Info("viewer subscribed",
		"viewer", sub.id,
		"viewers", n,
	)
	return snapshot, sub
}

// Unsubscribe removes sub and closes its queue. It is safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subs, sub)
	close(sub.updates)
	n := len(h.subs)
	metrics.Viewers.Set(float64(n))
	h.mu.Unlock()

	slog.Info("viewer unsubscribed",
		"viewer", sub.id,
		"viewers", n,
	)
}

// SubscriberCount returns the number of active subscriptions.
// It is safe for concurrent use.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Current returns the frame currently on display.
// It is safe for concurrent use.
func (h *Hub) Current() display.Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Clone()
}
