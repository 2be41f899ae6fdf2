// Package server exposes the hub to viewers over websocket, plus a few
// plain HTTP endpoints for health checks and metrics.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/seatwheel/seatwheel/internal/display"
	"github.com/seatwheel/seatwheel/internal/hub"
	"github.com/seatwheel/seatwheel/internal/metrics"
)

// Options tunes connection handling. Zero values fall back to the defaults
// below.
type Options struct {
	// PingInterval is how often an idle viewer is pinged. A failed ping ends
	// the connection, which keeps half-dead viewers from lingering.
	PingInterval time.Duration

	// WriteTimeout bounds each frame write and ping.
	WriteTimeout time.Duration

	// AcceptRate and AcceptBurst limit websocket upgrades per second.
	AcceptRate  float64
	AcceptBurst int

	// Archive serves /commits. The routes are absent when it is nil.
	Archive CommitLog
}

const (
	defaultPingInterval = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultAcceptRate   = 20
	defaultAcceptBurst  = 40
)

// Server upgrades viewer connections and runs one delivery loop per viewer.
type Server struct {
	hub     *hub.Hub
	limiter *rate.Limiter
	opts    Options
}

// New returns a Server delivering frames from h.
func New(h *hub.Hub, opts Options) *Server {
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.AcceptRate <= 0 {
		opts.AcceptRate = defaultAcceptRate
	}
	if opts.AcceptBurst <= 0 {
		opts.AcceptBurst = defaultAcceptBurst
	}
	return &Server{
		hub:     h,
		limiter: rate.NewLimiter(rate.Limit(opts.AcceptRate), opts.AcceptBurst),
		opts:    opts,
	}
}

// Handler returns the router. Viewer loops end when serverCtx is cancelled.
//
// The websocket endpoint is served on both "/" and "/ws" because existing
// display pages connect to the bare host and port.
func (s *Server) Handler(serverCtx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.wsHandler(serverCtx))
	r.Get("/ws", s.wsHandler(serverCtx))
	r.Get("/health", s.healthHandler)
	r.Get("/current", s.currentHandler)
	r.Handle("/metrics", promhttp.Handler())
	if s.opts.Archive != nil {
		r.Get("/commits", s.commitsHandler)
		r.Get("/commits/{fingerprint}", s.commitHandler)
	}
	return r
}

// wsHandler accepts a viewer, sends the current frame and then forwards
// every published frame until either side goes away.
func (s *Server) wsHandler(serverCtx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			metrics.UpgradesRejected.WithLabelValues("rate_limited").Inc()
			slog.Warn("viewer rejected by rate limit", "remote", r.RemoteAddr)
			http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// Viewers are unauthenticated display pages served from anywhere.
			InsecureSkipVerify: true,
		})
		if err != nil {
			metrics.UpgradesRejected.WithLabelValues("handshake").Inc()
			slog.Error("websocket accept error",
				"remote", r.RemoteAddr,
				"error", err,
			)
			return
		}

		s.serveViewer(serverCtx, conn, r.RemoteAddr)
	}
}

func (s *Server) serveViewer(serverCtx context.Context, conn *websocket.Conn, remote string) {
	snapshot, sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	log := slog.With("viewer", sub.ID(), "remote", remote)
	log.Info("viewer connected")

	// Viewers never send data; CloseRead handles control frames and cancels
	// ctx once the peer closes.
	ctx := conn.CloseRead(serverCtx)

	if err := s.writeFrame(ctx, conn, snapshot); err != nil {
		log.Info("viewer disconnected", "error", err)
		conn.CloseNow()
		return
	}
	log.Debug("sent snapshot", "frame", snapshot.Text())

	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("viewer disconnected", "reason", context.Cause(ctx))
			conn.CloseNow()
			return

		case frame, ok := <-sub.Updates():
			if !ok {
				log.Info("closing viewer, hub stopped")
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := s.writeFrame(ctx, conn, frame); err != nil {
				log.Info("viewer disconnected", "error", err)
				conn.CloseNow()
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, s.opts.WriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				log.Info("viewer ping failed", "error", err)
				conn.CloseNow()
				return
			}
		}
	}
}

func (s *Server) writeFrame(ctx context.Context, conn *websocket.Conn, frame display.Frame) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, []byte(frame.Text()))
}

// healthHandler returns goroutine and viewer counts.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]int{
		"goroutines": runtime.NumGoroutine(),
		"viewers":    s.hub.SubscriberCount(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

type currentResponse struct {
	Names   []string `json:"names"`
	Text    string   `json:"text"`
	Viewers int      `json:"viewers"`
}

// currentHandler returns the frame on display as JSON.
func (s *Server) currentHandler(w http.ResponseWriter, r *http.Request) {
	frame := s.hub.Current()
	resp := currentResponse{
		Names:   frame,
		Text:    frame.Text(),
		Viewers: s.hub.SubscriberCount(),
	}
	if resp.Names == nil {
		resp.Names = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
