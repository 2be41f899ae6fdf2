// Package metrics holds the Prometheus collectors shared by the hub, the
// connection server and the command session.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seatwheel_frames_published_total",
		Help: "Total number of arrangements published to viewers",
	})

	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seatwheel_frames_dropped_total",
		Help: "Queued frames discarded because a viewer fell behind",
	})

	Viewers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seatwheel_viewers",
		Help: "Current number of subscribed viewers",
	})

	UpgradesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatwheel_upgrades_rejected_total",
		Help: "Websocket upgrade attempts that did not become a viewer",
	}, []string{"reason"})

	GenerationAttempts = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seatwheel_generation_attempts",
		Help:    "Complete assignments tried per generated arrangement",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 500, 1000, 10000},
	}, []string{"outcome"})

	Commits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seatwheel_commits_total",
		Help: "Arrangements appended to the history",
	})
)

// ObserveGeneration records one Generate call.
func ObserveGeneration(attempts int, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	GenerationAttempts.WithLabelValues(outcome).Observe(float64(attempts))
}
