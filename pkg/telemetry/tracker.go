// Package telemetry derives liveness metrics from snapshot arrivals:
// instantaneous inter-arrival FPS and backend-to-client latency.
package telemetry

import (
	"time"

	"github.com/pulsegrid/go-vitalview/pkg/stream"
)

// Sample is the measurement derived from one snapshot arrival.
type Sample struct {
	// FPS is the instantaneous rate from the delta between consecutive
	// arrivals. Zero on the first observation.
	FPS float64

	// BackendLatency is client wall clock minus the server production
	// timestamp, floored at zero. Clock skew never reports negative.
	BackendLatency time.Duration

	// First marks the very first observation, where FPS is undefined.
	First bool
}

// Tracker computes per-arrival telemetry. Its only mutable state is the
// last arrival time, updated unconditionally on every observation.
type Tracker struct {
	lastArrival time.Time
	window      *Window
}

// NewTracker creates a tracker with a rolling aggregate window.
func NewTracker(windowSize int) *Tracker {
	return &Tracker{window: NewWindow(windowSize)}
}

// Observe records one snapshot arrival and returns its measurement.
func (t *Tracker) Observe(snap stream.Snapshot, arrival time.Time) Sample {
	s := Sample{First: t.lastArrival.IsZero()}

	if !s.First {
		if dt := arrival.Sub(t.lastArrival); dt > 0 {
			s.FPS = 1000 / (float64(dt) / float64(time.Millisecond))
		}
	}

	serverTime := time.UnixMilli(int64(snap.Timestamp * 1000))
	if lat := arrival.Sub(serverTime); lat > 0 {
		s.BackendLatency = lat
	}

	t.lastArrival = arrival
	if !s.First {
		t.window.Push(s)
	}
	return s
}

// Window returns the rolling aggregate view.
func (t *Tracker) Window() *Window { return t.window }
