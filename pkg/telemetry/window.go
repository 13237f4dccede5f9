package telemetry

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Window keeps a bounded history of samples and exposes smoothed
// aggregates for the dashboard. Instantaneous FPS jitters with arrival
// timing; the status endpoint reports the windowed mean instead.
type Window struct {
	mu        sync.Mutex
	size      int
	fps       []float64
	latencyMs []float64
}

// Aggregate is the smoothed view over the window.
type Aggregate struct {
	MeanFPS       float64 `json:"mean_fps"`
	FPSStdDev     float64 `json:"fps_std_dev"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
	Samples       int     `json:"samples"`
}

// NewWindow creates a window holding up to size samples.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = 30
	}
	return &Window{size: size}
}

// Push adds one measurement, evicting the oldest beyond the bound.
func (w *Window) Push(s Sample) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.fps = append(w.fps, s.FPS)
	w.latencyMs = append(w.latencyMs, float64(s.BackendLatency)/float64(time.Millisecond))
	if len(w.fps) > w.size {
		w.fps = w.fps[1:]
		w.latencyMs = w.latencyMs[1:]
	}
}

// Aggregate computes the current windowed means.
func (w *Window) Aggregate() Aggregate {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.fps) == 0 {
		return Aggregate{}
	}

	meanFPS, stdFPS := stat.MeanStdDev(w.fps, nil)
	if len(w.fps) < 2 {
		stdFPS = 0
	}
	return Aggregate{
		MeanFPS:       meanFPS,
		FPSStdDev:     stdFPS,
		MeanLatencyMs: stat.Mean(w.latencyMs, nil),
		Samples:       len(w.fps),
	}
}
