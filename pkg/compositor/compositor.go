// Package compositor orchestrates the render pipeline: on each snapshot
// it updates telemetry, recomputes panel placements for the current
// viewport, and draws every face's gauge and waveform into one frame.
package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sort"
	"sync"
	"time"

	"github.com/fogleman/gg"

	"github.com/pulsegrid/go-vitalview/internal/log"
	"github.com/pulsegrid/go-vitalview/pkg/overlay"
	"github.com/pulsegrid/go-vitalview/pkg/render"
	"github.com/pulsegrid/go-vitalview/pkg/stream"
	"github.com/pulsegrid/go-vitalview/pkg/telemetry"
)

// Config holds the compositor's layout parameters.
type Config struct {
	// ViewportWidth and ViewportHeight are the initial surface size.
	// Browsers report resizes through SetViewport.
	ViewportWidth  int
	ViewportHeight int

	// PanelWidth, PanelHeight and PanelMargin shape the per-face overlay
	// panels and feed the side-flip decision.
	PanelWidth  float64
	PanelHeight float64
	PanelMargin float64

	// GaugeRadius is the expression ring radius inside a panel.
	GaugeRadius float64

	// JPEGQuality is the encode quality for broadcast frames.
	JPEGQuality int

	// TelemetryWindow is the rolling aggregate size in samples.
	TelemetryWindow int
}

// DefaultConfig returns the standard dashboard layout.
func DefaultConfig() Config {
	return Config{
		ViewportWidth:   960,
		ViewportHeight:  540,
		PanelWidth:      176,
		PanelHeight:     236,
		PanelMargin:     12,
		GaugeRadius:     46,
		JPEGQuality:     80,
		TelemetryWindow: 30,
	}
}

// Status is the dashboard state broadcast alongside each frame.
type Status struct {
	Connected bool                `json:"connected"`
	FrameID   int64               `json:"frame_id"`
	FaceCount int                 `json:"face_count"`
	FPS       float64             `json:"fps"`
	LatencyMs float64             `json:"latency_ms"`
	Window    telemetry.Aggregate `json:"window"`
}

// Output receives rendered frames and status updates, typically the web
// server's broadcast hubs.
type Output interface {
	BroadcastFrame(jpegData []byte)
	BroadcastStatus(status Status)
}

// Compositor turns snapshots into rendered frames. All drawing happens
// on the single Run goroutine; a new snapshot's render pass starts only
// after the previous one's drawing has completed.
type Compositor struct {
	cfg      Config
	tracker  *telemetry.Tracker
	gauge    *render.Gauge
	waveform *render.Waveform

	mu        sync.RWMutex
	viewportW int
	viewportH int
	connected bool
	last      Status
}

// New creates a compositor with the given layout.
func New(cfg Config) *Compositor {
	return &Compositor{
		cfg:       cfg,
		tracker:   telemetry.NewTracker(cfg.TelemetryWindow),
		gauge:     render.NewGauge(render.DefaultGaugeConfig()),
		waveform:  render.NewWaveform(render.DefaultWaveformConfig()),
		viewportW: cfg.ViewportWidth,
		viewportH: cfg.ViewportHeight,
	}
}

// SetViewport updates the surface size from a host resize notification.
// The next render pass picks it up; placements always use the current
// viewport.
func (c *Compositor) SetViewport(w, h int) {
	if w < 320 || h < 180 {
		return
	}
	c.mu.Lock()
	c.viewportW, c.viewportH = w, h
	c.mu.Unlock()
}

// Status returns the most recent broadcast state.
func (c *Compositor) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Run consumes the client's snapshot and status sequences until ctx is
// cancelled. Snapshots are processed strictly in arrival order; if
// rendering cannot keep up, the client's latest-wins channel has already
// dropped the intermediate frames.
func (c *Compositor) Run(ctx context.Context, client *stream.Client, out Output) {
	defer client.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case connected := <-client.Status():
			c.mu.Lock()
			c.connected = connected
			c.mu.Unlock()
			if !connected {
				out.BroadcastFrame(c.encode(c.renderDisconnected()))
			}
			c.publishStatus(out)

		case snap := <-client.Snapshots():
			sample := c.tracker.Observe(snap, time.Now())
			img := c.Composite(snap, sample)
			out.BroadcastFrame(c.encode(img))

			c.mu.Lock()
			c.connected = true
			c.last = Status{
				Connected: true,
				FrameID:   snap.FrameID,
				FaceCount: len(snap.Faces),
				FPS:       sample.FPS,
				LatencyMs: float64(sample.BackendLatency) / float64(time.Millisecond),
				Window:    c.tracker.Window().Aggregate(),
			}
			c.mu.Unlock()
			out.BroadcastStatus(c.Status())
		}
	}
}

// Composite renders one snapshot into a fresh surface. Faces absent from
// the snapshot are simply not drawn; there is no carry-over.
func (c *Compositor) Composite(snap stream.Snapshot, sample telemetry.Sample) image.Image {
	c.mu.RLock()
	w, h := c.viewportW, c.viewportH
	c.mu.RUnlock()
	vw, vh := float64(w), float64(h)

	dc := gg.NewContext(w, h)
	c.drawBackground(dc, snap, vw, vh)

	// Deterministic face order regardless of map iteration.
	ids := make([]string, 0, len(snap.Faces))
	for id := range snap.Faces {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		face := snap.Faces[id]
		c.drawBoundingBox(dc, face, vw, vh)
		pl := overlay.Compute(face.BBox, vw, vh, c.cfg.PanelWidth, c.cfg.PanelHeight, c.cfg.PanelMargin)
		c.drawPanel(dc, id, face, pl)
	}

	c.drawTelemetry(dc, sample, vw, vh)
	return dc.Image()
}

func (c *Compositor) drawBackground(dc *gg.Context, snap stream.Snapshot, vw, vh float64) {
	dc.SetRGB(0.05, 0.07, 0.10)
	dc.Clear()

	if len(snap.Frame) > 0 {
		if img, err := jpeg.Decode(bytes.NewReader(snap.Frame)); err == nil {
			b := img.Bounds()
			dc.Push()
			dc.Scale(vw/float64(b.Dx()), vh/float64(b.Dy()))
			dc.DrawImage(img, 0, 0)
			dc.Pop()
			return
		}
	}

	if len(snap.Faces) == 0 {
		dc.SetFontFace(render.Face(13, false))
		dc.SetRGBA(1, 1, 1, 0.4)
		dc.DrawStringAnchored("awaiting feed", vw/2, vh/2, 0.5, 0.5)
	}
}

func (c *Compositor) drawBoundingBox(dc *gg.Context, face stream.Face, vw, vh float64) {
	x := face.BBox.XMin * vw
	y := face.BBox.YMin * vh
	bw := face.BBox.Width() * vw
	bh := face.BBox.Height() * vh

	dc.SetLineWidth(2)
	dc.SetRGBA(0.18, 0.9, 0.66, 0.9)
	dc.DrawRoundedRectangle(x, y, bw, bh, 4)
	dc.Stroke()

	dc.SetFontFace(render.Face(9, false))
	dc.SetRGBA(1, 1, 1, 0.7)
	dc.DrawStringAnchored(fmt.Sprintf("track %.0f%%", face.Confidence*100), x+4, y-8, 0, 0.5)
}

func (c *Compositor) drawPanel(dc *gg.Context, id string, face stream.Face, pl overlay.Placement) {
	x, y := pl.X, pl.Y
	pw, ph := c.cfg.PanelWidth, c.cfg.PanelHeight

	dc.SetRGBA(0.03, 0.05, 0.08, 0.82)
	dc.DrawRoundedRectangle(x, y, pw, ph, 8)
	dc.Fill()

	// Identity header; missing recognition renders explicit neutral
	// defaults rather than failing the pass.
	name := "Unknown"
	detail := ""
	if face.Identity != nil {
		if face.Identity.Name != "" {
			name = face.Identity.Name
		}
		if face.Identity.Gender != "" || face.Identity.AgeBucket != "" {
			detail = fmt.Sprintf("%s %s", face.Identity.Gender, face.Identity.AgeBucket)
		}
	}

	dc.SetFontFace(render.Face(11, true))
	dc.SetRGBA(1, 1, 1, 0.95)
	dc.DrawStringAnchored(name, x+pw/2, y+14, 0.5, 0.5)
	if detail != "" {
		dc.SetFontFace(render.Face(8, false))
		dc.SetRGBA(1, 1, 1, 0.5)
		dc.DrawStringAnchored(detail, x+pw/2, y+26, 0.5, 0.5)
	}

	c.gauge.Render(dc, x+pw/2, y+96, c.cfg.GaugeRadius, face.Expression)

	dc.SetFontFace(render.Face(10, true))
	dc.SetRGBA(1, 1, 1, 0.9)
	dc.DrawStringAnchored(render.FormatBPM(face.Vitals), x+pw/2, y+170, 0.5, 0.5)

	c.waveform.Render(dc, x+8, y+178, pw-16, ph-186, face.Vitals)
}

func (c *Compositor) drawTelemetry(dc *gg.Context, sample telemetry.Sample, vw, vh float64) {
	dc.SetRGBA(0, 0, 0, 0.45)
	dc.DrawRectangle(0, vh-22, vw, 22)
	dc.Fill()

	text := "fps --  latency --"
	if !sample.First {
		text = fmt.Sprintf("fps %.1f  latency %dms",
			sample.FPS, sample.BackendLatency.Milliseconds())
	}
	dc.SetFontFace(render.Face(9, false))
	dc.SetRGBA(1, 1, 1, 0.75)
	dc.DrawStringAnchored(text, 8, vh-11, 0, 0.5)
}

// renderDisconnected paints the non-blocking disconnected indicator
// frame shown while the stream client retries.
func (c *Compositor) renderDisconnected() image.Image {
	c.mu.RLock()
	w, h := c.viewportW, c.viewportH
	c.mu.RUnlock()

	dc := gg.NewContext(w, h)
	dc.SetRGB(0.05, 0.07, 0.10)
	dc.Clear()

	dc.SetFontFace(render.Face(15, true))
	dc.SetRGBA(1, 0.55, 0.4, 0.9)
	dc.DrawStringAnchored("disconnected", float64(w)/2, float64(h)/2-10, 0.5, 0.5)

	dc.SetFontFace(render.Face(10, false))
	dc.SetRGBA(1, 1, 1, 0.5)
	dc.DrawStringAnchored("reconnecting to inference gateway...", float64(w)/2, float64(h)/2+12, 0.5, 0.5)

	return dc.Image()
}

func (c *Compositor) publishStatus(out Output) {
	c.mu.Lock()
	c.last.Connected = c.connected
	st := c.last
	c.mu.Unlock()
	out.BroadcastStatus(st)
}

func (c *Compositor) encode(img image.Image) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.cfg.JPEGQuality}); err != nil {
		log.Error("frame encode failed", "error", err)
		return nil
	}
	return buf.Bytes()
}
