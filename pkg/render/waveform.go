package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/pulsegrid/go-vitalview/pkg/stream"
)

// WaveformConfig holds the tunable drawing parameters for the heart-rate
// waveform panel.
type WaveformConfig struct {
	// EdgeMargin keeps the curve away from the top and bottom edges.
	EdgeMargin float64

	// Tension is the cardinal spline tension constant. 0.5 reproduces a
	// Catmull-Rom curve through the sample points.
	Tension float64

	// Amplitude scales a normalized sample to pixels around the baseline,
	// as a fraction of panel height.
	Amplitude float64

	LineWidth float64
	GlowWidth float64
	GlowAlpha float64
	FillAlpha float64
	DotRadius float64
}

// DefaultWaveformConfig returns the standard waveform appearance.
func DefaultWaveformConfig() WaveformConfig {
	return WaveformConfig{
		EdgeMargin: 6,
		Tension:    0.5,
		Amplitude:  0.35,
		LineWidth:  1.6,
		GlowWidth:  6,
		GlowAlpha:  0.25,
		FillAlpha:  0.30,
		DotRadius:  3,
	}
}

var (
	waveStable = color.RGBA{R: 0x2e, G: 0xe6, B: 0xa8, A: 0xff}
	waveLost   = color.RGBA{R: 0x6b, G: 0x72, B: 0x7c, A: 0xff}
)

// Waveform renders a rolling scalar time series as a smoothed spline with
// gradient fill and glow, plus calibration-state decoration.
type Waveform struct {
	cfg WaveformConfig
}

// NewWaveform creates a waveform renderer.
func NewWaveform(cfg WaveformConfig) *Waveform {
	return &Waveform{cfg: cfg}
}

type wavePoint struct{ x, y float64 }

// Render draws the vitals waveform into the rectangle at (x, y). An
// empty sample sequence performs no draw call at all, retaining whatever
// the surface already holds; the compositor clears each pass.
func (w *Waveform) Render(dc *gg.Context, x, y, width, height float64, v *stream.Vitals) {
	if v == nil || len(v.Waveform) == 0 {
		return
	}

	tint := waveStable
	if v.CalibrationState == stream.Lost {
		tint = waveLost
	}

	pts := w.layout(v.Waveform, x, y, width, height)
	last := pts[len(pts)-1]

	if len(pts) == 1 {
		// A single sample degenerates to the highlighted dot alone.
		w.drawDot(dc, last, tint)
	} else {
		w.drawFill(dc, pts, x, y, width, height, tint)
		w.drawStrokes(dc, pts, tint)
		w.drawDot(dc, last, tint)
	}

	switch v.CalibrationState {
	case stream.Calibrating:
		w.drawCalibrating(dc, x, y, width, height)
	case stream.Lost:
		dc.SetFontFace(Face(8, true))
		dc.SetRGBA(1, 1, 1, 0.5)
		dc.DrawStringAnchored("SIGNAL LOST", x+width-4, y+8, 1, 0.5)
	}
}

// layout maps sample index to evenly spaced x-coordinates and sample
// value to y around the panel baseline, clamped to the edge margin.
func (w *Waveform) layout(samples []float64, x, y, width, height float64) []wavePoint {
	baseline := y + height/2
	amp := height * w.cfg.Amplitude
	top := y + w.cfg.EdgeMargin
	bottom := y + height - w.cfg.EdgeMargin

	pts := make([]wavePoint, len(samples))
	step := 0.0
	if len(samples) > 1 {
		step = width / float64(len(samples)-1)
	}
	for i, s := range samples {
		py := baseline - s*amp
		if py < top {
			py = top
		}
		if py > bottom {
			py = bottom
		}
		pts[i] = wavePoint{x: x + float64(i)*step, y: py}
	}
	return pts
}

// traceSpline builds the cardinal spline path through pts. Neighbor
// lookups beyond the sequence bounds degenerate to the endpoint itself.
func (w *Waveform) traceSpline(dc *gg.Context, pts []wavePoint) {
	at := func(i int) wavePoint {
		if i < 0 {
			return pts[0]
		}
		if i >= len(pts) {
			return pts[len(pts)-1]
		}
		return pts[i]
	}

	k := w.cfg.Tension / 3
	dc.MoveTo(pts[0].x, pts[0].y)
	for i := 0; i < len(pts)-1; i++ {
		p0, p1, p2, p3 := at(i-1), at(i), at(i+1), at(i+2)
		c1x := p1.x + (p2.x-p0.x)*k
		c1y := p1.y + (p2.y-p0.y)*k
		c2x := p2.x - (p3.x-p1.x)*k
		c2y := p2.y - (p3.y-p1.y)*k
		dc.CubicTo(c1x, c1y, c2x, c2y, p2.x, p2.y)
	}
}

func (w *Waveform) drawFill(dc *gg.Context, pts []wavePoint, x, y, width, height float64, tint color.RGBA) {
	grad := gg.NewLinearGradient(0, y, 0, y+height)
	grad.AddColorStop(0, color.RGBA{R: tint.R, G: tint.G, B: tint.B, A: uint8(255 * w.cfg.FillAlpha)})
	grad.AddColorStop(1, color.RGBA{})

	w.traceSpline(dc, pts)
	dc.LineTo(pts[len(pts)-1].x, y+height)
	dc.LineTo(pts[0].x, y+height)
	dc.ClosePath()
	dc.SetFillStyle(grad)
	dc.Fill()
}

func (w *Waveform) drawStrokes(dc *gg.Context, pts []wavePoint, tint color.RGBA) {
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	// Wide blurred-looking glow pass first, crisp narrow pass on top.
	w.traceSpline(dc, pts)
	dc.SetLineWidth(w.cfg.GlowWidth)
	dc.SetRGBA(rgba(tint, w.cfg.GlowAlpha))
	dc.StrokePreserve()

	dc.SetLineWidth(w.cfg.LineWidth)
	dc.SetRGBA(rgba(tint, 1))
	dc.Stroke()
}

func (w *Waveform) drawDot(dc *gg.Context, p wavePoint, tint color.RGBA) {
	dc.SetRGBA(rgba(tint, 0.3))
	dc.DrawCircle(p.x, p.y, w.cfg.DotRadius*2)
	dc.Fill()

	dc.SetRGBA(1, 1, 1, 1)
	dc.DrawCircle(p.x, p.y, w.cfg.DotRadius)
	dc.Fill()
}

func (w *Waveform) drawCalibrating(dc *gg.Context, x, y, width, height float64) {
	dc.SetRGBA(0.04, 0.06, 0.09, 0.6)
	dc.DrawRectangle(x, y, width, height)
	dc.Fill()

	dc.SetFontFace(Face(9, true))
	dc.SetRGBA(1, 1, 1, 0.85)
	dc.DrawStringAnchored("CALIBRATING", x+width/2, y+height/2, 0.5, 0.5)
}

// FormatBPM renders the numeric heart-rate readout, masking it with a
// placeholder while the estimate is calibrating or lost.
func FormatBPM(v *stream.Vitals) string {
	if v == nil || v.CalibrationState != stream.Stable {
		return "-- BPM"
	}
	return fmt.Sprintf("%d BPM", int(math.Round(v.BPM)))
}
