package render

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"github.com/pulsegrid/go-vitalview/pkg/stream"
)

// GaugeConfig holds the tunable drawing parameters for the radial
// expression gauge.
type GaugeConfig struct {
	// GapAngle is the fixed angular gap removed from each slice, radians.
	GapAngle float64

	// RingWidth is the stroke width of the segment arcs.
	RingWidth float64

	// FillThreshold is the minimum probability that produces a visible
	// filled arc.
	FillThreshold float64

	// LabelThreshold is the looser minimum probability that produces an
	// inward percentage label.
	LabelThreshold float64

	// TrackAlpha is the opacity of the faint full-slice background track.
	TrackAlpha float64

	// GlowAlpha and GlowScale shape the extra emphasis pass applied only
	// to the dominant category.
	GlowAlpha float64
	GlowScale float64

	// LabelOffset pushes category names outward from the ring; PercentInset
	// pulls percentage labels inward.
	LabelOffset  float64
	PercentInset float64

	// InnerRingScale positions the thin inner boundary ring relative to
	// the gauge radius.
	InnerRingScale float64

	LabelFontSize   float64
	PercentFontSize float64
	GlyphFontSize   float64
	CenterFontSize  float64
}

// DefaultGaugeConfig returns the standard gauge appearance.
func DefaultGaugeConfig() GaugeConfig {
	return GaugeConfig{
		GapAngle:        0.07,
		RingWidth:       10,
		FillThreshold:   0.01,
		LabelThreshold:  0.03,
		TrackAlpha:      0.14,
		GlowAlpha:       0.35,
		GlowScale:       2.2,
		LabelOffset:     16,
		PercentInset:    18,
		InnerRingScale:  0.46,
		LabelFontSize:   10,
		PercentFontSize: 9,
		GlyphFontSize:   16,
		CenterFontSize:  11,
	}
}

// gaugeStart puts the first slice boundary at the top of the circle.
// Fixed so the same input always produces the same layout.
const gaugeStart = -math.Pi / 2

// Gauge renders a 7-category probability distribution as a segmented
// radial gauge with per-segment fill proportional to probability and
// glow emphasis on the dominant category.
type Gauge struct {
	cfg GaugeConfig
}

// NewGauge creates a gauge renderer.
func NewGauge(cfg GaugeConfig) *Gauge {
	return &Gauge{cfg: cfg}
}

// Render draws the gauge centered at (cx, cy) with the given ring radius.
// A nil expression renders the zero distribution: tracks, ring and a
// masked center, no filled arcs.
func (g *Gauge) Render(dc *gg.Context, cx, cy, radius float64, expr *stream.Expression) {
	slice := 2 * math.Pi / float64(len(GaugeCategories))
	extent := slice - g.cfg.GapAngle

	dominant := ""
	if expr != nil {
		dominant = expr.Dominant
	}

	dc.SetLineCap(gg.LineCapButt)

	for i, cat := range GaugeCategories {
		a0 := gaugeStart + float64(i)*slice + g.cfg.GapAngle/2
		a1 := a0 + extent

		// Background track across the full reduced slice.
		dc.SetLineWidth(g.cfg.RingWidth)
		dc.SetRGBA(rgba(cat.Color, g.cfg.TrackAlpha))
		dc.DrawArc(cx, cy, radius, a0, a1)
		dc.Stroke()

		p := 0.0
		if expr != nil {
			p = expr.Probabilities[cat.Name]
		}
		if p > 1 {
			p = 1
		}

		if p >= g.cfg.FillThreshold {
			aFill := a0 + p*extent

			if cat.Name == dominant {
				dc.SetLineWidth(g.cfg.RingWidth * g.cfg.GlowScale)
				dc.SetRGBA(rgba(cat.Color, g.cfg.GlowAlpha))
				dc.DrawArc(cx, cy, radius, a0, aFill)
				dc.Stroke()
			}

			dc.SetLineWidth(g.cfg.RingWidth)
			dc.SetRGBA(rgba(cat.Color, 1))
			dc.DrawArc(cx, cy, radius, a0, aFill)
			dc.Stroke()
		}

		mid := (a0 + a1) / 2

		// Outward category label.
		lx := cx + (radius+g.cfg.LabelOffset)*math.Cos(mid)
		ly := cy + (radius+g.cfg.LabelOffset)*math.Sin(mid)
		if cat.Name == dominant {
			dc.SetFontFace(Face(g.cfg.LabelFontSize, true))
			dc.SetRGBA(1, 1, 1, 1)
		} else {
			dc.SetFontFace(Face(g.cfg.LabelFontSize, false))
			dc.SetRGBA(1, 1, 1, 0.45)
		}
		dc.DrawStringAnchored(cat.Name, lx, ly, 0.5, 0.5)

		// Inward percentage label for anything above the looser threshold.
		if p >= g.cfg.LabelThreshold {
			px := cx + (radius-g.cfg.PercentInset)*math.Cos(mid)
			py := cy + (radius-g.cfg.PercentInset)*math.Sin(mid)
			dc.SetFontFace(Face(g.cfg.PercentFontSize, false))
			dc.SetRGBA(1, 1, 1, 0.8)
			dc.DrawStringAnchored(fmt.Sprintf("%d%%", int(math.Round(p*100))), px, py, 0.5, 0.5)
		}
	}

	// Thin inner boundary ring.
	dc.SetLineWidth(1)
	dc.SetRGBA(1, 1, 1, 0.25)
	dc.DrawCircle(cx, cy, radius*g.cfg.InnerRingScale)
	dc.Stroke()

	g.renderCenter(dc, cx, cy, expr)
}

// renderCenter draws the dominant glyph and numeric confidence. With no
// expression data the readouts are masked rather than showing zeros.
func (g *Gauge) renderCenter(dc *gg.Context, cx, cy float64, expr *stream.Expression) {
	glyph := "--"
	confidence := "--"
	tint := GaugeCategories[len(GaugeCategories)-1].Color

	if expr != nil && expr.Dominant != "" {
		cat := CategoryByName(expr.Dominant)
		glyph = cat.Glyph
		tint = cat.Color
		confidence = fmt.Sprintf("%d%%", int(math.Round(expr.Confidence*100)))
	}

	dc.SetFontFace(Face(g.cfg.GlyphFontSize, true))
	dc.SetRGBA(rgba(tint, 1))
	dc.DrawStringAnchored(glyph, cx, cy-7, 0.5, 0.5)

	dc.SetFontFace(Face(g.cfg.CenterFontSize, false))
	dc.SetRGBA(1, 1, 1, 0.85)
	dc.DrawStringAnchored(confidence, cx, cy+9, 0.5, 0.5)
}

func rgba(c interface{ RGBA() (r, g, b, a uint32) }, alpha float64) (float64, float64, float64, float64) {
	r, g, b, _ := c.RGBA()
	return float64(r) / 0xffff, float64(g) / 0xffff, float64(b) / 0xffff, alpha
}
