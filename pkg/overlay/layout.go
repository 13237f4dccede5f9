// Package overlay computes screen-space placement for per-face info
// panels: which side of the bounding box a panel attaches to, and the
// pixel anchor it draws from.
package overlay

import "github.com/pulsegrid/go-vitalview/pkg/stream"

// Side is the side of the bounding box a panel attaches to.
type Side int

const (
	// Right attaches the panel to the right of the box (default).
	Right Side = iota
	// Left is used when the panel would clip the right viewport edge.
	Left
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Placement is the per-face, per-frame panel position. It is recomputed
// from current geometry every frame; there is no history and no
// hysteresis, so a panel may flip sides when a face crosses the
// threshold between frames.
type Placement struct {
	Side Side
	X    float64 // panel left edge, pixels
	Y    float64 // panel top edge, pixels
}

// Place decides the panel side for a box. Pure: identical inputs always
// yield the same side. The box is in normalized coordinates; viewportW,
// panelW and margin are pixels. The flip happens exactly when the panel
// would extend past the right edge.
func Place(box stream.BoundingBox, viewportW, panelW, margin float64) Side {
	boxRight := box.XMax * viewportW
	if boxRight+panelW+margin > viewportW {
		return Left
	}
	return Right
}

// Compute resolves the full placement: side plus pixel anchor. The panel
// top aligns with the box top, clamped so the panel stays inside the
// viewport vertically.
func Compute(box stream.BoundingBox, viewportW, viewportH, panelW, panelH, margin float64) Placement {
	side := Place(box, viewportW, panelW, margin)

	var x float64
	if side == Right {
		x = box.XMax*viewportW + margin
	} else {
		x = box.XMin*viewportW - margin - panelW
		if x < 0 {
			x = 0
		}
	}

	y := box.YMin * viewportH
	if y+panelH > viewportH {
		y = viewportH - panelH
	}
	if y < 0 {
		y = 0
	}

	return Placement{Side: side, X: x, Y: y}
}
