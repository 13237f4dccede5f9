package overlay

import (
	"testing"

	"github.com/pulsegrid/go-vitalview/pkg/stream"
)

func TestPlace_DefaultsRight(t *testing.T) {
	box := stream.BoundingBox{XMin: 0.1, YMin: 0.1, XMax: 0.3, YMax: 0.4}
	if side := Place(box, 1000, 180, 12); side != Right {
		t.Errorf("side = %v, want right", side)
	}
}

func TestPlace_FlipsLeftNearEdge(t *testing.T) {
	box := stream.BoundingBox{XMin: 0.7, YMin: 0.1, XMax: 0.95, YMax: 0.4}
	if side := Place(box, 1000, 180, 12); side != Left {
		t.Errorf("side = %v, want left", side)
	}
}

func TestPlace_ExactBoundary(t *testing.T) {
	// boxRight + panelW + margin == viewportW stays RIGHT; the flip
	// happens strictly past the boundary.
	// 0.75 is exact in binary, so boxRight is exactly 750.
	box := stream.BoundingBox{XMax: 0.75}
	if side := Place(box, 1000, 230, 20); side != Right {
		t.Errorf("side at exact boundary = %v, want right", side)
	}

	past := stream.BoundingBox{XMax: 0.7505}
	if side := Place(past, 1000, 230, 20); side != Left {
		t.Errorf("side past boundary = %v, want left", side)
	}
}

func TestPlace_Pure(t *testing.T) {
	box := stream.BoundingBox{XMin: 0.5, XMax: 0.79}
	first := Place(box, 1000, 180, 30)
	for i := 0; i < 100; i++ {
		if got := Place(box, 1000, 180, 30); got != first {
			t.Fatalf("Place is not pure: got %v then %v", first, got)
		}
	}
}

func TestCompute_RightAnchor(t *testing.T) {
	box := stream.BoundingBox{XMin: 0.2, YMin: 0.3, XMax: 0.4, YMax: 0.6}
	pl := Compute(box, 1000, 600, 180, 200, 10)

	if pl.Side != Right {
		t.Fatalf("side = %v, want right", pl.Side)
	}
	if pl.X != 0.4*1000+10 {
		t.Errorf("X = %v, want %v", pl.X, 0.4*1000+10)
	}
	if pl.Y != 0.3*600 {
		t.Errorf("Y = %v, want %v", pl.Y, 0.3*600)
	}
}

func TestCompute_LeftAnchor(t *testing.T) {
	box := stream.BoundingBox{XMin: 0.85, YMin: 0.1, XMax: 0.99, YMax: 0.5}
	pl := Compute(box, 1000, 600, 180, 200, 10)

	if pl.Side != Left {
		t.Fatalf("side = %v, want left", pl.Side)
	}
	want := 0.85*1000 - 10 - 180
	if pl.X != want {
		t.Errorf("X = %v, want %v", pl.X, want)
	}
}

func TestCompute_ClampsToViewport(t *testing.T) {
	// A face at the very bottom-left: the panel must stay on screen.
	box := stream.BoundingBox{XMin: 0.01, YMin: 0.95, XMax: 0.99, YMax: 1.0}
	pl := Compute(box, 400, 300, 180, 200, 10)

	if pl.X < 0 {
		t.Errorf("X = %v, want >= 0", pl.X)
	}
	if pl.Y+200 > 300 || pl.Y < 0 {
		t.Errorf("Y = %v leaves the viewport", pl.Y)
	}
}
