package models

import "testing"

func TestScaleToFit(t *testing.T) {
	natural := Rect{W: 800, H: 600}

	// Wider than the box: width is the binding dimension.
	scale := natural.ScaleToFit(Rect{W: 400, H: 600})
	if scale != 0.5 {
		t.Errorf("expected scale 0.5, got %v", scale)
	}

	// Already fits: natural size kept.
	if s := natural.ScaleToFit(Rect{W: 800, H: 600}); s != 1 {
		t.Errorf("expected scale 1 for a fitting rect, got %v", s)
	}
	if s := natural.ScaleToFit(Rect{W: 1600, H: 1200}); s != 1 {
		t.Errorf("expected no upscaling, got %v", s)
	}

	// Height binding.
	if s := natural.ScaleToFit(Rect{W: 800, H: 300}); s != 0.5 {
		t.Errorf("expected scale 0.5, got %v", s)
	}
}

func TestScaleToFitPreservesAspect(t *testing.T) {
	natural := Rect{W: 800, H: 600}
	box := Rect{W: 400, H: 500}
	scale := natural.ScaleToFit(box)

	w := float64(natural.W) * scale
	h := float64(natural.H) * scale
	if w > float64(box.W) || h > float64(box.H) {
		t.Errorf("scaled size %vx%v exceeds box %dx%d", w, h, box.W, box.H)
	}
	ratio := w / h
	if diff := ratio - float64(natural.W)/float64(natural.H); diff > 1e-9 || diff < -1e-9 {
		t.Errorf("aspect ratio changed: %v", ratio)
	}
}

func TestAnchorFor(t *testing.T) {
	tests := []struct {
		valign string
		want   string
	}{
		{"top", "t"},
		{"center", "ctr"},
		{"middle", "ctr"},
		{"bottom", "b"},
		{"justify", "ctr"},
		{"", "ctr"},
	}
	for _, tt := range tests {
		if got := AnchorFor(tt.valign); got != tt.want {
			t.Errorf("AnchorFor(%q) = %q, want %q", tt.valign, got, tt.want)
		}
	}
}

func TestUnitConversions(t *testing.T) {
	if got := PixelsToEMU(96); got != 914400 {
		t.Errorf("PixelsToEMU(96) = %d, want 914400", got)
	}
	if got := PointsToEMU(72); got != 914400 {
		t.Errorf("PointsToEMU(72) = %d, want 914400", got)
	}
	// The stored default column width (9.140625 chars) renders at 64 pixels.
	if got := ColWidthToEMU(9.140625); got != PixelsToEMU(64) {
		t.Errorf("ColWidthToEMU(9.140625) = %d, want %d", got, PixelsToEMU(64))
	}
}

func TestGridDimensions(t *testing.T) {
	var empty Grid
	if empty.Rows() != 0 || empty.Cols() != 0 {
		t.Error("empty grid should report zero dimensions")
	}
	g := Grid{{Cell{Value: "a"}, Cell{Value: "b"}}, {Cell{}, Cell{}}}
	if g.Rows() != 2 || g.Cols() != 2 {
		t.Errorf("got %dx%d, want 2x2", g.Rows(), g.Cols())
	}
}
