// Package models defines data structures shared between the registry and
// presentation layers.
package models

// Rect is an axis-aligned box in EMU (English Metric Units).
type Rect struct {
	// X is the left offset in EMU.
	X int64
	// Y is the top offset in EMU.
	Y int64
	// W is the width in EMU.
	W int64
	// H is the height in EMU.
	H int64
}

// Fits reports whether r fits inside the box in both dimensions.
func (r Rect) Fits(box Rect) bool {
	return r.W <= box.W && r.H <= box.H
}

// ScaleToFit returns the uniform factor that shrinks r to fit inside the
// box while preserving its aspect ratio. A rect that already fits is left
// at natural size (factor 1).
func (r Rect) ScaleToFit(box Rect) float64 {
	if r.W <= 0 || r.H <= 0 {
		return 1
	}
	if r.Fits(box) {
		return 1
	}
	sw := float64(box.W) / float64(r.W)
	sh := float64(box.H) / float64(r.H)
	if sw < sh {
		return sw
	}
	return sh
}
