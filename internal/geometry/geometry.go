package geometry

import (
	"fmt"
)

// Point represents a 2D coordinate in float space.
type Point struct {
	X float64
	Y float64
}

// Quad is a quadrilateral given by its 4 corner points. Winding order is
// not significant; only the axis-aligned extent is used downstream.
type Quad [4]Point

// Box is an axis-aligned bounding box in center format. Coordinates are
// pixel-space when derived from a Quad and normalized [0,1] input-space
// after letterboxing.
type Box struct {
	CX float64
	CY float64
	W  float64
	H  float64
}

// BoxFromQuad derives the axis-aligned, center-format extent of a quad:
// width and height span the min/max over all 4 corners, the center sits at
// min + size/2.
func BoxFromQuad(q Quad) Box {
	minX, maxX := q[0].X, q[0].X
	minY, maxY := q[0].Y, q[0].Y
	for _, p := range q[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	w := maxX - minX
	h := maxY - minY
	return Box{
		CX: minX + w/2,
		CY: minY + h/2,
		W:  w,
		H:  h,
	}
}

// Validate reports degenerate geometry. A box with non-positive width or
// height has an undefined shape IoU and must never reach anchor matching.
func (b Box) Validate() error {
	if b.W <= 0 || b.H <= 0 {
		return fmt.Errorf("degenerate box: width=%g height=%g", b.W, b.H)
	}
	return nil
}

// InBounds reports whether all corners of the quad lie within an image of
// the given pixel dimensions.
func (q Quad) InBounds(width, height float64) bool {
	for _, p := range q {
		if p.X < 0 || p.Y < 0 || p.X > width || p.Y > height {
			return false
		}
	}
	return true
}

// Clamp returns a copy of the quad with every corner clipped to the image
// rectangle [0, width] x [0, height].
func (q Quad) Clamp(width, height float64) Quad {
	out := q
	for i, p := range out {
		out[i] = Point{
			X: clamp(p.X, 0, width),
			Y: clamp(p.Y, 0, height),
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
