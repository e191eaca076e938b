package model

import "math"

// Point represents a 2D point in millimetres from the page's top-left corner.
type Point struct {
	X, Y float64
}

// BBox represents a bounding box (rectangle). Coordinates follow the page
// layout convention: the origin is the top-left corner and Y grows downwards.
type BBox struct {
	X      float64 // Left
	Y      float64 // Top
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// NewBBoxFromPoints creates a bounding box from two points
func NewBBoxFromPoints(p1, p2 Point) BBox {
	x := math.Min(p1.X, p2.X)
	y := math.Min(p1.Y, p2.Y)
	width := math.Abs(p2.X - p1.X)
	height := math.Abs(p2.Y - p1.Y)
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y + b.Height
}

// Contains checks if a point is inside the bounding box
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Top() && p.Y <= b.Bottom()
}

// Fit returns the largest box with the aspect ratio w:h that fits inside b,
// centred in b. A non-positive w or h yields b unchanged.
func (b BBox) Fit(w, h float64) BBox {
	if w <= 0 || h <= 0 || b.IsEmpty() {
		return b
	}
	scale := math.Min(b.Width/w, b.Height/h)
	fw, fh := w*scale, h*scale
	return BBox{
		X:      b.X + (b.Width-fw)/2,
		Y:      b.Y + (b.Height-fh)/2,
		Width:  fw,
		Height: fh,
	}
}

// IsEmpty returns true if the bounding box has zero area
func (b BBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}
