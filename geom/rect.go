package geom

import (
	"image"
	"math"
)

// Rect is an axis-aligned rectangle with floating point precision.
//
// A Rect with non-positive width or height is empty. The viewport uses the
// zero Rect as the "whole plane" sentinel when invalidating, so an empty
// rectangle never means "nothing" on that path.
type Rect struct {
	X, Y float64
	W, H float64
}

// R is a convenience function to create a Rect from origin and size.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// FromImageRect converts an integer rectangle.
func FromImageRect(r image.Rectangle) Rect {
	return Rect{
		X: float64(r.Min.X),
		Y: float64(r.Min.Y),
		W: float64(r.Dx()),
		H: float64(r.Dy()),
	}
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// TopLeft returns the origin of the rectangle.
func (r Rect) TopLeft() Point { return Point{X: r.X, Y: r.Y} }

// BottomRight returns the corner opposite to the origin.
func (r Rect) BottomRight() Point { return Point{X: r.Right(), Y: r.Bottom()} }

// Area returns W*H, or 0 for empty rectangles.
func (r Rect) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.W * r.H
}

// Intersect returns the largest rectangle contained in both r and s.
// The result is the zero Rect if they do not overlap.
func (r Rect) Intersect(s Rect) Rect {
	x0 := math.Max(r.X, s.X)
	y0 := math.Max(r.Y, s.Y)
	x1 := math.Min(r.Right(), s.Right())
	y1 := math.Min(r.Bottom(), s.Bottom())
	if x0 >= x1 || y0 >= y1 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Intersects reports whether r and s share a region of positive area.
// Rectangles that only touch along an edge do not intersect.
func (r Rect) Intersects(s Rect) bool {
	if r.IsEmpty() || s.IsEmpty() {
		return false
	}
	return !r.Intersect(s).IsEmpty()
}

// Contains reports whether s lies entirely inside r.
func (r Rect) Contains(s Rect) bool {
	return s.X >= r.X && s.Y >= r.Y && s.Right() <= r.Right() && s.Bottom() <= r.Bottom()
}

// Adjusted moves the left and top edges by dx1, dy1 and the right and
// bottom edges by dx2, dy2.
func (r Rect) Adjusted(dx1, dy1, dx2, dy2 float64) Rect {
	return Rect{
		X: r.X + dx1,
		Y: r.Y + dy1,
		W: r.W - dx1 + dx2,
		H: r.H - dy1 + dy2,
	}
}

// Round converts to the integer pixel grid. Origin and size are rounded
// independently, so the result always has the rounded size of r.
func (r Rect) Round() image.Rectangle {
	x := int(math.Round(r.X))
	y := int(math.Round(r.Y))
	return image.Rect(x, y, x+int(math.Round(r.W)), y+int(math.Round(r.H)))
}

// ApproxEqual reports whether r and s differ by at most eps in every
// component.
func (r Rect) ApproxEqual(s Rect, eps float64) bool {
	return math.Abs(r.X-s.X) <= eps && math.Abs(r.Y-s.Y) <= eps &&
		math.Abs(r.W-s.W) <= eps && math.Abs(r.H-s.H) <= eps
}
