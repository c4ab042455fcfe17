package geom

import "math"

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// DataToDisplay maps data coordinates to display coordinates by swapping
// the axes. It is its own inverse.
var DataToDisplay = Matrix{
	A: 0, B: 1, C: 0,
	D: 1, E: 0, F: 0,
}

// DisplayToData maps display coordinates back to data coordinates.
var DisplayToData = DataToDisplay.Invert()

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// MapRect returns the bounding rectangle of r after transformation.
// For axis-aligned transforms (scales, translations, axis swaps) the result
// is exact.
func (m Matrix) MapRect(r Rect) Rect {
	p0 := m.TransformPoint(Point{X: r.X, Y: r.Y})
	p1 := m.TransformPoint(Point{X: r.Right(), Y: r.Y})
	p2 := m.TransformPoint(Point{X: r.X, Y: r.Bottom()})
	p3 := m.TransformPoint(Point{X: r.Right(), Y: r.Bottom()})

	x0 := math.Min(math.Min(p0.X, p1.X), math.Min(p2.X, p3.X))
	y0 := math.Min(math.Min(p0.Y, p1.Y), math.Min(p2.Y, p3.Y))
	x1 := math.Max(math.Max(p0.X, p1.X), math.Max(p2.X, p3.X))
	y1 := math.Max(math.Max(p0.Y, p1.Y), math.Max(p2.Y, p3.Y))
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Invert returns the inverse matrix.
// Returns the identity matrix if the matrix is not invertible.
func (m Matrix) Invert() Matrix {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-10 {
		return Identity()
	}

	invDet := 1.0 / det
	return Matrix{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}
}

// IsAxisSwap returns true if the matrix only exchanges the x and y axes.
func (m Matrix) IsAxisSwap() bool {
	return m.A == 0 && m.B == 1 && m.C == 0 &&
		m.D == 1 && m.E == 0 && m.F == 0
}
