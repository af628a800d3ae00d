package coord

import (
	"math"
)

// A Line is an infinite 2D line in the XY plane, stored in implicit
// form a*x + b*y = c with (a,b) a unit normal.
type Line struct {
	A, B, C float64
}

// LineThrough returns the line through the XY projection of two points.
//
// The points must be distinct.
func LineThrough(p1, p2 Point) Line {
	a := p2.Y - p1.Y
	b := p1.X - p2.X
	n := math.Hypot(a, b)
	a /= n
	b /= n
	return Line{
		A: a,
		B: b,
		C: a*p1.X + b*p1.Y,
	}
}

// Angle returns the angle of the line from the machine X axis in
// degrees, normalized to the range [-90, 90).
func (l Line) Angle() float64 {
	deg := math.Atan2(l.A, -l.B) * 180 / math.Pi
	for deg >= 90 {
		deg -= 180
	}
	for deg < -90 {
		deg += 180
	}
	return deg
}

// Intersect returns the point where two lines cross.
//
// If the lines are parallel within tol (the determinant of the 2x2
// system, the sine of the angle between them since both normals are
// unit length), ok is false. Z of the result is always 0.
func (l Line) Intersect(ol Line, tol float64) (p Point, ok bool) {
	det := l.A*ol.B - ol.A*l.B
	if math.Abs(det) <= tol {
		return p, false
	}
	p.X = (l.C*ol.B - ol.C*l.B) / det
	p.Y = (l.A*ol.C - ol.A*l.C) / det
	return p, true
}
