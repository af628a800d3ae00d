package fixture

import (
	"math"

	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/probe"
)

// A Fixture is a named work coordinate system: an origin offset in
// machine coordinates plus a rotation about Z, in degrees.
type Fixture struct {
	Name     string
	Origin   coord.Point
	Rotation float64
}

// A Provider supplies the active fixture for result conversion.
type Provider interface {
	Active() Fixture
}

func (f Fixture) rotateXY(p coord.Point, deg float64) coord.Point {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return coord.Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
		Z: p.Z,
	}
}

// ToLocal converts a machine-space point into fixture-relative
// coordinates.
func (f Fixture) ToLocal(p coord.Point) coord.Point {
	return f.rotateXY(p.Sub(f.Origin), -f.Rotation)
}

// ToMachine converts a fixture-relative point back to machine space.
func (f Fixture) ToMachine(p coord.Point) coord.Point {
	return f.rotateXY(p, f.Rotation).Add(f.Origin)
}

// FromResult derives a fixture from a completed probing result: the
// derived point becomes the origin and, for edge probing, the fitted
// angle becomes the rotation. This is how a probed corner becomes a
// new part zero.
func FromResult(name string, res *probe.Result) Fixture {
	f := Fixture{Name: name, Origin: res.Point}
	if res.Angle != nil {
		f.Rotation = *res.Angle
	}
	return f
}
