package surface

import (
	"errors"
	"math"

	"github.com/mastercactapus/probecnc/coord"
)

// A Report summarizes a stock-top survey: how high the surface sits
// and how far it strays from flat.
type Report struct {
	// MeanZ is the average surveyed height.
	MeanZ float64

	// MinZ and MaxZ bound the surveyed heights.
	MinZ, MaxZ float64

	// Flatness is MaxZ - MinZ, the total height band of the surface.
	Flatness float64

	// HighPoint and LowPoint are the extreme contacts.
	HighPoint, LowPoint coord.Point

	Points int
}

// NewReport reduces surveyed contact points to a Report.
func NewReport(points []coord.Point) (*Report, error) {
	if len(points) == 0 {
		return nil, errors.New("no surveyed points")
	}

	r := &Report{
		MinZ:      points[0].Z,
		MaxZ:      points[0].Z,
		HighPoint: points[0],
		LowPoint:  points[0],
		Points:    len(points),
	}
	var sum float64
	for _, p := range points {
		sum += p.Z
		if p.Z > r.MaxZ {
			r.MaxZ = p.Z
			r.HighPoint = p
		}
		if p.Z < r.MinZ {
			r.MinZ = p.Z
			r.LowPoint = p
		}
	}
	r.MeanZ = sum / float64(len(points))
	r.Flatness = r.MaxZ - r.MinZ
	return r, nil
}

// Tilted reports whether the surface tilts more than tol per unit of
// XY travel between the extreme points. It is false when the extremes
// coincide in XY.
func (r Report) Tilted(tol float64) bool {
	dist := r.HighPoint.DistanceXY(r.LowPoint.X, r.LowPoint.Y)
	if dist == 0 {
		return false
	}
	return math.Abs(r.MaxZ-r.MinZ)/dist > tol
}
