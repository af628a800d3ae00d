package probe

import (
	"errors"
	"fmt"

	"github.com/mastercactapus/probecnc/coord"
)

// CentreOptions configure a centre-probing cycle: find the midpoint
// of a boss (Outside) or a bore (Inside).
type CentreOptions struct {
	Direction Direction

	// Points is the number of contacts to take: 2 gives a centre
	// along the X axis only, 4 gives a full XY centre.
	Points int

	// MoveToResult rapids the tool over the derived centre after the
	// cycle, so the operator can zero there.
	MoveToResult bool
}

func (opt CentreOptions) Validate() error {
	if opt.Points != 2 && opt.Points != 4 {
		return errors.New("points must be 2 or 4")
	}
	if opt.Direction != Inside && opt.Direction != Outside {
		return errors.New("invalid probe direction")
	}
	return nil
}

var centreApproaches = []coord.Point{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
}

// PlanCentre produces the waypoint sequence for a centre-probing
// cycle starting (and ending) at pos.
//
// For each approach the probe moves out, drops to depth, probes back
// toward the start point, and lifts clear; Inside probing drops at
// the start point and probes outward instead. The final waypoint
// returns to the start XY.
func PlanCentre(opt CentreOptions, run Run, pos coord.Point) ([]Waypoint, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}

	depthZ := pos.Z - run.Depth
	wps := make([]Waypoint, 0, 4*opt.Points+1)
	for _, d := range centreApproaches[:opt.Points] {
		out := pos.Add(d.Mul(run.StartDistance))

		start, target := out, pos
		if opt.Direction == Inside {
			start, target = pos, out
		}

		wps = append(wps,
			Waypoint{Kind: KindRapid, Target: start},
			Waypoint{Kind: KindPlunge, Target: coord.Point{Z: depthZ}},
			Waypoint{Kind: KindProbe, Target: coord.Point{X: target.X, Y: target.Y, Z: depthZ}, Feed: run.FeedRate},
			Waypoint{Kind: KindClear, Target: coord.Point{Z: pos.Z}},
		)
	}

	return append(wps, Waypoint{Kind: KindReturn, Target: pos}), nil
}

// ReduceCentre computes the centre point from the cycle's contact
// points: the midpoint for 2 contacts; for 4, the X of the first
// pair's midpoint with the Y of the second pair's.
func ReduceCentre(opt CentreOptions, points []coord.Point) (coord.Point, error) {
	if err := opt.Validate(); err != nil {
		return coord.Point{}, err
	}
	if len(points) != opt.Points {
		return coord.Point{}, fmt.Errorf("centre: need %d contact points, have %d: %w", opt.Points, len(points), ErrInsufficientPoints)
	}
	if opt.Points == 2 {
		return points[0].Midpoint(points[1]), nil
	}
	px := points[0].Midpoint(points[1])
	py := points[2].Midpoint(points[3])
	return coord.Point{X: px.X, Y: py.Y, Z: coord.Centroid(points).Z}, nil
}
