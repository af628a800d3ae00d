package probe

import (
	"errors"
	"fmt"

	"github.com/mastercactapus/probecnc/coord"
)

// EdgeOptions configure an edge-probing cycle: establish the line of
// one edge, or the corner point where two perpendicular edges meet.
type EdgeOptions struct {
	// Retract is how far to back off the edge between the two
	// touches.
	Retract float64

	// Edges is 1 to fit a single edge line, or 2 to intersect the two
	// edges meeting at Corner.
	Edges int

	// Edge selects the edge orientation; only meaningful when
	// Edges is 1.
	Edge Edge

	// Corner selects the edge pair; only meaningful when Edges is 2.
	Corner Corner

	// ParallelTol is the determinant tolerance below which two fitted
	// lines are treated as parallel. Zero means coord.Epsilon.
	ParallelTol float64

	// MoveToResult rapids the tool over the derived point after the
	// cycle, so the operator can zero there.
	MoveToResult bool
}

func (opt EdgeOptions) Validate() error {
	if opt.Edges != 1 && opt.Edges != 2 {
		return errors.New("edges must be 1 or 2")
	}
	if opt.Retract < 0 {
		return errors.New("retract cannot be negative")
	}
	return nil
}

func (opt EdgeOptions) parallelTol() float64 {
	if opt.ParallelTol == 0 {
		return coord.Epsilon
	}
	return opt.ParallelTol
}

// probe travel direction into the stock, by edge
var edgeNormals = map[Edge]coord.Point{
	Bottom: {Y: 1},
	Top:    {Y: -1},
	Left:   {X: 1},
	Right:  {X: -1},
}

// travel along a lone edge between the two touches
var edgeTravel = map[Edge]coord.Point{
	Bottom: {X: 1},
	Top:    {X: 1},
	Left:   {Y: 1},
	Right:  {Y: 1},
}

// travel along each edge, away from the corner being probed
var cornerTravel = map[Corner]map[Edge]coord.Point{
	BottomLeft:  {Bottom: {X: 1}, Left: {Y: 1}},
	BottomRight: {Bottom: {X: -1}, Right: {Y: 1}},
	TopLeft:     {Top: {X: 1}, Left: {Y: -1}},
	TopRight:    {Top: {X: -1}, Right: {Y: -1}},
}

func planOneEdge(run Run, retract float64, pos coord.Point, normal, along coord.Point, off float64) []Waypoint {
	depthZ := pos.Z - run.Depth
	probeTo := func(p coord.Point) coord.Point {
		t := p.Add(normal.Mul(run.StartDistance))
		t.Z = depthZ
		return t
	}
	first := pos.Add(along.Mul(off))
	second := pos.Add(along.Mul(off + run.StartDistance))
	backOff := normal.Mul(-retract)

	return []Waypoint{
		{Kind: KindRapid, Target: first},
		{Kind: KindPlunge, Target: coord.Point{Z: depthZ}},
		{Kind: KindProbe, Target: probeTo(first), Feed: run.FeedRate},
		{Kind: KindRetract, Target: backOff},
		{Kind: KindRapid, Target: second},
		{Kind: KindProbe, Target: probeTo(second), Feed: run.FeedRate},
		{Kind: KindRetract, Target: backOff},
		{Kind: KindClear, Target: coord.Point{Z: pos.Z}},
	}
}

// PlanEdge produces the waypoint sequence for an edge-probing cycle
// starting near the edge (or corner) with the probe off the stock.
//
// Each edge is touched at two points StartDistance apart along the
// edge, backing off by Retract between them. For a corner the start
// point sits diagonally off the corner and the touches are shifted
// StartDistance along each edge, away from the corner, so they land
// on stock.
func PlanEdge(opt EdgeOptions, run Run, pos coord.Point) ([]Waypoint, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}

	var wps []Waypoint
	if opt.Edges == 1 {
		wps = planOneEdge(run, opt.Retract, pos, edgeNormals[opt.Edge], edgeTravel[opt.Edge], 0)
	} else {
		first, second := opt.Corner.Edges()
		travel := cornerTravel[opt.Corner]
		wps = planOneEdge(run, opt.Retract, pos, edgeNormals[first], travel[first], run.StartDistance)
		wps = append(wps, planOneEdge(run, opt.Retract, pos, edgeNormals[second], travel[second], run.StartDistance)...)
	}

	return append(wps, Waypoint{Kind: KindReturn, Target: pos}), nil
}

// EdgeResult is the reduction of an edge-probing cycle.
type EdgeResult struct {
	// Angles holds the fitted angle of each probed edge relative to
	// the machine X axis, normalized to [-90, 90) degrees.
	Angles []float64

	// Intersection is the corner point where the two fitted lines
	// cross; nil for a single edge.
	Intersection *coord.Point
}

// Angle returns the fitted angle of the first probed edge.
func (r EdgeResult) Angle() float64 { return r.Angles[0] }

// ReduceEdge fits a line through each edge's pair of contact points
// and, for two edges, intersects the lines to locate the corner.
func ReduceEdge(opt EdgeOptions, points []coord.Point) (*EdgeResult, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	want := 2 * opt.Edges
	if len(points) != want {
		return nil, fmt.Errorf("edge: need %d contact points, have %d: %w", want, len(points), ErrInsufficientPoints)
	}

	l1 := coord.LineThrough(points[0], points[1])
	res := &EdgeResult{Angles: []float64{l1.Angle()}}
	if opt.Edges == 1 {
		return res, nil
	}

	l2 := coord.LineThrough(points[2], points[3])
	res.Angles = append(res.Angles, l2.Angle())

	p, ok := l1.Intersect(l2, opt.parallelTol())
	if !ok {
		return nil, fmt.Errorf("edge: angles %.3f and %.3f: %w", res.Angles[0], res.Angles[1], ErrParallelEdges)
	}
	p.Z = coord.Centroid(points).Z
	res.Intersection = &p
	return res, nil
}
