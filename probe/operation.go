package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/mastercactapus/probecnc/coord"
)

// Phase is the lifecycle state of a probing operation.
type Phase int

const (
	PhaseConfigured Phase = iota
	PhasePlanning
	PhaseAwaitingContacts
	PhaseReducing
	PhaseCompleted
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseConfigured:       "configured",
	PhasePlanning:         "planning",
	PhaseAwaitingContacts: "awaiting-contacts",
	PhaseReducing:         "reducing",
	PhaseCompleted:        "completed",
	PhaseFailed:           "failed",
}

func (p Phase) String() string { return phaseNames[p] }

// An Executor carries out planned waypoints against a real or
// simulated machine. ProbeMove blocks until contact (or failure) and
// returns the recorded contact point in machine coordinates.
type Executor interface {
	Move(ctx context.Context, wp Waypoint) error
	ProbeMove(ctx context.Context, wp Waypoint) (coord.Point, error)
}

// Result is the outcome of a completed probing operation. It is
// never mutated after creation, and never populated partially: a
// failed reduction produces no Result at all.
type Result struct {
	// Points are the contact points, in probing order.
	Points []coord.Point

	// Point is the derived reference: the centre for a centre probe,
	// the corner intersection for a two-edge probe, the first touch
	// for a single edge.
	Point coord.Point

	// Angle is the fitted edge angle in degrees; nil for centre
	// probing.
	Angle *float64

	// Angles holds the per-edge angles when two edges were probed.
	Angles []float64
}

// An Operation is one probing cycle bound to its configuration. It is
// one-shot: Execute may run once; construct a new Operation to retry.
type Operation struct {
	phase Phase

	centre *CentreOptions
	edge   *EdgeOptions
	run    Run

	waypoints []Waypoint
	result    *Result
	err       error
}

// NewCentreOperation validates the configuration and returns a
// centre-probing operation.
func NewCentreOperation(opt CentreOptions, run Run) (*Operation, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}
	return &Operation{centre: &opt, run: run}, nil
}

// NewEdgeOperation validates the configuration and returns an
// edge-probing operation.
func NewEdgeOperation(opt EdgeOptions, run Run) (*Operation, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}
	return &Operation{edge: &opt, run: run}, nil
}

func (op *Operation) Phase() Phase { return op.phase }

// Err returns the failure that moved the operation to PhaseFailed.
func (op *Operation) Err() error { return op.err }

// Result returns the completed result, or nil before completion.
func (op *Operation) Result() *Result { return op.result }

// Waypoints returns the planned motion sequence; empty before
// Execute.
func (op *Operation) Waypoints() []Waypoint { return op.waypoints }

func (op *Operation) fail(err error) error {
	op.phase = PhaseFailed
	op.err = err
	return err
}

func waitErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%v: %w", err, ErrProbeTimeout)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%v: %w", err, ErrProbeAbort)
	}
	return err
}

// Execute plans the cycle from pos, drives each waypoint through the
// executor, and reduces the contact points. The executor's probe wait
// honors ctx; a deadline or cancellation fails the operation with
// ErrProbeTimeout or ErrProbeAbort and no partial result.
func (op *Operation) Execute(ctx context.Context, exec Executor, pos coord.Point) (*Result, error) {
	if op.phase != PhaseConfigured || (op.centre == nil && op.edge == nil) {
		return nil, ErrInvalidState
	}

	op.phase = PhasePlanning
	var err error
	if op.centre != nil {
		op.waypoints, err = PlanCentre(*op.centre, op.run, pos)
	} else {
		op.waypoints, err = PlanEdge(*op.edge, op.run, pos)
	}
	if err != nil {
		return nil, op.fail(err)
	}

	op.phase = PhaseAwaitingContacts
	var contacts []coord.Point
	for _, wp := range op.waypoints {
		if err = ctx.Err(); err != nil {
			return nil, op.fail(waitErr(err))
		}
		if wp.Kind == KindProbe {
			var p coord.Point
			p, err = exec.ProbeMove(ctx, wp)
			if err != nil {
				return nil, op.fail(waitErr(err))
			}
			contacts = append(contacts, p)
			continue
		}
		if err = exec.Move(ctx, wp); err != nil {
			return nil, op.fail(waitErr(err))
		}
	}

	op.phase = PhaseReducing
	res := &Result{Points: contacts}
	if op.centre != nil {
		res.Point, err = ReduceCentre(*op.centre, contacts)
		if err != nil {
			return nil, op.fail(err)
		}
	} else {
		var er *EdgeResult
		er, err = ReduceEdge(*op.edge, contacts)
		if err != nil {
			return nil, op.fail(err)
		}
		angle := er.Angle()
		res.Angle = &angle
		res.Angles = er.Angles
		if er.Intersection != nil {
			res.Point = *er.Intersection
		} else {
			res.Point = contacts[0]
		}
	}

	op.phase = PhaseCompleted
	op.result = res
	return res, nil
}
