package machine

import (
	"context"
	"fmt"

	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/probe"
	"github.com/mastercactapus/probecnc/surface"
)

// A Survey is the outcome of a stock-top grid probe: the flatness
// report, a height mesh triangulated over the contacts, and the raw
// contact points.
type Survey struct {
	Report *surface.Report
	Mesh   *surface.Mesh
	Points []coord.Point
}

// ProbeSurface surveys the stock top on a grid and reduces the
// contacts to a flatness report and a queryable height mesh.
func (m *Machine) ProbeSurface(ctx context.Context, opt probe.SurfaceOptions, run probe.Run) (*Survey, error) {
	m.cycleMx.Lock()
	defer m.cycleMx.Unlock()

	ctx, cancel, pos, err := m.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	wps, err := probe.PlanSurface(opt, run, pos)
	if err != nil {
		return nil, err
	}

	var points []coord.Point
	for _, wp := range wps {
		if wp.Kind == probe.KindProbe {
			p, err := m.ProbeMove(ctx, wp)
			if err != nil {
				return nil, err
			}
			points = append(points, p)
			continue
		}
		if err = m.Move(ctx, wp); err != nil {
			return nil, err
		}
	}

	if want := opt.GridPoints(); len(points) != want {
		return nil, fmt.Errorf("survey: need %d contact points, have %d: %w", want, len(points), probe.ErrInsufficientPoints)
	}

	report, err := surface.NewReport(points)
	if err != nil {
		return nil, err
	}
	mesh, err := surface.NewMesh(points)
	if err != nil {
		return nil, err
	}
	return &Survey{Report: report, Mesh: mesh, Points: points}, nil
}
