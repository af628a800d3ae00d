package machine_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/machine"
	"github.com/mastercactapus/probecnc/machine/sim"
	"github.com/mastercactapus/probecnc/probe"
)

func TestMachine_ProbeCentre(t *testing.T) {
	// 20x20 boss centred on the origin, top at Z=0
	stock := sim.Stock{
		Min: coord.Point{X: -10, Y: -10, Z: -20},
		Max: coord.Point{X: 10, Y: 10, Z: 0},
	}
	m := machine.NewMachine(sim.New(stock, coord.Point{X: 0, Y: 0, Z: 5}))

	run := probe.Run{Depth: 10, StartDistance: 20, FeedRate: 25}
	res, err := m.ProbeCentre(context.Background(), probe.CentreOptions{Direction: probe.Outside, Points: 2}, run)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Point.X, 1e-9)
	assert.InDelta(t, 0, res.Point.Y, 1e-9)
	assert.InDelta(t, -5, res.Point.Z, 1e-9)
	require.Len(t, res.Points, 2)
	assert.InDelta(t, 10, res.Points[0].X, 1e-9)
	assert.InDelta(t, -10, res.Points[1].X, 1e-9)

	// tool returns to the start point
	assert.Equal(t, coord.Point{X: 0, Y: 0, Z: 5}, m.CurrentState().MPos)
}

func TestMachine_ProbeCentre_FourPoints(t *testing.T) {
	// boss centre offset from the start point
	stock := sim.Stock{
		Min: coord.Point{X: -8, Y: -6, Z: -20},
		Max: coord.Point{X: 12, Y: 14, Z: 0},
	}
	m := machine.NewMachine(sim.New(stock, coord.Point{X: 0, Y: 0, Z: 5}))

	run := probe.Run{Depth: 10, StartDistance: 30, FeedRate: 25}
	res, err := m.ProbeCentre(context.Background(), probe.CentreOptions{Direction: probe.Outside, Points: 4}, run)
	require.NoError(t, err)
	assert.InDelta(t, 2, res.Point.X, 1e-9)
	assert.InDelta(t, 4, res.Point.Y, 1e-9)
	assert.Len(t, res.Points, 4)
}

func TestMachine_ProbeCentre_MoveToResult(t *testing.T) {
	stock := sim.Stock{
		Min: coord.Point{X: -8, Y: -6, Z: -20},
		Max: coord.Point{X: 12, Y: 14, Z: 0},
	}
	m := machine.NewMachine(sim.New(stock, coord.Point{X: 0, Y: 0, Z: 5}))

	run := probe.Run{Depth: 10, StartDistance: 30, FeedRate: 25}
	opt := probe.CentreOptions{Direction: probe.Outside, Points: 4, MoveToResult: true}
	res, err := m.ProbeCentre(context.Background(), opt, run)
	require.NoError(t, err)

	// tool parks over the derived centre at the start height
	st := m.CurrentState().MPos
	assert.InDelta(t, res.Point.X, st.X, 1e-9)
	assert.InDelta(t, res.Point.Y, st.Y, 1e-9)
	assert.InDelta(t, 5, st.Z, 1e-9)
}

func TestMachine_ProbeEdge_Corner(t *testing.T) {
	// bottom-left stock corner at (-10,-10), tool off the corner
	stock := sim.Stock{
		Min: coord.Point{X: -10, Y: -10, Z: -20},
		Max: coord.Point{X: 30, Y: 30, Z: 0},
	}
	m := machine.NewMachine(sim.New(stock, coord.Point{X: -15, Y: -15, Z: 5}))

	run := probe.Run{Depth: 10, StartDistance: 20, FeedRate: 25}
	opt := probe.EdgeOptions{Edges: 2, Corner: probe.BottomLeft, Retract: 5}
	res, err := m.ProbeEdge(context.Background(), opt, run)
	require.NoError(t, err)
	require.NotNil(t, res.Angle)
	assert.InDelta(t, 0, *res.Angle, 1e-9)
	assert.InDelta(t, -10, res.Point.X, 1e-9)
	assert.InDelta(t, -10, res.Point.Y, 1e-9)
	assert.Len(t, res.Points, 4)
}

func TestMachine_ProbeEdge_NoContact(t *testing.T) {
	// stock nowhere near the probe path
	stock := sim.Stock{
		Min: coord.Point{X: 500, Y: 500, Z: -20},
		Max: coord.Point{X: 600, Y: 600, Z: 0},
	}
	m := machine.NewMachine(sim.New(stock, coord.Point{X: 0, Y: -15, Z: 5}))

	run := probe.Run{Depth: 10, StartDistance: 20, FeedRate: 25}
	_, err := m.ProbeEdge(context.Background(), probe.EdgeOptions{Edges: 1, Edge: probe.Bottom}, run)
	assert.ErrorIs(t, err, probe.ErrProbeAbort)
}

func TestMachine_ProbeSurface(t *testing.T) {
	stock := sim.Stock{
		Min: coord.Point{X: -5, Y: -5, Z: -20},
		Max: coord.Point{X: 15, Y: 15, Z: 0},
	}
	m := machine.NewMachine(sim.New(stock, coord.Point{X: 0, Y: 0, Z: 5}))

	run := probe.Run{Depth: 10, StartDistance: 20, FeedRate: 25}
	opt := probe.SurfaceOptions{DistanceX: 10, DistanceY: 10, Granularity: 15, MaxTravel: 20}
	svy, err := m.ProbeSurface(context.Background(), opt, run)
	require.NoError(t, err)
	require.Len(t, svy.Points, opt.GridPoints())
	assert.InDelta(t, 0, svy.Report.MeanZ, 1e-9)
	assert.InDelta(t, 0, svy.Report.Flatness, 1e-9)

	// the mesh interpolates between the probed grid points
	require.NotNil(t, svy.Mesh)
	ok, z := svy.Mesh.Z(5, 5)
	require.True(t, ok)
	assert.InDelta(t, 0, z, 1e-9)
	assert.NotEmpty(t, svy.Mesh.Sample(opt.Granularity/2))
}

func TestMachine_NotIdle(t *testing.T) {
	a := sim.New(sim.Stock{}, coord.Point{})
	m := machine.NewMachine(busyAdapter{a})

	run := probe.Run{Depth: 10, StartDistance: 20, FeedRate: 25}
	_, err := m.ProbeCentre(context.Background(), probe.CentreOptions{Direction: probe.Outside, Points: 2}, run)
	assert.Error(t, err)
}

func TestMachine_HoldForProbe(t *testing.T) {
	stock := sim.Stock{
		Min: coord.Point{X: -10, Y: -10, Z: -20},
		Max: coord.Point{X: 10, Y: 10, Z: 0},
	}
	m := machine.NewMachine(sim.New(stock, coord.Point{Z: 5}))

	msgs := make([]string, 0, 2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		msgs = append(msgs, <-m.HoldMessage())
		msgs = append(msgs, <-m.HoldMessage())
	}()

	require.NoError(t, m.HoldForProbe())
	<-done
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "touch probe")
	assert.Equal(t, "-", msgs[1])
}

// busyAdapter reports a running machine.
type busyAdapter struct {
	machine.Adapter
}

func (a busyAdapter) CurrentState() machine.State {
	st := a.Adapter.CurrentState()
	st.Status = "Run"
	return st
}

var _ io.ReaderFrom = (*sim.Adapter)(nil)
