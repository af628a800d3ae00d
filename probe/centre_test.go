package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/probecnc/coord"
)

func TestReduceCentre_TwoPoints(t *testing.T) {
	opt := CentreOptions{Direction: Outside, Points: 2}

	p, err := ReduceCentre(opt, []coord.Point{
		{X: 0, Y: 0, Z: 0},
		{X: 10, Y: 0, Z: 0},
	})
	assert.NoError(t, err)
	assert.Equal(t, coord.Point{X: 5, Y: 0, Z: 0}, p)
}

func TestReduceCentre_FourPoints(t *testing.T) {
	opt := CentreOptions{Direction: Outside, Points: 4}

	p, err := ReduceCentre(opt, []coord.Point{
		{X: 0, Y: 0, Z: 0},
		{X: 10, Y: 0, Z: 0},
		{X: 5, Y: 5, Z: 0},
		{X: 5, Y: -5, Z: 0},
	})
	assert.NoError(t, err)
	assert.Equal(t, coord.Point{X: 5, Y: 0, Z: 0}, p)

	// off-centre start: the Y pair must not skew X, nor vice versa
	p, err = ReduceCentre(opt, []coord.Point{
		{X: 12, Y: 0, Z: 0},
		{X: -8, Y: 0, Z: 0},
		{X: 0, Y: 14, Z: 0},
		{X: 0, Y: -6, Z: 0},
	})
	assert.NoError(t, err)
	assert.Equal(t, coord.Point{X: 2, Y: 4, Z: 0}, p)
}

func TestReduceCentre_InsufficientPoints(t *testing.T) {
	opt := CentreOptions{Direction: Outside, Points: 2}

	_, err := ReduceCentre(opt, []coord.Point{{X: 1}})
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	// too many is just as wrong
	_, err = ReduceCentre(opt, make([]coord.Point, 3))
	assert.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestReduceCentre_Idempotent(t *testing.T) {
	opt := CentreOptions{Direction: Outside, Points: 4}
	points := []coord.Point{
		{X: 0.1, Y: 2.7, Z: -3},
		{X: 10.4, Y: 0.01, Z: -3},
		{X: 5.5, Y: 5.3, Z: -3},
		{X: 5.2, Y: -5.9, Z: -3},
	}

	a, err := ReduceCentre(opt, points)
	require.NoError(t, err)
	b, err := ReduceCentre(opt, points)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCentreOptions_Validate(t *testing.T) {
	assert.Error(t, CentreOptions{Direction: Outside, Points: 3}.Validate())
	assert.Error(t, CentreOptions{Direction: Outside, Points: 0}.Validate())
	assert.Error(t, CentreOptions{Direction: Direction(7), Points: 2}.Validate())
	assert.NoError(t, CentreOptions{Direction: Inside, Points: 2}.Validate())
	assert.NoError(t, CentreOptions{Direction: Outside, Points: 4}.Validate())
}

func TestPlanCentre(t *testing.T) {
	run := Run{Depth: 5, StartDistance: 20, FeedRate: 25}
	pos := coord.Point{X: 100, Y: 50, Z: 10}

	wps, err := PlanCentre(CentreOptions{Direction: Outside, Points: 2}, run, pos)
	require.NoError(t, err)
	require.Len(t, wps, 9)

	// first approach: out +X, drop, probe back to centre, lift
	assert.Equal(t, KindRapid, wps[0].Kind)
	assert.Equal(t, coord.Point{X: 120, Y: 50, Z: 10}, wps[0].Target)
	assert.Equal(t, KindPlunge, wps[1].Kind)
	assert.Equal(t, 5.0, wps[1].Target.Z)
	assert.Equal(t, KindProbe, wps[2].Kind)
	assert.Equal(t, coord.Point{X: 100, Y: 50, Z: 5}, wps[2].Target)
	assert.Equal(t, 25.0, wps[2].Feed)
	assert.Equal(t, KindClear, wps[3].Kind)

	// second approach mirrors on -X
	assert.Equal(t, coord.Point{X: 80, Y: 50, Z: 10}, wps[4].Target)

	// finishes back at the start
	assert.Equal(t, KindReturn, wps[8].Kind)
	assert.Equal(t, pos, wps[8].Target)

	wps, err = PlanCentre(CentreOptions{Direction: Outside, Points: 4}, run, pos)
	require.NoError(t, err)
	assert.Len(t, wps, 17)
	// third and fourth approaches probe along Y
	assert.Equal(t, coord.Point{X: 100, Y: 70, Z: 10}, wps[8].Target)
	assert.Equal(t, coord.Point{X: 100, Y: 30, Z: 10}, wps[12].Target)
}

func TestPlanCentre_Inside(t *testing.T) {
	run := Run{Depth: 5, StartDistance: 20, FeedRate: 25}
	pos := coord.Point{Z: 10}

	wps, err := PlanCentre(CentreOptions{Direction: Inside, Points: 2}, run, pos)
	require.NoError(t, err)

	// drops at the centre and probes outward
	assert.Equal(t, coord.Point{Z: 10}, wps[0].Target)
	assert.Equal(t, coord.Point{X: 20, Y: 0, Z: 5}, wps[2].Target)
}

func TestPlanCentre_Deterministic(t *testing.T) {
	run := Run{Depth: 5, StartDistance: 20, FeedRate: 25}
	pos := coord.Point{X: 1, Y: 2, Z: 3}
	opt := CentreOptions{Direction: Outside, Points: 4}

	a, err := PlanCentre(opt, run, pos)
	require.NoError(t, err)
	b, err := PlanCentre(opt, run, pos)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
