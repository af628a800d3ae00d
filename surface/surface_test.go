package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/probecnc/coord"
)

func TestNewMesh(t *testing.T) {
	// surface rises 30mm over 100mm of X travel
	points := []coord.Point{
		{X: -700, Y: -450, Z: -80},
		{X: -700, Y: -550, Z: -80},

		{X: -600, Y: -450, Z: -50},
		{X: -600, Y: -550, Z: -50},
	}

	mesh, err := NewMesh(points)
	require.NoError(t, err)

	ok, z := mesh.Z(-650, -500)
	assert.True(t, ok)
	assert.InDelta(t, -65, z, 1e-9)

	ok, _ = mesh.Z(0, 0)
	assert.False(t, ok)
}

func TestMesh_Sample(t *testing.T) {
	// plane z = x/10 over a 10x10 footprint
	points := []coord.Point{
		{X: 0, Y: 0, Z: 0},
		{X: 0, Y: 10, Z: 0},
		{X: 10, Y: 0, Z: 1},
		{X: 10, Y: 10, Z: 1},
	}
	mesh, err := NewMesh(points)
	require.NoError(t, err)

	samples := mesh.Sample(5)
	require.NotEmpty(t, samples)
	for _, p := range samples {
		assert.InDelta(t, p.X/10, p.Z, 1e-6, "at (%v,%v)", p.X, p.Y)
	}

	assert.Nil(t, mesh.Sample(0))
}

func TestNewMesh_TooFewPoints(t *testing.T) {
	_, err := NewMesh([]coord.Point{{X: 1}, {X: 2}})
	assert.Error(t, err)
}

func TestNewReport(t *testing.T) {
	points := []coord.Point{
		{X: 0, Y: 0, Z: -1},
		{X: 10, Y: 0, Z: -1.2},
		{X: 0, Y: 10, Z: -0.8},
		{X: 10, Y: 10, Z: -1},
	}

	r, err := NewReport(points)
	require.NoError(t, err)
	assert.InDelta(t, -1, r.MeanZ, 1e-9)
	assert.Equal(t, -1.2, r.MinZ)
	assert.Equal(t, -0.8, r.MaxZ)
	assert.InDelta(t, 0.4, r.Flatness, 1e-9)
	assert.Equal(t, coord.Point{X: 0, Y: 10, Z: -0.8}, r.HighPoint)
	assert.Equal(t, coord.Point{X: 10, Y: 0, Z: -1.2}, r.LowPoint)
	assert.Equal(t, 4, r.Points)

	assert.True(t, r.Tilted(0.01))
	assert.False(t, r.Tilted(0.1))
}

func TestNewReport_Empty(t *testing.T) {
	_, err := NewReport(nil)
	assert.Error(t, err)
}
