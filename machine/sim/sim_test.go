package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/probecnc/coord"
)

var testStock = Stock{
	Min: coord.Point{X: -10, Y: -10, Z: -20},
	Max: coord.Point{X: 10, Y: 10, Z: 0},
}

func TestStock_Contact(t *testing.T) {
	p, ok := testStock.Contact(coord.Point{X: 20, Y: 0, Z: -5}, coord.Point{X: 0, Y: 0, Z: -5})
	require.True(t, ok)
	assert.Equal(t, coord.Point{X: 10, Y: 0, Z: -5}, p)

	// straight down onto the top face
	p, ok = testStock.Contact(coord.Point{X: 5, Y: 5, Z: 5}, coord.Point{X: 5, Y: 5, Z: -15})
	require.True(t, ok)
	assert.Equal(t, coord.Point{X: 5, Y: 5, Z: 0}, p)

	// passes beside the stock
	_, ok = testStock.Contact(coord.Point{X: 20, Y: 20, Z: -5}, coord.Point{X: 20, Y: 0, Z: -5})
	assert.False(t, ok)

	// stops short of the stock
	_, ok = testStock.Contact(coord.Point{X: 20, Y: 0, Z: -5}, coord.Point{X: 15, Y: 0, Z: -5})
	assert.False(t, ok)
}

func TestAdapter_ProbeBlock(t *testing.T) {
	a := New(testStock, coord.Point{X: 20, Y: 0, Z: -5})

	_, err := a.Write([]byte("G91 G38.2 X-30 F25\n"))
	require.NoError(t, err)

	probes := a.Probes()
	require.Len(t, probes, 1)
	assert.True(t, probes[0].Valid)
	assert.Equal(t, coord.Point{X: 10, Y: 0, Z: -5}, probes[0].Point)
	assert.Equal(t, probes[0].Point, a.CurrentState().MPos)

	a.ResetProbes()
	assert.Empty(t, a.Probes())
}

func TestAdapter_ProbeMiss(t *testing.T) {
	a := New(testStock, coord.Point{X: 20, Y: 20, Z: -5})

	_, err := a.Write([]byte("G91 G38.2 Y-30 F25\n"))
	require.NoError(t, err)

	probes := a.Probes()
	require.Len(t, probes, 1)
	assert.False(t, probes[0].Valid)
	assert.Equal(t, coord.Point{X: 20, Y: -10, Z: -5}, a.CurrentState().MPos)
}

func TestAdapter_Moves(t *testing.T) {
	a := New(testStock, coord.Point{Z: 5})

	_, err := a.Write([]byte("G90 G53 G0 X15 Y3\nG90 G53 G0 Z-5\n"))
	require.NoError(t, err)
	assert.Equal(t, coord.Point{X: 15, Y: 3, Z: -5}, a.CurrentState().MPos)
	assert.Equal(t, "Idle", a.CurrentState().Status)
}
