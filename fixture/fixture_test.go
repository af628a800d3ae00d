package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/probe"
)

func TestFixture_Transform(t *testing.T) {
	f := Fixture{
		Name:     "vise",
		Origin:   coord.Point{X: 100, Y: 50, Z: -20},
		Rotation: 90,
	}

	local := f.ToLocal(coord.Point{X: 100, Y: 60, Z: -20})
	assert.InDelta(t, 10, local.X, 1e-9)
	assert.InDelta(t, 0, local.Y, 1e-9)
	assert.InDelta(t, 0, local.Z, 1e-9)

	back := f.ToMachine(local)
	assert.InDelta(t, 100, back.X, 1e-9)
	assert.InDelta(t, 60, back.Y, 1e-9)
	assert.InDelta(t, -20, back.Z, 1e-9)
}

func TestFixture_Transform_NoRotation(t *testing.T) {
	f := Fixture{Origin: coord.Point{X: 10, Y: 20, Z: 30}}

	local := f.ToLocal(coord.Point{X: 15, Y: 25, Z: 35})
	assert.Equal(t, coord.Point{X: 5, Y: 5, Z: 5}, local)
}

func TestFromResult(t *testing.T) {
	angle := 1.5
	res := &probe.Result{
		Point: coord.Point{X: 10, Y: 0, Z: -5},
		Angle: &angle,
	}

	f := FromResult("corner", res)
	assert.Equal(t, "corner", f.Name)
	assert.Equal(t, res.Point, f.Origin)
	assert.Equal(t, 1.5, f.Rotation)
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir)
	require.NoError(t, err)

	f := Fixture{Name: "vise", Origin: coord.Point{X: 1, Y: 2, Z: 3}, Rotation: 0.25}
	require.NoError(t, s.Put(f))
	require.NoError(t, s.SetActive("vise"))

	// reopen and verify everything survived
	s2, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, f, s2.Active())
	assert.Equal(t, []Fixture{f}, s2.List())

	// replace by name
	f.Rotation = 1.5
	require.NoError(t, s2.Put(f))
	s3, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 1.5, s3.Active().Rotation)
}

func TestStore_SetActive_Unknown(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, s.SetActive("nope"))
	assert.Equal(t, Fixture{}, s.Active())
}
