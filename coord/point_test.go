package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint_Add(t *testing.T) {
	a := Point{X: 1, Y: 2, Z: 3}
	b := Point{X: 4, Y: 5, Z: 6}

	assert.Equal(t, Point{X: 5, Y: 7, Z: 9}, a.Add(b))
}

func TestPoint_Midpoint(t *testing.T) {
	a := Point{X: 0, Y: 0, Z: 0}
	b := Point{X: 10, Y: 0, Z: 0}

	assert.Equal(t, Point{X: 5, Y: 0, Z: 0}, a.Midpoint(b))

	a = Point{X: -4, Y: 6, Z: 2}
	b = Point{X: 4, Y: -6, Z: 2}
	assert.Equal(t, Point{X: 0, Y: 0, Z: 2}, a.Midpoint(b))
}

func TestPoint_DistanceXY(t *testing.T) {
	dist := Point{X: 1, Y: 2, Z: 3}.DistanceXY(4, 5)
	assert.InEpsilon(t, 4.24264, dist, .01)
}

func TestCentroid(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 5, Y: 5},
		{X: 5, Y: -5},
	}

	assert.Equal(t, Point{X: 5, Y: 0}, Centroid(points))
	assert.Equal(t, Point{}, Centroid(nil))
}
