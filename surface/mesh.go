package surface

import (
	"errors"
	"math"

	"github.com/fogleman/delaunay"

	"github.com/mastercactapus/probecnc/coord"
)

// A Mesh is a triangulated surface over a set of probed points,
// queryable for the surface height anywhere inside its footprint.
type Mesh struct {
	minX, minY, maxX, maxY float64
	triangles              []coord.Triangle
}

// NewMesh triangulates the probed contact points.
func NewMesh(points []coord.Point) (*Mesh, error) {
	if len(points) < 3 {
		return nil, errors.New("need at least 3 points to create a mesh")
	}

	points2d := make([]delaunay.Point, len(points))
	m := make(map[delaunay.Point]coord.Point, len(points))

	mesh := &Mesh{
		minX: points[0].X,
		minY: points[0].Y,
		maxX: points[0].X,
		maxY: points[0].Y,
	}
	var d delaunay.Point
	for i, p := range points {
		mesh.minX = math.Min(mesh.minX, p.X)
		mesh.minY = math.Min(mesh.minY, p.Y)
		mesh.maxX = math.Max(mesh.maxX, p.X)
		mesh.maxY = math.Max(mesh.maxY, p.Y)

		d.X = p.X
		d.Y = p.Y
		m[d] = p
		points2d[i] = d
	}
	mesh.minX -= coord.Epsilon
	mesh.minY -= coord.Epsilon
	mesh.maxX += coord.Epsilon
	mesh.maxY += coord.Epsilon

	tri, err := delaunay.Triangulate(points2d)
	if err != nil {
		return nil, err
	}

	mesh.triangles = make([]coord.Triangle, 0, len(tri.Triangles)/3)

	for i := 0; i < len(tri.Triangles); i += 3 {
		mesh.triangles = append(mesh.triangles, coord.Triangle{
			A: m[tri.Points[tri.Triangles[i]]],
			B: m[tri.Points[tri.Triangles[i+1]]],
			C: m[tri.Points[tri.Triangles[i+2]]],
		})
	}

	return mesh, nil
}

// Sample walks the mesh footprint on a step grid and returns the
// interpolated surface points. Grid nodes outside the triangulation
// are skipped.
func (m Mesh) Sample(step float64) []coord.Point {
	if step <= 0 {
		return nil
	}

	var out []coord.Point
	for y := m.minY; y <= m.maxY; y += step {
		for x := m.minX; x <= m.maxX; x += step {
			ok, z := m.Z(x, y)
			if !ok {
				continue
			}
			out = append(out, coord.Point{X: x, Y: y, Z: z})
		}
	}
	return out
}

// Z returns the interpolated surface height at x,y. It reports false
// outside the probed footprint.
func (m Mesh) Z(x, y float64) (bool, float64) {
	if x < m.minX || m.maxX < x || y < m.minY || m.maxY < y {
		return false, 0
	}
	for _, t := range m.triangles {
		if !t.ContainsXY(x, y) {
			continue
		}
		return true, t.Z(x, y)
	}

	return false, 0
}
