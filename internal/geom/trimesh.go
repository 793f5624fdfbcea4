package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TriMesh is an indexed triangle mesh. Indices holds three vertex indices
// per triangle.
type TriMesh struct {
	Vertices []mgl64.Vec3
	Indices  []int
}

// Append adds the triangles of other, transformed by pose, to the mesh.
func (m *TriMesh) Append(other TriMesh, pose Pose) {
	base := len(m.Vertices)
	for _, v := range other.Vertices {
		m.Vertices = append(m.Vertices, pose.Apply(v))
	}
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// NumTriangles returns the triangle count.
func (m *TriMesh) NumTriangles() int { return len(m.Indices) / 3 }

// Clone returns an independent copy of the mesh.
func (m *TriMesh) Clone() TriMesh {
	c := TriMesh{
		Vertices: make([]mgl64.Vec3, len(m.Vertices)),
		Indices:  make([]int, len(m.Indices)),
	}
	copy(c.Vertices, m.Vertices)
	copy(c.Indices, m.Indices)
	return c
}

// BoxMesh triangulates an axis-aligned box with the given half-extents,
// centered at the origin.
func BoxMesh(extents mgl64.Vec3) TriMesh {
	e := extents
	verts := []mgl64.Vec3{
		{-e[0], -e[1], -e[2]}, {e[0], -e[1], -e[2]},
		{e[0], e[1], -e[2]}, {-e[0], e[1], -e[2]},
		{-e[0], -e[1], e[2]}, {e[0], -e[1], e[2]},
		{e[0], e[1], e[2]}, {-e[0], e[1], e[2]},
	}
	idx := []int{
		0, 2, 1, 0, 3, 2, // bottom
		4, 5, 6, 4, 6, 7, // top
		0, 1, 5, 0, 5, 4,
		1, 2, 6, 1, 6, 5,
		2, 3, 7, 2, 7, 6,
		3, 0, 4, 3, 4, 7,
	}
	return TriMesh{Vertices: verts, Indices: idx}
}

// SphereMesh triangulates a sphere of the given radius as a latitude and
// longitude grid. segments controls tessellation in both directions.
func SphereMesh(radius float64, segments int) TriMesh {
	if segments < 3 {
		segments = 3
	}
	var m TriMesh
	rings := segments
	for i := 0; i <= rings; i++ {
		phi := math.Pi * float64(i) / float64(rings)
		for j := 0; j < segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			m.Vertices = append(m.Vertices, mgl64.Vec3{
				radius * math.Sin(phi) * math.Cos(theta),
				radius * math.Sin(phi) * math.Sin(theta),
				radius * math.Cos(phi),
			})
		}
	}
	for i := 0; i < rings; i++ {
		for j := 0; j < segments; j++ {
			next := (j + 1) % segments
			a := i*segments + j
			b := i*segments + next
			c := (i+1)*segments + j
			d := (i+1)*segments + next
			m.Indices = append(m.Indices, a, c, b, b, c, d)
		}
	}
	return m
}

// CylinderMesh triangulates a z-aligned cylinder centered at the origin.
func CylinderMesh(radius, height float64, segments int) TriMesh {
	if segments < 3 {
		segments = 3
	}
	var m TriMesh
	h := height / 2
	for j := 0; j < segments; j++ {
		theta := 2 * math.Pi * float64(j) / float64(segments)
		x, y := radius*math.Cos(theta), radius*math.Sin(theta)
		m.Vertices = append(m.Vertices, mgl64.Vec3{x, y, -h}, mgl64.Vec3{x, y, h})
	}
	bottom := len(m.Vertices)
	m.Vertices = append(m.Vertices, mgl64.Vec3{0, 0, -h}, mgl64.Vec3{0, 0, h})
	for j := 0; j < segments; j++ {
		next := (j + 1) % segments
		a, b := 2*j, 2*j+1
		c, d := 2*next, 2*next+1
		// side
		m.Indices = append(m.Indices, a, c, b, b, c, d)
		// caps
		m.Indices = append(m.Indices, bottom, c, a)
		m.Indices = append(m.Indices, bottom+1, b, d)
	}
	return m
}
