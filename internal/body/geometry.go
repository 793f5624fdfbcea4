package body

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/geom"
)

// GeometryType enumerates the primitive shapes a link can be built from.
type GeometryType int

const (
	GeomBox GeometryType = iota
	GeomSphere
	GeomCylinder
	GeomTriMesh
)

func (g GeometryType) String() string {
	switch g {
	case GeomBox:
		return "box"
	case GeomSphere:
		return "sphere"
	case GeomCylinder:
		return "cylinder"
	case GeomTriMesh:
		return "trimesh"
	}
	return "unknown"
}

// Geometry is one collision/render primitive attached to a link.
type Geometry struct {
	Type      GeometryType
	LocalPose geom.Pose  // relative to the owning link
	Extents   mgl64.Vec3 // box half-extents
	Radius    float64    // sphere and cylinder
	Height    float64    // cylinder, along local z
	Mesh      geom.TriMesh
	Color     mgl64.Vec4
}

// LocalAABB returns the bounding box of the primitive in link coordinates.
func (g *Geometry) LocalAABB() geom.AABB {
	var box geom.AABB
	switch g.Type {
	case GeomBox:
		box = geom.AABB{Extents: g.Extents}
	case GeomSphere:
		box = geom.AABB{Extents: mgl64.Vec3{g.Radius, g.Radius, g.Radius}}
	case GeomCylinder:
		box = geom.AABB{Extents: mgl64.Vec3{g.Radius, g.Radius, g.Height / 2}}
	case GeomTriMesh:
		box = meshAABB(g.Mesh)
	}
	return box.Transformed(g.LocalPose)
}

// Triangulate returns the primitive tessellated into a mesh in link
// coordinates.
func (g *Geometry) Triangulate() geom.TriMesh {
	var m geom.TriMesh
	switch g.Type {
	case GeomBox:
		m = geom.BoxMesh(g.Extents)
	case GeomSphere:
		m = geom.SphereMesh(g.Radius, 16)
	case GeomCylinder:
		m = geom.CylinderMesh(g.Radius, g.Height, 16)
	case GeomTriMesh:
		m = g.Mesh.Clone()
	}
	var out geom.TriMesh
	out.Append(m, g.LocalPose)
	return out
}

func (g *Geometry) clone() Geometry {
	c := *g
	c.Mesh = g.Mesh.Clone()
	return c
}

func meshAABB(m geom.TriMesh) geom.AABB {
	if len(m.Vertices) == 0 {
		return geom.AABB{}
	}
	lo, hi := m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], v[i])
			hi[i] = math.Max(hi[i], v[i])
		}
	}
	return geom.AABB{Pos: lo.Add(hi).Mul(0.5), Extents: hi.Sub(lo).Mul(0.5)}
}
