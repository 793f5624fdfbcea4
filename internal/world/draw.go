package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/geom"
	"github.com/mkalland/simworld/internal/iface"
)

// GraphHandle wraps a drawn primitive. Release erases the primitive from
// the viewer and is idempotent. A handle from a draw call made with no
// viewer attached is inert but still valid to release.
type GraphHandle struct {
	g    iface.Graph
	once sync.Once
}

// Release erases the primitive.
func (h *GraphHandle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		if h.g != nil {
			h.g.Remove()
		}
	})
}

func (e *Environment) draw(fn func(v iface.Viewer) iface.Graph) *GraphHandle {
	e.mu.Lock()
	v := e.viewer
	e.mu.Unlock()
	if v == nil {
		return &GraphHandle{}
	}
	return &GraphHandle{g: fn(v)}
}

// DrawPoints plots points on the attached viewer.
func (e *Environment) DrawPoints(points []mgl64.Vec3, size float64, color mgl64.Vec4) *GraphHandle {
	return e.draw(func(v iface.Viewer) iface.Graph { return v.DrawPoints(points, size, color) })
}

// DrawLineStrip draws connected line segments through the points.
func (e *Environment) DrawLineStrip(points []mgl64.Vec3, width float64, color mgl64.Vec4) *GraphHandle {
	return e.draw(func(v iface.Viewer) iface.Graph { return v.DrawLineStrip(points, width, color) })
}

// DrawLineList draws one segment per consecutive point pair.
func (e *Environment) DrawLineList(points []mgl64.Vec3, width float64, color mgl64.Vec4) *GraphHandle {
	return e.draw(func(v iface.Viewer) iface.Graph { return v.DrawLineList(points, width, color) })
}

// DrawArrow draws an arrow from one point to another.
func (e *Environment) DrawArrow(from, to mgl64.Vec3, width float64, color mgl64.Vec4) *GraphHandle {
	return e.draw(func(v iface.Viewer) iface.Graph { return v.DrawArrow(from, to, width, color) })
}

// DrawBox draws an axis-aligned box with the given half-extents.
func (e *Environment) DrawBox(pos, extents mgl64.Vec3, color mgl64.Vec4) *GraphHandle {
	return e.draw(func(v iface.Viewer) iface.Graph { return v.DrawBox(pos, extents, color) })
}

// DrawPlane draws a finite plane patch at the given pose.
func (e *Environment) DrawPlane(pose geom.Pose, extents mgl64.Vec3, color mgl64.Vec4) *GraphHandle {
	return e.draw(func(v iface.Viewer) iface.Graph { return v.DrawPlane(pose, extents, color) })
}

// DrawTriMesh draws a triangle mesh.
func (e *Environment) DrawTriMesh(mesh geom.TriMesh, color mgl64.Vec4) *GraphHandle {
	return e.draw(func(v iface.Viewer) iface.Graph { return v.DrawTriMesh(mesh, color) })
}
