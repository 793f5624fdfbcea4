package body

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/geom"
)

// Link is one rigid element of a body's kinematic chain.
type Link struct {
	name       string
	index      int
	parent     *Body
	localPose  geom.Pose // relative to the body transform
	geometries []Geometry
	enabled    bool
	mass       float64
	velocity   mgl64.Vec3
}

// NewLink creates a link with the given name and geometries. Links are
// assembled into a body with Body.AddLink.
func NewLink(name string, geometries ...Geometry) *Link {
	return &Link{
		name:       name,
		geometries: geometries,
		localPose:  geom.IdentityPose(),
		enabled:    true,
		mass:       1,
	}
}

func (l *Link) Name() string  { return l.name }
func (l *Link) Index() int    { return l.index }
func (l *Link) Parent() *Body { return l.parent }

// Pose returns the link transform in world coordinates.
func (l *Link) Pose() geom.Pose {
	if l.parent == nil {
		return l.localPose
	}
	return l.parent.pose.Compose(l.localPose)
}

// LocalPose returns the link transform relative to the body.
func (l *Link) LocalPose() geom.Pose { return l.localPose }

// SetLocalPose positions the link relative to the body.
func (l *Link) SetLocalPose(p geom.Pose) {
	l.localPose = p
	if l.parent != nil {
		l.parent.bumpStamp()
	}
}

func (l *Link) Enabled() bool        { return l.enabled }
func (l *Link) SetEnabled(on bool)   { l.enabled = on }
func (l *Link) Mass() float64        { return l.mass }
func (l *Link) SetMass(m float64)    { l.mass = m }
func (l *Link) Geometries() []Geometry { return l.geometries }

// AABB returns the link bounding box in world coordinates.
func (l *Link) AABB() geom.AABB {
	pose := l.Pose()
	var out geom.AABB
	for i := range l.geometries {
		box := l.geometries[i].LocalAABB().Transformed(pose)
		if i == 0 {
			out = box
		} else {
			out = geom.Merge(out, box)
		}
	}
	return out
}

// Triangulate appends the link's geometry, in world coordinates, to mesh.
func (l *Link) Triangulate(mesh *geom.TriMesh) {
	pose := l.Pose()
	for i := range l.geometries {
		mesh.Append(l.geometries[i].Triangulate(), pose)
	}
}

func (l *Link) clone() *Link {
	c := &Link{
		name:      l.name,
		index:     l.index,
		localPose: l.localPose,
		enabled:   l.enabled,
		mass:      l.mass,
		velocity:  l.velocity,
	}
	c.geometries = make([]Geometry, len(l.geometries))
	for i := range l.geometries {
		c.geometries[i] = l.geometries[i].clone()
	}
	return c
}
