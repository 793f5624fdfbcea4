// Package body implements the simulated objects managed by an environment:
// rigid and articulated bodies assembled from links, joints and geometric
// primitives, and the robot specialization with actuated joints.
//
// Bodies carry no locking of their own. The owning environment serializes
// all mutation behind its lock; code outside a locked section must read
// body data through the published-state snapshot instead.
package body

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/geom"
)

// Body is a simulated rigid or articulated object. The zero value is not
// usable; construct with New.
type Body struct {
	name        string
	id          int
	description string
	pose        geom.Pose
	links       []*Link
	joints      []*Joint
	enabled     bool
	static      bool
	linearVel   mgl64.Vec3
	angularVel  mgl64.Vec3
	attached    []*Body
	userData    any
	updateStamp int
	initial     *initialState
}

type initialState struct {
	pose        geom.Pose
	jointValues []float64
}

// New creates an empty body with the given name.
func New(name string) *Body {
	return &Body{
		name:    name,
		pose:    geom.IdentityPose(),
		enabled: true,
	}
}

func (b *Body) Name() string { return b.name }

// SetName renames the body. The environment registry relies on names being
// unique among live bodies; renaming a registered body is the caller's
// responsibility to coordinate.
func (b *Body) SetName(name string) { b.name = name }

// ID returns the environment-scoped identifier, 0 before the body is added
// to an environment.
func (b *Body) ID() int { return b.id }

// SetID assigns the environment identifier. Managed by the environment
// registry; client code should never call this.
func (b *Body) SetID(id int) { b.id = id }

func (b *Body) Description() string        { return b.description }
func (b *Body) SetDescription(d string)    { b.description = d }
func (b *Body) UserData() any              { return b.userData }
func (b *Body) SetUserData(d any)          { b.userData = d }
func (b *Body) Enabled() bool              { return b.enabled }
func (b *Body) IsStatic() bool             { return b.static }
func (b *Body) SetStatic(s bool)           { b.static = s }
func (b *Body) UpdateStamp() int           { return b.updateStamp }

// SetEnabled toggles the body's participation in collision checking.
func (b *Body) SetEnabled(on bool) {
	b.enabled = on
	b.bumpStamp()
}

func (b *Body) bumpStamp() { b.updateStamp++ }

// AddLink appends a link to the body and returns its index.
func (b *Body) AddLink(l *Link) int {
	l.index = len(b.links)
	l.parent = b
	b.links = append(b.links, l)
	b.bumpStamp()
	return l.index
}

// AddJoint appends a joint and recomputes kinematics. Joints must be added
// in chain order: a joint's parent link pose must be fully determined by
// previously added joints.
func (b *Body) AddJoint(j *Joint) int {
	j.index = len(b.joints)
	b.joints = append(b.joints, j)
	b.updateKinematics()
	return j.index
}

func (b *Body) Links() []*Link   { return b.links }
func (b *Body) Joints() []*Joint { return b.joints }

// Link returns the named link, or nil.
func (b *Body) Link(name string) *Link {
	for _, l := range b.links {
		if l.name == name {
			return l
		}
	}
	return nil
}

// DOF returns the number of joint degrees of freedom.
func (b *Body) DOF() int { return len(b.joints) }

// Pose returns the body transform in world coordinates.
func (b *Body) Pose() geom.Pose { return b.pose }

// SetPose moves the body, carrying all links with it.
func (b *Body) SetPose(p geom.Pose) {
	b.pose = p
	b.bumpStamp()
}

// Velocity returns the linear and angular velocity of the base link.
func (b *Body) Velocity() (linear, angular mgl64.Vec3) {
	return b.linearVel, b.angularVel
}

// SetVelocity sets the base link velocity used by physics engines.
func (b *Body) SetVelocity(linear, angular mgl64.Vec3) {
	b.linearVel = linear
	b.angularVel = angular
}

// JointValues returns a copy of the current joint values.
func (b *Body) JointValues() []float64 {
	vals := make([]float64, len(b.joints))
	for i, j := range b.joints {
		vals[i] = j.value
	}
	return vals
}

// SetJointValues sets joint values, clamping to limits, and updates link
// poses. Extra values are ignored; missing values leave joints unchanged.
func (b *Body) SetJointValues(vals []float64) {
	for i, j := range b.joints {
		if i >= len(vals) {
			break
		}
		j.value = j.clamp(vals[i])
	}
	b.updateKinematics()
}

// JointVelocities returns a copy of the current joint velocities.
func (b *Body) JointVelocities() []float64 {
	vels := make([]float64, len(b.joints))
	for i, j := range b.joints {
		vels[i] = j.velocity
	}
	return vels
}

// SetJointVelocities sets joint velocities used by physics engines.
func (b *Body) SetJointVelocities(vels []float64) {
	for i, j := range b.joints {
		if i >= len(vels) {
			break
		}
		j.velocity = vels[i]
	}
}

// updateKinematics propagates joint values through the chain, positioning
// every joint's child link relative to its parent link.
func (b *Body) updateKinematics() {
	for _, j := range b.joints {
		if j.parent < 0 || j.parent >= len(b.links) || j.child < 0 || j.child >= len(b.links) {
			continue
		}
		parent := b.links[j.parent]
		b.links[j.child].localPose = parent.localPose.Compose(j.childLocalPose())
	}
	b.bumpStamp()
}

// AABB returns the bounding box of all enabled links in world coordinates.
func (b *Body) AABB() geom.AABB {
	var out geom.AABB
	first := true
	for _, l := range b.links {
		if !l.enabled || len(l.geometries) == 0 {
			continue
		}
		box := l.AABB()
		if first {
			out = box
			first = false
		} else {
			out = geom.Merge(out, box)
		}
	}
	return out
}

// Triangulate appends the body's full geometry, at its current transform,
// to mesh.
func (b *Body) Triangulate(mesh *geom.TriMesh) {
	for _, l := range b.links {
		l.Triangulate(mesh)
	}
}

// Attach links two bodies so they are treated as one unit for collision
// purposes. Attachment is symmetric and idempotent.
func (b *Body) Attach(other *Body) {
	if other == nil || other == b || b.isDirectlyAttached(other) {
		return
	}
	b.attached = append(b.attached, other)
	other.attached = append(other.attached, b)
}

// Detach removes a direct attachment. It reports whether the bodies were
// attached.
func (b *Body) Detach(other *Body) bool {
	if !b.isDirectlyAttached(other) {
		return false
	}
	b.attached = removeBody(b.attached, other)
	other.attached = removeBody(other.attached, b)
	return true
}

// Attached returns the directly attached bodies.
func (b *Body) Attached() []*Body {
	out := make([]*Body, len(b.attached))
	copy(out, b.attached)
	return out
}

func (b *Body) isDirectlyAttached(other *Body) bool {
	for _, a := range b.attached {
		if a == other {
			return true
		}
	}
	return false
}

// IsAttached reports whether other is reachable through the attachment
// graph, directly or transitively.
func (b *Body) IsAttached(other *Body) bool {
	if other == nil || other == b {
		return false
	}
	seen := map[*Body]bool{b: true}
	queue := []*Body{b}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, a := range cur.attached {
			if a == other {
				return true
			}
			if !seen[a] {
				seen[a] = true
				queue = append(queue, a)
			}
		}
	}
	return false
}

func removeBody(list []*Body, b *Body) []*Body {
	for i, x := range list {
		if x == b {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// CaptureInitial records the current pose and joint values as the
// configuration restored by RestoreInitial. The environment captures this
// when a body is added.
func (b *Body) CaptureInitial() {
	b.initial = &initialState{
		pose:        b.pose,
		jointValues: b.JointValues(),
	}
}

// RestoreInitial returns the body to the captured configuration; a no-op
// if none was captured.
func (b *Body) RestoreInitial() {
	if b.initial == nil {
		return
	}
	b.pose = b.initial.pose
	b.SetJointValues(b.initial.jointValues)
	b.linearVel = mgl64.Vec3{}
	b.angularVel = mgl64.Vec3{}
	for _, j := range b.joints {
		j.velocity = 0
	}
	b.bumpStamp()
}

// PublishedState captures the body's externally visible state. The result
// shares no mutable memory with the body.
type PublishedState struct {
	ID          int
	Name        string
	Pose        geom.Pose
	JointValues []float64
	Enabled     bool
	UpdateStamp int
}

// Published returns a decoupled snapshot of the body's state.
func (b *Body) Published() PublishedState {
	return PublishedState{
		ID:          b.id,
		Name:        b.name,
		Pose:        b.pose,
		JointValues: b.JointValues(),
		Enabled:     b.enabled,
		UpdateStamp: b.updateStamp,
	}
}

// Clone returns a structurally independent deep copy preserving the body's
// identifier, name and current configuration. Attachments are not copied;
// the environment re-establishes them by identifier when cloning a whole
// world.
func (b *Body) Clone() *Body {
	c := &Body{
		name:        b.name,
		id:          b.id,
		description: b.description,
		pose:        b.pose,
		enabled:     b.enabled,
		static:      b.static,
		linearVel:   b.linearVel,
		angularVel:  b.angularVel,
		updateStamp: b.updateStamp,
	}
	c.links = make([]*Link, len(b.links))
	for i, l := range b.links {
		cl := l.clone()
		cl.parent = c
		c.links[i] = cl
	}
	c.joints = make([]*Joint, len(b.joints))
	for i, j := range b.joints {
		c.joints[i] = j.clone()
	}
	if b.initial != nil {
		vals := make([]float64, len(b.initial.jointValues))
		copy(vals, b.initial.jointValues)
		c.initial = &initialState{pose: b.initial.pose, jointValues: vals}
	}
	return c
}
