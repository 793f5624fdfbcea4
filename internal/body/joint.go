package body

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/geom"
)

// JointType enumerates supported single-DOF joint kinds.
type JointType int

const (
	JointRevolute JointType = iota
	JointPrismatic
)

func (t JointType) String() string {
	if t == JointPrismatic {
		return "prismatic"
	}
	return "revolute"
}

// Joint connects a parent link to a child link with one degree of freedom.
// The child link's local pose is derived from the parent pose, the joint
// origin and the current joint value.
type Joint struct {
	name     string
	index    int
	jtype    JointType
	parent   int       // parent link index
	child    int       // child link index
	origin   geom.Pose // child frame at zero value, relative to parent link
	axis     mgl64.Vec3
	limits   [2]float64
	value    float64
	velocity float64
}

// NewJoint creates a joint of the given type between two link indices.
// origin is the child link frame at the zero position, relative to the
// parent link; axis is expressed in the origin frame.
func NewJoint(name string, jtype JointType, parent, child int, origin geom.Pose, axis mgl64.Vec3) *Joint {
	if axis.Len() == 0 {
		axis = mgl64.Vec3{0, 0, 1}
	}
	return &Joint{
		name:   name,
		jtype:  jtype,
		parent: parent,
		child:  child,
		origin: origin,
		axis:   axis.Normalize(),
		limits: [2]float64{math.Inf(-1), math.Inf(1)},
	}
}

func (j *Joint) Name() string       { return j.name }
func (j *Joint) Index() int         { return j.index }
func (j *Joint) Type() JointType    { return j.jtype }
func (j *Joint) ParentLink() int    { return j.parent }
func (j *Joint) ChildLink() int     { return j.child }
func (j *Joint) Axis() mgl64.Vec3   { return j.axis }
func (j *Joint) Origin() geom.Pose  { return j.origin }
func (j *Joint) Value() float64     { return j.value }
func (j *Joint) Velocity() float64  { return j.velocity }
func (j *Joint) Limits() (float64, float64) { return j.limits[0], j.limits[1] }

// SetLimits clamps future joint values to [lo, hi].
func (j *Joint) SetLimits(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	j.limits = [2]float64{lo, hi}
}

func (j *Joint) clamp(v float64) float64 {
	return math.Max(j.limits[0], math.Min(j.limits[1], v))
}

// childLocalPose computes the child link pose relative to the parent link
// for the current joint value.
func (j *Joint) childLocalPose() geom.Pose {
	switch j.jtype {
	case JointPrismatic:
		slide := geom.Pose{Rot: mgl64.QuatIdent(), Trans: j.axis.Mul(j.value)}
		return j.origin.Compose(slide)
	default:
		spin := geom.Pose{Rot: mgl64.QuatRotate(j.value, j.axis)}
		return j.origin.Compose(spin)
	}
}

func (j *Joint) clone() *Joint {
	c := *j
	return &c
}
