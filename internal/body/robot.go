package body

import (
	"github.com/mkalland/simworld/internal/geom"
)

// Controller drives a robot's actuated joints. Concrete implementations
// live in controller plugins; declaring the contract here keeps this
// package free of plugin dependencies.
type Controller interface {
	// Init binds the controller to a robot. It reports whether the robot
	// is acceptable (e.g. has the expected number of DOF).
	Init(r *Robot) bool
	// SetDesired sets the target joint values.
	SetDesired(values []float64) bool
	// Simulate advances the controller by dt seconds, writing joint
	// values/velocities into the robot.
	Simulate(dt float64) bool
	// IsDone reports whether the current command has completed.
	IsDone() bool
	// Reset clears controller state.
	Reset()
}

// Grab records a body held rigidly by a robot link.
type Grab struct {
	Body      *Body
	LinkIndex int
	// RelPose is the grabbed body pose expressed in the grabbing link frame.
	RelPose geom.Pose
}

// Robot is a body with actuated degrees of freedom and an optional
// attached controller.
type Robot struct {
	Body
	controller Controller
	grabbed    []*Grab
}

// NewRobot creates an empty robot with the given name.
func NewRobot(name string) *Robot {
	r := &Robot{}
	r.Body = *New(name)
	// the embedded links need their parent pointer fixed up
	for _, l := range r.links {
		l.parent = &r.Body
	}
	return r
}

// Controller returns the attached controller, or nil.
func (r *Robot) Controller() Controller { return r.controller }

// SetController attaches a controller, initializing it against the robot.
// It reports whether initialization succeeded; on failure no controller is
// attached.
func (r *Robot) SetController(c Controller) bool {
	if c == nil {
		r.controller = nil
		return true
	}
	if !c.Init(r) {
		return false
	}
	r.controller = c
	return true
}

// SimulateController advances the attached controller, then updates the
// poses of grabbed bodies. Called by the environment once per simulation
// step.
func (r *Robot) SimulateController(dt float64) {
	if r.controller != nil {
		r.controller.Simulate(dt)
	}
	r.updateGrabbed()
}

// Grab rigidly attaches a body to the given robot link at its current
// relative pose. It reports whether the grab took effect.
func (r *Robot) Grab(b *Body, linkIndex int) bool {
	if b == nil || linkIndex < 0 || linkIndex >= len(r.links) || r.IsGrabbing(b) {
		return false
	}
	linkPose := r.links[linkIndex].Pose()
	rel := linkPose.Inverse().Compose(b.Pose())
	r.grabbed = append(r.grabbed, &Grab{Body: b, LinkIndex: linkIndex, RelPose: rel})
	r.Attach(b)
	return true
}

// Release drops a grabbed body. It reports whether the body was grabbed.
func (r *Robot) Release(b *Body) bool {
	for i, g := range r.grabbed {
		if g.Body == b {
			r.grabbed = append(r.grabbed[:i], r.grabbed[i+1:]...)
			r.Detach(b)
			return true
		}
	}
	return false
}

// ReleaseAll drops every grabbed body.
func (r *Robot) ReleaseAll() {
	for _, g := range r.grabbed {
		r.Detach(g.Body)
	}
	r.grabbed = nil
}

// IsGrabbing reports whether the robot currently holds b.
func (r *Robot) IsGrabbing(b *Body) bool {
	for _, g := range r.grabbed {
		if g.Body == b {
			return true
		}
	}
	return false
}

// Grabbed returns the bodies currently held.
func (r *Robot) Grabbed() []*Body {
	out := make([]*Body, len(r.grabbed))
	for i, g := range r.grabbed {
		out[i] = g.Body
	}
	return out
}

// Grabs returns the grab records, exposed for cloning.
func (r *Robot) Grabs() []*Grab {
	out := make([]*Grab, len(r.grabbed))
	copy(out, r.grabbed)
	return out
}

// SetPose moves the robot and keeps grabbed bodies rigidly attached.
func (r *Robot) SetPose(p geom.Pose) {
	r.Body.SetPose(p)
	r.updateGrabbed()
}

// SetJointValues sets joint values and keeps grabbed bodies rigidly
// attached to their grabbing links.
func (r *Robot) SetJointValues(vals []float64) {
	r.Body.SetJointValues(vals)
	r.updateGrabbed()
}

func (r *Robot) updateGrabbed() {
	for _, g := range r.grabbed {
		if g.LinkIndex < 0 || g.LinkIndex >= len(r.links) {
			continue
		}
		g.Body.SetPose(r.links[g.LinkIndex].Pose().Compose(g.RelPose))
	}
}

// RestoreGrab re-establishes a grab record directly, used when cloning an
// environment to rebuild grabs by identifier.
func (r *Robot) RestoreGrab(b *Body, linkIndex int, rel geom.Pose) {
	if b == nil || r.IsGrabbing(b) {
		return
	}
	r.grabbed = append(r.grabbed, &Grab{Body: b, LinkIndex: linkIndex, RelPose: rel})
	r.Attach(b)
}

// Clone returns a deep copy of the robot. The controller and grab records
// are not carried over; the environment reconstructs grabs by identifier
// and controllers are reattached explicitly.
func (r *Robot) Clone() *Robot {
	c := &Robot{}
	c.Body = *r.Body.Clone()
	for _, l := range c.links {
		l.parent = &c.Body
	}
	return c
}
