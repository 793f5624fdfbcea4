// Package physics provides the built-in "basicphysics" engine: gravity
// acting on free-floating dynamic bodies, advanced with semi-implicit
// Euler steps. Static bodies and bodies attached to a static body never
// move.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/plugins"
)

// TypeName is the registered physics engine type.
const TypeName = "basicphysics"

func init() {
	plugins.Provide(TypeName, func() *plugins.Descriptor {
		return &plugins.Descriptor{
			Name: TypeName,
			Constructors: map[iface.Kind]map[string]plugins.Constructor{
				iface.KindPhysicsEngine: {
					TypeName: func() iface.Interface { return New() },
				},
			},
		}
	})
}

// Engine implements iface.PhysicsEngine. All methods run under the
// environment lock.
type Engine struct {
	iface.Base
	world   iface.World
	gravity mgl64.Vec3
	dynamic map[*body.Body]struct{}
}

// New returns an engine with earth gravity.
func New() *Engine {
	e := &Engine{
		Base:    iface.NewBase(iface.KindPhysicsEngine, TypeName),
		gravity: mgl64.Vec3{0, 0, -9.80665},
		dynamic: map[*body.Body]struct{}{},
	}
	e.SetDescription("semi-implicit Euler gravity integration")
	return e
}

func (e *Engine) InitEnvironment(w iface.World) bool {
	e.world = w
	return true
}

func (e *Engine) DestroyEnvironment() {
	e.world = nil
	e.dynamic = map[*body.Body]struct{}{}
}

func (e *Engine) InitBody(b *body.Body) bool {
	if !b.IsStatic() {
		e.dynamic[b] = struct{}{}
	}
	return true
}

func (e *Engine) RemoveBody(b *body.Body) {
	delete(e.dynamic, b)
}

func (e *Engine) SetGravity(g mgl64.Vec3) bool {
	e.gravity = g
	return true
}

func (e *Engine) Gravity() mgl64.Vec3 { return e.gravity }

// anchored reports whether b is held in place through an attachment to a
// static body.
func anchored(b *body.Body) bool {
	for _, a := range b.Attached() {
		if a.IsStatic() {
			return true
		}
	}
	return false
}

// SimulateStep integrates velocity first, then position with the updated
// velocity. Updating velocity first keeps the scheme stable where plain
// explicit Euler drifts.
func (e *Engine) SimulateStep(dt float64) {
	if e.world == nil || dt <= 0 {
		return
	}
	for b := range e.dynamic {
		if !b.Enabled() || b.IsStatic() || anchored(b) {
			continue
		}
		linear, angular := b.Velocity()
		linear = linear.Add(e.gravity.Mul(dt))
		b.SetVelocity(linear, angular)

		pose := b.Pose()
		pose.Trans = pose.Trans.Add(linear.Mul(dt))
		if w := angular.Len(); w > 1e-12 {
			spin := mgl64.QuatRotate(w*dt, angular.Mul(1/w))
			pose.Rot = spin.Mul(pose.Rot).Normalize()
		}
		b.SetPose(pose)
	}
}
