package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/iface"
)

// NullEngineType is the type name of the built-in no-op physics engine
// installed by default and by SetPhysicsEngine(nil).
const NullEngineType = "nullphysics"

// nullEngine satisfies the physics contract without moving anything.
type nullEngine struct {
	iface.Base
	gravity mgl64.Vec3
}

func newNullEngine() *nullEngine {
	return &nullEngine{Base: iface.NewBase(iface.KindPhysicsEngine, NullEngineType)}
}

func (n *nullEngine) InitEnvironment(w iface.World) bool { return true }
func (n *nullEngine) DestroyEnvironment()                {}
func (n *nullEngine) InitBody(b *body.Body) bool         { return true }
func (n *nullEngine) RemoveBody(b *body.Body)            {}
func (n *nullEngine) SimulateStep(dt float64)            {}
func (n *nullEngine) SetGravity(g mgl64.Vec3) bool       { n.gravity = g; return true }
func (n *nullEngine) Gravity() mgl64.Vec3                { return n.gravity }
