package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/world"
)

func ball(name string) *body.Body {
	b := body.New(name)
	b.AddLink(body.NewLink("base", body.Geometry{
		Type:      body.GeomSphere,
		LocalPose: geom.IdentityPose(),
		Radius:    0.1,
	}))
	return b
}

func TestPluginRegistered(t *testing.T) {
	e := world.New()
	defer e.Destroy()

	assert.True(t, e.HasInterface(iface.KindPhysicsEngine, TypeName))
	eng := e.CreatePhysicsEngine(TypeName)
	require.NotNil(t, eng)
	assert.Equal(t, TypeName, eng.TypeName())
}

func TestFreeFall(t *testing.T) {
	e := world.New()
	defer e.Destroy()

	b := ball("ball")
	b.SetPose(geom.Translation(0, 0, 100))
	require.True(t, e.Add(b, false))
	require.True(t, e.SetPhysicsEngine(e.CreatePhysicsEngine(TypeName)))

	const dt, steps = 0.001, 1000
	for i := 0; i < steps; i++ {
		e.StepSimulation(dt)
	}

	// semi-implicit Euler after n steps: v = g n dt, z = z0 - g dt^2 n(n+1)/2
	g := 9.80665
	wantV := -g * steps * dt
	wantZ := 100 - g*dt*dt*float64(steps)*float64(steps+1)/2

	linear, _ := b.Velocity()
	assert.InDelta(t, wantV, linear.Z(), 1e-9)
	assert.InDelta(t, wantZ, b.Pose().Trans.Z(), 1e-6)
}

func TestStaticAndDisabledBodiesHold(t *testing.T) {
	e := world.New()
	defer e.Destroy()

	static := ball("static")
	static.SetStatic(true)
	disabled := ball("disabled")
	disabled.SetEnabled(false)
	require.True(t, e.Add(static, false))
	require.True(t, e.Add(disabled, false))
	require.True(t, e.SetPhysicsEngine(e.CreatePhysicsEngine(TypeName)))

	e.StepSimulation(0.1)
	assert.Zero(t, static.Pose().Trans.Z())
	assert.Zero(t, disabled.Pose().Trans.Z())
}

func TestAttachmentToStaticAnchors(t *testing.T) {
	e := world.New()
	defer e.Destroy()

	base := ball("base")
	base.SetStatic(true)
	tool := ball("tool")
	require.True(t, e.Add(base, false))
	require.True(t, e.Add(tool, false))
	require.True(t, e.SetPhysicsEngine(e.CreatePhysicsEngine(TypeName)))

	base.Attach(tool)
	e.StepSimulation(0.1)
	assert.Zero(t, tool.Pose().Trans.Z())

	base.Detach(tool)
	e.StepSimulation(0.1)
	assert.Negative(t, tool.Pose().Trans.Z())
}

func TestCustomGravity(t *testing.T) {
	e := world.New()
	defer e.Destroy()

	b := ball("ball")
	require.True(t, e.Add(b, false))
	require.True(t, e.SetPhysicsEngine(e.CreatePhysicsEngine(TypeName)))

	g := mgl64.Vec3{1, 0, 0}
	require.True(t, e.PhysicsEngine().SetGravity(g))
	assert.Equal(t, g, e.PhysicsEngine().Gravity())

	e.StepSimulation(1)
	assert.Positive(t, b.Pose().Trans.X())
	assert.Zero(t, b.Pose().Trans.Z())
}

func TestAngularVelocitySpinsBody(t *testing.T) {
	e := world.New()
	defer e.Destroy()

	b := ball("top")
	b.SetVelocity(mgl64.Vec3{}, mgl64.Vec3{0, 0, math.Pi})
	require.True(t, e.Add(b, false))
	require.True(t, e.SetPhysicsEngine(e.CreatePhysicsEngine(TypeName)))
	require.True(t, e.PhysicsEngine().SetGravity(mgl64.Vec3{}))

	// half a turn about z in one second
	for i := 0; i < 100; i++ {
		e.StepSimulation(0.01)
	}
	rotated := b.Pose().Rot.Rotate(mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, -1, rotated.X(), 1e-9)
	assert.InDelta(t, 0, rotated.Y(), 1e-9)
}
