package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
)

func clonableWorld(t *testing.T) (*Environment, *body.Body, *body.Robot, *body.Body) {
	t.Helper()
	e := New()

	floor := boxBody("floor")
	item := boxBody("item")
	r := body.NewRobot("arm")
	r.AddLink(body.NewLink("base"))

	require.True(t, e.Add(floor, false))
	require.True(t, e.AddRobot(r, false))
	require.True(t, e.Add(item, false))

	floor.Attach(item)
	require.True(t, r.Grab(item, 0))
	return e, floor, r, item
}

func TestClonePreservesIdentifiers(t *testing.T) {
	e, floor, r, item := clonableWorld(t)
	defer e.Destroy()

	c := e.Clone(0)
	defer c.Destroy()

	require.Len(t, c.Bodies(), 3)
	require.Len(t, c.Robots(), 1)
	for _, orig := range []*body.Body{floor, &r.Body, item} {
		cb := c.BodyFromID(orig.ID())
		require.NotNil(t, cb, "body %q missing from clone", orig.Name())
		assert.NotSame(t, orig, cb)
		assert.Equal(t, orig.Name(), cb.Name())
	}
}

func TestCloneRelinksAttachmentsAndGrabs(t *testing.T) {
	e, floor, r, item := clonableWorld(t)
	defer e.Destroy()

	c := e.Clone(0)
	defer c.Destroy()

	cFloor := c.BodyFromID(floor.ID())
	cItem := c.BodyFromID(item.ID())
	cArm := c.Robot("arm")
	require.NotNil(t, cArm)

	assert.True(t, cFloor.IsAttached(cItem))
	assert.True(t, cArm.IsGrabbing(cItem))
	// links into the source world must not leak into the clone
	assert.False(t, cFloor.IsAttached(item))
	assert.False(t, cArm.IsGrabbing(item))
	_ = r
}

func TestCloneIsIndependent(t *testing.T) {
	e, floor, _, _ := clonableWorld(t)
	defer e.Destroy()

	c := e.Clone(0)
	defer c.Destroy()

	moved := geom.Pose{Rot: mgl64.QuatIdent(), Trans: mgl64.Vec3{5, 0, 0}}
	floor.SetPose(moved)
	cFloor := c.BodyFromID(floor.ID())
	assert.False(t, cFloor.Pose().ApproxEqual(moved, 1e-9))

	// adding to the clone never collides with source identifiers
	extra := boxBody("extra")
	require.True(t, c.Add(extra, false))
	assert.Nil(t, e.BodyFromID(extra.ID()))
}

func TestCloneContinuesIDSequence(t *testing.T) {
	e, _, _, item := clonableWorld(t)
	defer e.Destroy()

	c := e.Clone(0)
	defer c.Destroy()

	extra := boxBody("extra")
	require.True(t, c.Add(extra, false))
	assert.Greater(t, extra.ID(), item.ID())
}

func TestCloneSimulationOption(t *testing.T) {
	e, _, _, _ := clonableWorld(t)
	defer e.Destroy()
	e.StepSimulation(0.5)

	plain := e.Clone(0)
	defer plain.Destroy()
	assert.Zero(t, plain.SimulationTime())

	timed := e.Clone(CloneSimulation)
	defer timed.Destroy()
	assert.Equal(t, e.SimulationTime(), timed.SimulationTime())
}

func TestCloneCopiesGravity(t *testing.T) {
	e, _, _, _ := clonableWorld(t)
	defer e.Destroy()

	g := mgl64.Vec3{0, 0, -3.7}
	e.PhysicsEngine().SetGravity(g)

	c := e.Clone(0)
	defer c.Destroy()
	assert.Equal(t, g, c.PhysicsEngine().Gravity())
}

func TestClonePublishesItsOwnSnapshot(t *testing.T) {
	e, _, _, _ := clonableWorld(t)
	defer e.Destroy()

	c := e.Clone(0)
	defer c.Destroy()
	assert.Len(t, c.PublishedBodies(), 3)
}
