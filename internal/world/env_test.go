package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
	"github.com/mkalland/simworld/internal/iface"
)

func TestAddAssignsUniqueIDs(t *testing.T) {
	e := New()
	defer e.Destroy()

	a := boxBody("a")
	b := boxBody("b")
	require.True(t, e.Add(a, false))
	require.True(t, e.Add(b, false))

	assert.NotZero(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Same(t, a, e.BodyFromID(a.ID()))
	assert.Same(t, b, e.Body("b"))
}

func TestAddRejectsDuplicateName(t *testing.T) {
	e := New()
	defer e.Destroy()

	require.True(t, e.Add(boxBody("box"), false))
	assert.False(t, e.Add(boxBody("box"), false))
	assert.Len(t, e.Bodies(), 1)
}

func TestAnonymousAddRenames(t *testing.T) {
	e := New()
	defer e.Destroy()

	require.True(t, e.Add(boxBody("box"), false))
	second := boxBody("box")
	third := boxBody("box")
	require.True(t, e.Add(second, true))
	require.True(t, e.Add(third, true))

	assert.Equal(t, "box0", second.Name())
	assert.Equal(t, "box1", third.Name())
}

func TestIDsNeverReused(t *testing.T) {
	e := New()
	defer e.Destroy()

	a := boxBody("a")
	require.True(t, e.Add(a, false))
	removedID := a.ID()
	require.True(t, e.Remove(a))
	assert.Nil(t, e.BodyFromID(removedID))

	b := boxBody("b")
	require.True(t, e.Add(b, false))
	assert.Greater(t, b.ID(), removedID)
}

func TestRemoveUnknownBody(t *testing.T) {
	e := New()
	defer e.Destroy()
	assert.False(t, e.Remove(boxBody("ghost")))
	assert.False(t, e.Remove(nil))
}

func TestRemoveRobotReleasesGrabs(t *testing.T) {
	e := New()
	defer e.Destroy()

	r := body.NewRobot("arm")
	r.AddLink(body.NewLink("base"))
	item := boxBody("item")
	require.True(t, e.AddRobot(r, false))
	require.True(t, e.Add(item, false))
	require.True(t, r.Grab(item, 0))

	require.True(t, e.Remove(&r.Body))
	assert.False(t, r.IsGrabbing(item))
	assert.Empty(t, e.Robots())
	assert.Same(t, item, e.Body("item"))
}

func TestRemoveGrabbedBodyReleasesGrab(t *testing.T) {
	e := New()
	defer e.Destroy()

	r := body.NewRobot("arm")
	r.AddLink(body.NewLink("base"))
	item := boxBody("item")
	require.True(t, e.AddRobot(r, false))
	require.True(t, e.Add(item, false))
	require.True(t, r.Grab(item, 0))

	require.True(t, e.Remove(item))
	assert.False(t, r.IsGrabbing(item))

	// ownership is back with the caller: moving the robot and stepping
	// must not drive the removed body anymore
	pose := item.Pose()
	r.SetPose(geom.Translation(5, 0, 0))
	e.StepSimulation(0.01)
	assert.True(t, item.Pose().ApproxEqual(pose, 1e-9))
}

func TestResetRestoresInitialState(t *testing.T) {
	e := New()
	defer e.Destroy()

	b := boxBody("box")
	require.True(t, e.Add(b, false))
	origin := b.Pose()

	b.SetPose(geom.Pose{Rot: mgl64.QuatIdent(), Trans: mgl64.Vec3{1, 2, 3}})
	e.StepSimulation(0.01)
	require.NotZero(t, e.SimulationTime())

	e.Reset()
	assert.Zero(t, e.SimulationTime())
	assert.True(t, b.Pose().ApproxEqual(origin, 1e-9))
}

func TestOwnDisownInterface(t *testing.T) {
	e := New()
	defer e.Destroy()

	m := newFakeModule(0)
	e.OwnInterface(m)
	e.OwnInterface(m) // no duplicate
	require.Len(t, e.OwnedInterfaces(), 1)

	e.DisownInterface(m)
	assert.Empty(t, e.OwnedInterfaces())
	e.DisownInterface(m) // no-op
}

func TestLoadModuleLifecycle(t *testing.T) {
	e := New()
	defer e.Destroy()

	good := newFakeModule(0)
	bad := newFakeModule(3)

	assert.Equal(t, 0, e.LoadModule(good, "alpha beta"))
	assert.Equal(t, "alpha beta", good.gotArgs)
	assert.Equal(t, 3, e.LoadModule(bad, ""))

	mods, handle := e.LoadedModules()
	require.Len(t, mods, 1)
	handle.Release()

	e.StepSimulation(0.01)
	assert.EqualValues(t, 1, good.steps.Load())
	assert.Zero(t, bad.steps.Load())

	assert.True(t, e.RemoveModule(good))
	assert.True(t, good.destroyed)
	assert.False(t, e.RemoveModule(good))
}

func TestLoadSceneMergesDocument(t *testing.T) {
	e := New()
	defer e.Destroy()
	require.True(t, e.Add(boxBody("floor"), false))

	r := body.NewRobot("arm")
	r.AddLink(body.NewLink("base"))
	g := mgl64.Vec3{0, 0, -9.81}
	e.SetSceneParser(&fakeParser{doc: &SceneDoc{
		Bodies:  []*body.Body{boxBody("floor"), boxBody("crate")},
		Robots:  []*body.Robot{r},
		Gravity: &g,
	}})

	require.True(t, e.Load("scene.yaml"))
	// name clash resolved by renaming, nothing dropped
	assert.Len(t, e.Bodies(), 4)
	assert.NotNil(t, e.Body("floor0"))
	assert.NotNil(t, e.Body("crate"))
	require.Len(t, e.Robots(), 1)
	assert.Equal(t, g, e.PhysicsEngine().Gravity())
}

func TestLoadFailureLeavesRegistryUntouched(t *testing.T) {
	e := New()
	defer e.Destroy()
	require.True(t, e.Add(boxBody("floor"), false))
	e.SetSceneParser(&fakeParser{err: errBadScene})

	assert.False(t, e.Load("broken.yaml"))
	assert.False(t, e.LoadData([]byte("broken")))
	assert.Len(t, e.Bodies(), 1)
}

func TestLoadWithoutParser(t *testing.T) {
	e := New()
	defer e.Destroy()
	assert.False(t, e.Load("scene.yaml"))
	assert.Nil(t, e.ReadBodyData(nil, []byte("x"), nil))
}

func TestSaveSplitsBodiesAndRobots(t *testing.T) {
	e := New()
	defer e.Destroy()

	r := body.NewRobot("arm")
	r.AddLink(body.NewLink("base"))
	require.True(t, e.Add(boxBody("floor"), false))
	require.True(t, e.AddRobot(r, false))

	p := &fakeParser{}
	e.SetSceneParser(p)
	require.True(t, e.Save("out.yaml"))
	require.NotNil(t, p.saved)
	assert.Len(t, p.saved.Bodies, 1)
	assert.Len(t, p.saved.Robots, 1)
	// default no-op engine is not part of the scene
	assert.Empty(t, p.saved.EngineType)
}

func TestReadBodyData(t *testing.T) {
	e := New()
	defer e.Destroy()
	e.SetSceneParser(&fakeParser{})

	b := e.ReadBodyData(nil, []byte("crate"), nil)
	require.NotNil(t, b)
	assert.Equal(t, "crate", b.Name())
	// reading never registers
	assert.Empty(t, e.Bodies())
}

func TestTagReaderRegistration(t *testing.T) {
	e := New()
	defer e.Destroy()

	factory := func(target iface.Interface, atts []Attr) (TagReader, error) { return nil, nil }
	h := e.RegisterTagReader(iface.KindModule, "custom", factory)
	_, ok := e.tagLookup(iface.KindModule, "custom")
	assert.True(t, ok)

	h.Release()
	_, ok = e.tagLookup(iface.KindModule, "custom")
	assert.False(t, ok)
	h.Release() // idempotent

	// a newer registration for the same tag survives release of the old
	// handle
	old := e.RegisterTagReader(iface.KindModule, "custom", factory)
	e.RegisterTagReader(iface.KindModule, "custom", factory)
	old.Release()
	_, ok = e.tagLookup(iface.KindModule, "custom")
	assert.True(t, ok)
}

func TestTriangulateSceneSelectors(t *testing.T) {
	e := New()
	defer e.Destroy()

	r := body.NewRobot("arm")
	r.AddLink(body.NewLink("base", body.Geometry{
		Type:      body.GeomBox,
		LocalPose: geom.IdentityPose(),
		Extents:   mgl64.Vec3{0.1, 0.1, 0.1},
	}))
	require.True(t, e.Add(boxBody("floor"), false))
	require.True(t, e.Add(boxBody("crate"), false))
	require.True(t, e.AddRobot(r, false))

	const boxTris = 12
	cases := []struct {
		name string
		sel  SceneSelector
		arg  string
		want int
	}{
		{"obstacles", SelectObstacles, "", 2 * boxTris},
		{"robots", SelectRobots, "", boxTris},
		{"everything", SelectEverything, "", 3 * boxTris},
		{"one body", SelectBody, "crate", boxTris},
		{"all except", SelectAllExceptBody, "crate", 2 * boxTris},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var mesh geom.TriMesh
			e.TriangulateScene(&mesh, tc.sel, tc.arg)
			assert.Equal(t, tc.want, len(mesh.Indices)/3)
		})
	}
}

func TestDrawWithoutViewerIsInert(t *testing.T) {
	e := New()
	defer e.Destroy()

	h := e.DrawBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, mgl64.Vec4{1, 0, 0, 1})
	require.NotNil(t, h)
	h.Release()
	h.Release()
}

func TestDrawForwardsToViewer(t *testing.T) {
	e := New()
	defer e.Destroy()

	v := newFakeViewer()
	require.True(t, e.AttachViewer(v))

	h := e.DrawPoints([]mgl64.Vec3{{0, 0, 0}}, 2, mgl64.Vec4{0, 1, 0, 1})
	require.Len(t, v.graphs, 1)
	h.Release()
	assert.True(t, v.graphs[0].removed.Load())
	h.Release() // idempotent
	assert.True(t, v.graphs[0].removed.Load())
}

func TestAttachViewerReplacesAndQuits(t *testing.T) {
	e := New()
	defer e.Destroy()

	first := newFakeViewer()
	second := newFakeViewer()
	require.True(t, e.AttachViewer(first))
	require.True(t, e.AttachViewer(second))
	assert.True(t, first.quit)
	assert.Same(t, second, e.Viewer())

	require.True(t, e.AttachViewer(nil))
	assert.True(t, second.quit)
	assert.Nil(t, e.Viewer())
}

func TestDestroyTearsDownEverything(t *testing.T) {
	e := New()

	ck := newFakeChecker(false)
	v := newFakeViewer()
	m := newFakeModule(0)
	require.True(t, e.Add(boxBody("box"), false))
	require.True(t, e.SetCollisionChecker(ck))
	require.True(t, e.AttachViewer(v))
	require.Equal(t, 0, e.LoadModule(m, ""))

	e.Destroy()
	assert.True(t, ck.destroyed)
	assert.True(t, v.quit)
	assert.True(t, m.destroyed)
	assert.Empty(t, e.Bodies())
	assert.Empty(t, e.PublishedBodies())
}
