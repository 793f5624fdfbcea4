package world

import (
	"errors"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
	"github.com/mkalland/simworld/internal/iface"
)

func boxBody(name string) *body.Body {
	b := body.New(name)
	b.AddLink(body.NewLink("base", body.Geometry{
		Type:      body.GeomBox,
		LocalPose: geom.IdentityPose(),
		Extents:   mgl64.Vec3{0.5, 0.5, 0.5},
	}))
	return b
}

// fakeChecker reports every query as colliding (or not), and counts them.
type fakeChecker struct {
	iface.Base
	hit       bool
	queries   atomic.Int64
	initedEnv bool
	destroyed bool
	known     map[*body.Body]bool
	refuse    bool
}

func newFakeChecker(hit bool) *fakeChecker {
	return &fakeChecker{
		Base:  iface.NewBase(iface.KindCollisionChecker, "fakechecker"),
		hit:   hit,
		known: map[*body.Body]bool{},
	}
}

func (f *fakeChecker) InitEnvironment(w iface.World) bool {
	if f.refuse {
		return false
	}
	f.initedEnv = true
	return true
}
func (f *fakeChecker) DestroyEnvironment()        { f.destroyed = true }
func (f *fakeChecker) InitBody(b *body.Body) bool { f.known[b] = true; return true }
func (f *fakeChecker) RemoveBody(b *body.Body)    { delete(f.known, b) }

func (f *fakeChecker) answer(report *iface.CollisionReport, a, b *body.Body) bool {
	f.queries.Add(1)
	if f.hit && report != nil {
		report.BodyA = a
		report.BodyB = b
	}
	return f.hit
}

func (f *fakeChecker) CheckBody(b *body.Body, r *iface.CollisionReport) bool {
	return f.answer(r, b, nil)
}
func (f *fakeChecker) CheckBodyBody(a, b *body.Body, r *iface.CollisionReport) bool {
	return f.answer(r, a, b)
}
func (f *fakeChecker) CheckLink(l *body.Link, r *iface.CollisionReport) bool {
	return f.answer(r, nil, nil)
}
func (f *fakeChecker) CheckLinkLink(a, b *body.Link, r *iface.CollisionReport) bool {
	return f.answer(r, nil, nil)
}
func (f *fakeChecker) CheckLinkBody(l *body.Link, b *body.Body, r *iface.CollisionReport) bool {
	return f.answer(r, nil, b)
}
func (f *fakeChecker) CheckBodyExcluded(b *body.Body, eb []*body.Body, el []*body.Link, r *iface.CollisionReport) bool {
	return f.answer(r, b, nil)
}
func (f *fakeChecker) CheckLinkExcluded(l *body.Link, eb []*body.Body, el []*body.Link, r *iface.CollisionReport) bool {
	return f.answer(r, nil, nil)
}
func (f *fakeChecker) CheckRayLink(ray geom.Ray, l *body.Link, r *iface.CollisionReport) bool {
	return f.answer(r, nil, nil)
}
func (f *fakeChecker) CheckRayBody(ray geom.Ray, b *body.Body, r *iface.CollisionReport) bool {
	return f.answer(r, nil, b)
}
func (f *fakeChecker) CheckRay(ray geom.Ray, r *iface.CollisionReport) bool {
	return f.answer(r, nil, nil)
}
func (f *fakeChecker) CheckSelfCollision(b *body.Body, r *iface.CollisionReport) bool {
	return f.answer(r, b, b)
}

// fakeEngine counts steps.
type fakeEngine struct {
	iface.Base
	steps   atomic.Int64
	gravity mgl64.Vec3
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{Base: iface.NewBase(iface.KindPhysicsEngine, "fakeengine")}
}

func (f *fakeEngine) InitEnvironment(w iface.World) bool { return true }
func (f *fakeEngine) DestroyEnvironment()                {}
func (f *fakeEngine) InitBody(b *body.Body) bool         { return true }
func (f *fakeEngine) RemoveBody(b *body.Body)            {}
func (f *fakeEngine) SimulateStep(dt float64)            { f.steps.Add(1) }
func (f *fakeEngine) SetGravity(g mgl64.Vec3) bool       { f.gravity = g; return true }
func (f *fakeEngine) Gravity() mgl64.Vec3                { return f.gravity }

// fakeModule records its lifecycle.
type fakeModule struct {
	iface.Base
	exitCode  int
	steps     atomic.Int64
	destroyed bool
	gotArgs   string
}

func newFakeModule(exitCode int) *fakeModule {
	return &fakeModule{Base: iface.NewBase(iface.KindModule, "fakemodule"), exitCode: exitCode}
}

func (f *fakeModule) Main(w iface.World, args string) int {
	f.gotArgs = args
	return f.exitCode
}
func (f *fakeModule) SimulationStep(dt float64) { f.steps.Add(1) }
func (f *fakeModule) Destroy()                  { f.destroyed = true }

type fakeGraph struct{ removed atomic.Bool }

func (g *fakeGraph) Remove() { g.removed.Store(true) }

// fakeViewer records published snapshots and drawn primitives.
type fakeViewer struct {
	iface.Base
	updates atomic.Int64
	last    []body.PublishedState
	quit    bool
	graphs  []*fakeGraph
}

func newFakeViewer() *fakeViewer {
	return &fakeViewer{Base: iface.NewBase(iface.KindViewer, "fakeviewer")}
}

func (f *fakeViewer) Init(w iface.World) bool { return true }
func (f *fakeViewer) Quit()                   { f.quit = true }
func (f *fakeViewer) UpdateBodies(states []body.PublishedState) {
	f.updates.Add(1)
	f.last = states
}

func (f *fakeViewer) graph() iface.Graph {
	g := &fakeGraph{}
	f.graphs = append(f.graphs, g)
	return g
}

func (f *fakeViewer) DrawPoints(p []mgl64.Vec3, s float64, c mgl64.Vec4) iface.Graph { return f.graph() }
func (f *fakeViewer) DrawLineStrip(p []mgl64.Vec3, w float64, c mgl64.Vec4) iface.Graph {
	return f.graph()
}
func (f *fakeViewer) DrawLineList(p []mgl64.Vec3, w float64, c mgl64.Vec4) iface.Graph {
	return f.graph()
}
func (f *fakeViewer) DrawArrow(from, to mgl64.Vec3, w float64, c mgl64.Vec4) iface.Graph {
	return f.graph()
}
func (f *fakeViewer) DrawBox(pos, ext mgl64.Vec3, c mgl64.Vec4) iface.Graph { return f.graph() }
func (f *fakeViewer) DrawPlane(pose geom.Pose, ext mgl64.Vec3, c mgl64.Vec4) iface.Graph {
	return f.graph()
}
func (f *fakeViewer) DrawTriMesh(mesh geom.TriMesh, c mgl64.Vec4) iface.Graph { return f.graph() }

// fakeParser serves a canned document or error.
type fakeParser struct {
	doc *SceneDoc
	err error

	saved *SceneDoc
}

var errBadScene = errors.New("bad scene")

func (p *fakeParser) ParseFile(path string, tags TagReaderLookup) (*SceneDoc, error) {
	return p.doc, p.err
}
func (p *fakeParser) Parse(data []byte, tags TagReaderLookup) (*SceneDoc, error) {
	return p.doc, p.err
}
func (p *fakeParser) ParseBody(existing *body.Body, data []byte, atts []Attr) (*body.Body, error) {
	if p.err != nil {
		return nil, p.err
	}
	if existing == nil {
		existing = boxBody(string(data))
	}
	return existing, nil
}
func (p *fakeParser) ParseRobot(existing *body.Robot, data []byte, atts []Attr) (*body.Robot, error) {
	if p.err != nil {
		return nil, p.err
	}
	if existing == nil {
		existing = body.NewRobot(string(data))
	}
	return existing, nil
}
func (p *fakeParser) ParseInterface(factory InterfaceFactory, existing iface.Interface, data []byte, atts []Attr, tags TagReaderLookup) (iface.Interface, error) {
	if p.err != nil {
		return nil, p.err
	}
	return existing, nil
}
func (p *fakeParser) Serialize(doc *SceneDoc) ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.saved = doc
	return []byte("scene"), nil
}
func (p *fakeParser) SerializeFile(path string, doc *SceneDoc) error {
	if p.err != nil {
		return p.err
	}
	p.saved = doc
	return nil
}
