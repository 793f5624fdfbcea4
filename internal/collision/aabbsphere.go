// Package collision provides the built-in "aabbsphere" collision checker:
// axis-aligned boxes as the broad phase, bounding spheres as the narrow
// phase, both derived from link geometry. It trades contact accuracy for
// predictability, which is what the default checker is for.
package collision

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/plugins"
)

// TypeName is the registered collision checker type.
const TypeName = "aabbsphere"

func init() {
	plugins.Provide(TypeName, func() *plugins.Descriptor {
		return &plugins.Descriptor{
			Name: TypeName,
			Constructors: map[iface.Kind]map[string]plugins.Constructor{
				iface.KindCollisionChecker: {
					TypeName: func() iface.Interface { return New() },
				},
			},
		}
	})
}

// Checker implements iface.CollisionChecker. All methods are called under
// the environment lock.
type Checker struct {
	iface.Base
	world iface.World
	known map[*body.Body]struct{}
}

// New returns an unbound checker.
func New() *Checker {
	c := &Checker{
		Base:  iface.NewBase(iface.KindCollisionChecker, TypeName),
		known: map[*body.Body]struct{}{},
	}
	c.SetDescription("AABB broad phase with bounding-sphere narrow phase")
	return c
}

func (c *Checker) InitEnvironment(w iface.World) bool {
	c.world = w
	return true
}

func (c *Checker) DestroyEnvironment() {
	c.world = nil
	c.known = map[*body.Body]struct{}{}
}

func (c *Checker) InitBody(b *body.Body) bool {
	c.known[b] = struct{}{}
	return true
}

func (c *Checker) RemoveBody(b *body.Body) {
	delete(c.known, b)
}

// sphere is a link's bounding sphere, derived from its world AABB.
func sphere(l *body.Link) (mgl64.Vec3, float64) {
	box := l.AABB()
	return box.Pos, box.Extents.Len()
}

func testable(l *body.Link) bool {
	return l != nil && l.Enabled() && l.Parent() != nil && l.Parent().Enabled()
}

// linkPair runs the two-phase test and fills the report on a hit.
func linkPair(a, b *body.Link, report *iface.CollisionReport) bool {
	if !testable(a) || !testable(b) {
		return false
	}
	if !a.AABB().Overlaps(b.AABB()) {
		return false
	}
	ca, ra := sphere(a)
	cb, rb := sphere(b)
	delta := cb.Sub(ca)
	dist := delta.Len()
	if dist > ra+rb {
		return false
	}
	if report != nil {
		report.LinkA, report.LinkB = a, b
		report.BodyA, report.BodyB = a.Parent(), b.Parent()
		normal := mgl64.Vec3{0, 0, 1}
		if dist > 1e-12 {
			normal = delta.Mul(1 / dist)
		}
		report.Contacts = append(report.Contacts, iface.Contact{
			Pos:    ca.Add(delta.Mul(0.5)),
			Normal: normal,
			Depth:  ra + rb - dist,
		})
		report.MinDistance = dist - ra - rb
	}
	return true
}

type exclusion struct {
	bodies map[*body.Body]struct{}
	links  map[*body.Link]struct{}
}

func exclude(bodies []*body.Body, links []*body.Link) exclusion {
	ex := exclusion{
		bodies: map[*body.Body]struct{}{},
		links:  map[*body.Link]struct{}{},
	}
	for _, b := range bodies {
		ex.bodies[b] = struct{}{}
	}
	for _, l := range links {
		ex.links[l] = struct{}{}
	}
	return ex
}

func (ex exclusion) body(b *body.Body) bool {
	_, out := ex.bodies[b]
	return out
}

func (ex exclusion) link(l *body.Link) bool {
	_, out := ex.links[l]
	return out
}

// bodyPair tests every link pair of two bodies, honoring exclusions.
func bodyPair(a, b *body.Body, ex exclusion, report *iface.CollisionReport) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	if a.IsAttached(b) {
		return false
	}
	for _, la := range a.Links() {
		if ex.link(la) {
			continue
		}
		for _, lb := range b.Links() {
			if ex.link(lb) {
				continue
			}
			if linkPair(la, lb, report) {
				return true
			}
		}
	}
	return false
}

// others returns the environment bodies excluding b, bodies attached to b
// and explicitly excluded ones.
func (c *Checker) others(b *body.Body, ex exclusion) []*body.Body {
	if c.world == nil {
		return nil
	}
	var out []*body.Body
	for _, o := range c.world.Bodies() {
		if o == b || ex.body(o) {
			continue
		}
		if b != nil && b.IsAttached(o) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (c *Checker) CheckBody(b *body.Body, report *iface.CollisionReport) bool {
	return c.CheckBodyExcluded(b, nil, nil, report)
}

func (c *Checker) CheckBodyBody(a, b *body.Body, report *iface.CollisionReport) bool {
	return bodyPair(a, b, exclude(nil, nil), report)
}

func (c *Checker) CheckLink(l *body.Link, report *iface.CollisionReport) bool {
	return c.CheckLinkExcluded(l, nil, nil, report)
}

func (c *Checker) CheckLinkLink(a, b *body.Link, report *iface.CollisionReport) bool {
	if a == nil || b == nil || a.Parent() == b.Parent() {
		return false
	}
	return linkPair(a, b, report)
}

func (c *Checker) CheckLinkBody(l *body.Link, b *body.Body, report *iface.CollisionReport) bool {
	if l == nil || b == nil || l.Parent() == b {
		return false
	}
	for _, lb := range b.Links() {
		if linkPair(l, lb, report) {
			return true
		}
	}
	return false
}

func (c *Checker) CheckBodyExcluded(b *body.Body, excludedBodies []*body.Body, excludedLinks []*body.Link, report *iface.CollisionReport) bool {
	ex := exclude(excludedBodies, excludedLinks)
	for _, o := range c.others(b, ex) {
		if bodyPair(b, o, ex, report) {
			return true
		}
	}
	return false
}

func (c *Checker) CheckLinkExcluded(l *body.Link, excludedBodies []*body.Body, excludedLinks []*body.Link, report *iface.CollisionReport) bool {
	if l == nil {
		return false
	}
	ex := exclude(excludedBodies, excludedLinks)
	for _, o := range c.others(l.Parent(), ex) {
		for _, lb := range o.Links() {
			if ex.link(lb) {
				continue
			}
			if linkPair(l, lb, report) {
				return true
			}
		}
	}
	return false
}

func (c *Checker) CheckRayLink(ray geom.Ray, l *body.Link, report *iface.CollisionReport) bool {
	if !testable(l) {
		return false
	}
	hit, ok := ray.IntersectAABB(l.AABB())
	if !ok {
		return false
	}
	if report != nil {
		report.LinkA = l
		report.BodyA = l.Parent()
		report.Contacts = append(report.Contacts, iface.Contact{
			Pos:    hit,
			Normal: ray.Dir.Mul(-1).Normalize(),
		})
		report.MinDistance = hit.Sub(ray.Origin).Len()
	}
	return true
}

func (c *Checker) CheckRayBody(ray geom.Ray, b *body.Body, report *iface.CollisionReport) bool {
	if b == nil || !b.Enabled() {
		return false
	}
	for _, l := range b.Links() {
		if c.CheckRayLink(ray, l, report) {
			return true
		}
	}
	return false
}

func (c *Checker) CheckRay(ray geom.Ray, report *iface.CollisionReport) bool {
	if c.world == nil {
		return false
	}
	for _, b := range c.world.Bodies() {
		if c.CheckRayBody(ray, b, report) {
			return true
		}
	}
	return false
}

// CheckSelfCollision tests a body's links pairwise, skipping pairs joined
// directly by a joint: adjacent links touch at their joint by
// construction.
func (c *Checker) CheckSelfCollision(b *body.Body, report *iface.CollisionReport) bool {
	if b == nil || !b.Enabled() {
		return false
	}
	adjacent := map[[2]int]struct{}{}
	for _, j := range b.Joints() {
		adjacent[[2]int{j.ParentLink(), j.ChildLink()}] = struct{}{}
		adjacent[[2]int{j.ChildLink(), j.ParentLink()}] = struct{}{}
	}
	links := b.Links()
	for i := 0; i < len(links); i++ {
		for k := i + 1; k < len(links); k++ {
			if _, skip := adjacent[[2]int{i, k}]; skip {
				continue
			}
			if linkPair(links[i], links[k], report) {
				return true
			}
		}
	}
	return false
}
