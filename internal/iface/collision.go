package iface

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
)

// Contact is one contact point of a detected collision.
type Contact struct {
	Pos    mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
}

// CollisionReport is the transient, query-scoped result of a collision
// check. Fields are valid only until the next check that reuses the
// report.
type CollisionReport struct {
	LinkA, LinkB *body.Link
	BodyA, BodyB *body.Body
	Contacts     []Contact
	MinDistance  float64
}

// Reset clears the report for reuse.
func (r *CollisionReport) Reset() {
	*r = CollisionReport{}
}

// CollisionAction is the verdict a collision callback returns for a
// detected collision.
type CollisionAction int

const (
	// ActionReport keeps the collision and continues with the remaining
	// callbacks.
	ActionReport CollisionAction = iota
	// ActionIgnore continues with the remaining callbacks without further
	// effect; the geometric result still stands.
	ActionIgnore
	// ActionAbort skips all remaining callbacks and makes the overall
	// check return "collision detected" immediately. It applies only to
	// the already-detected pair; pairs not yet tested stay untested.
	ActionAbort
)

// CollisionCallback is invoked for every detected collision while its
// registration handle is alive. fromPhysics is true when the query
// originated inside a simulation step.
type CollisionCallback func(report *CollisionReport, fromPhysics bool) CollisionAction

// CollisionChecker performs the geometric overlap tests the environment
// dispatches to. Implementations are swapped atomically by the
// environment; all methods run under the environment lock.
type CollisionChecker interface {
	Interface

	// InitEnvironment binds the checker to a world. It reports whether
	// the checker can serve it.
	InitEnvironment(w World) bool
	// DestroyEnvironment releases per-world resources.
	DestroyEnvironment()
	// InitBody makes a body known to the checker (acceleration
	// structures etc.). Reports success.
	InitBody(b *body.Body) bool
	// RemoveBody forgets a body.
	RemoveBody(b *body.Body)

	// CheckBody tests one body against everything else in the world.
	CheckBody(b *body.Body, report *CollisionReport) bool
	// CheckBodyBody tests two specific bodies against each other.
	CheckBodyBody(a, b *body.Body, report *CollisionReport) bool
	// CheckLink tests one link against everything outside its body.
	CheckLink(l *body.Link, report *CollisionReport) bool
	// CheckLinkLink tests two specific links.
	CheckLinkLink(a, b *body.Link, report *CollisionReport) bool
	// CheckLinkBody tests a link against a specific body.
	CheckLinkBody(l *body.Link, b *body.Body, report *CollisionReport) bool
	// CheckBodyExcluded tests a body against the world, skipping the
	// excluded bodies and links.
	CheckBodyExcluded(b *body.Body, excludedBodies []*body.Body, excludedLinks []*body.Link, report *CollisionReport) bool
	// CheckLinkExcluded tests a link against the world, skipping the
	// excluded bodies and links.
	CheckLinkExcluded(l *body.Link, excludedBodies []*body.Body, excludedLinks []*body.Link, report *CollisionReport) bool

	// CheckRayLink casts a finite ray against one link.
	CheckRayLink(ray geom.Ray, l *body.Link, report *CollisionReport) bool
	// CheckRayBody casts a finite ray against one body.
	CheckRayBody(ray geom.Ray, b *body.Body, report *CollisionReport) bool
	// CheckRay casts a finite ray against the whole world.
	CheckRay(ray geom.Ray, report *CollisionReport) bool

	// CheckSelfCollision tests a body's links against each other,
	// skipping adjacent links connected by a joint.
	CheckSelfCollision(b *body.Body, report *CollisionReport) bool
}
