package world

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
	"github.com/mkalland/simworld/internal/iface"
)

// SetCollisionChecker installs the active collision checker, replacing
// any previous one atomically with respect to in-flight queries. Passing
// nil uninstalls the checker; queries then report no collision. It
// reports whether the checker accepted the environment.
func (e *Environment) SetCollisionChecker(c iface.CollisionChecker) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c != nil {
		if !c.InitEnvironment(e) {
			return false
		}
		for _, b := range e.bodies {
			c.InitBody(b)
		}
	}
	if e.checker != nil {
		e.checker.DestroyEnvironment()
	}
	e.checker = c
	return true
}

// CollisionChecker returns the active checker, or nil.
func (e *Environment) CollisionChecker() iface.CollisionChecker {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.checker
}

type callbackEntry struct {
	id uuid.UUID
	fn iface.CollisionCallback
}

// CallbackHandle keeps a collision callback registered. Releasing the
// handle unregisters the callback; Release is idempotent.
type CallbackHandle struct {
	env  *Environment
	id   uuid.UUID
	once sync.Once
}

// Release unregisters the callback.
func (h *CallbackHandle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.env.mu.Lock()
		defer h.env.mu.Unlock()
		for i, c := range h.env.callbacks {
			if c.id == h.id {
				h.env.callbacks = append(h.env.callbacks[:i], h.env.callbacks[i+1:]...)
				return
			}
		}
	})
}

// RegisterCollisionCallback registers a handler invoked for every
// detected collision, in registration order, until the returned handle is
// released.
func (e *Environment) RegisterCollisionCallback(fn iface.CollisionCallback) *CallbackHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry := &callbackEntry{id: uuid.New(), fn: fn}
	e.callbacks = append(e.callbacks, entry)
	return &CallbackHandle{env: e, id: entry.id}
}

// HasRegisteredCollisionCallbacks reports whether any collision callback
// is currently registered.
func (e *Environment) HasRegisteredCollisionCallbacks() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.callbacks) > 0
}

// RegisteredCollisionCallbacks returns the registered handlers in
// invocation order.
func (e *Environment) RegisteredCollisionCallbacks() []iface.CollisionCallback {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]iface.CollisionCallback, len(e.callbacks))
	for i, c := range e.callbacks {
		out[i] = c.fn
	}
	return out
}

// invokeCallbacksLocked runs the registered callbacks for a detected
// collision. An abort action short-circuits the remaining callbacks; the
// overall query result is unaffected since the collision already stands.
func (e *Environment) invokeCallbacksLocked(report *iface.CollisionReport) {
	for _, c := range e.callbacks {
		if c.fn(report, e.inPhysicsStep) == iface.ActionAbort {
			return
		}
	}
}

// check runs one collision query under the lock, dispatching callbacks if
// the geometric test detected a collision.
func (e *Environment) check(report *iface.CollisionReport, fn func(c iface.CollisionChecker, report *iface.CollisionReport) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.checker
	if c == nil {
		logger.Debug("collision query with no checker installed")
		return false
	}
	if report == nil && len(e.callbacks) > 0 {
		report = &iface.CollisionReport{}
	}
	hit := fn(c, report)
	if hit {
		e.invokeCallbacksLocked(report)
	}
	return hit
}

// CheckCollision tests a body against everything else in the world.
func (e *Environment) CheckCollision(b *body.Body, report *iface.CollisionReport) bool {
	return e.check(report, func(c iface.CollisionChecker, r *iface.CollisionReport) bool {
		return c.CheckBody(b, r)
	})
}

// CheckCollisionBodies tests two specific bodies against each other.
func (e *Environment) CheckCollisionBodies(a, b *body.Body, report *iface.CollisionReport) bool {
	return e.check(report, func(c iface.CollisionChecker, r *iface.CollisionReport) bool {
		return c.CheckBodyBody(a, b, r)
	})
}

// CheckCollisionLink tests a link against everything outside its body.
func (e *Environment) CheckCollisionLink(l *body.Link, report *iface.CollisionReport) bool {
	return e.check(report, func(c iface.CollisionChecker, r *iface.CollisionReport) bool {
		return c.CheckLink(l, r)
	})
}

// CheckCollisionLinks tests two specific links.
func (e *Environment) CheckCollisionLinks(a, b *body.Link, report *iface.CollisionReport) bool {
	return e.check(report, func(c iface.CollisionChecker, r *iface.CollisionReport) bool {
		return c.CheckLinkLink(a, b, r)
	})
}

// CheckCollisionLinkBody tests a link against a specific body.
func (e *Environment) CheckCollisionLinkBody(l *body.Link, b *body.Body, report *iface.CollisionReport) bool {
	return e.check(report, func(c iface.CollisionChecker, r *iface.CollisionReport) bool {
		return c.CheckLinkBody(l, b, r)
	})
}

// CheckCollisionExcluded tests a body against the world, skipping the
// given bodies and links.
func (e *Environment) CheckCollisionExcluded(b *body.Body, excludedBodies []*body.Body, excludedLinks []*body.Link, report *iface.CollisionReport) bool {
	return e.check(report, func(c iface.CollisionChecker, r *iface.CollisionReport) bool {
		return c.CheckBodyExcluded(b, excludedBodies, excludedLinks, r)
	})
}

// CheckCollisionLinkExcluded tests a link against the world, skipping the
// given bodies and links.
func (e *Environment) CheckCollisionLinkExcluded(l *body.Link, excludedBodies []*body.Body, excludedLinks []*body.Link, report *iface.CollisionReport) bool {
	return e.check(report, func(c iface.CollisionChecker, r *iface.CollisionReport) bool {
		return c.CheckLinkExcluded(l, excludedBodies, excludedLinks, r)
	})
}

// CheckCollisionRay casts a finite ray against the whole world.
func (e *Environment) CheckCollisionRay(ray geom.Ray, report *iface.CollisionReport) bool {
	return e.check(report, func(c iface.CollisionChecker, r *iface.CollisionReport) bool {
		return c.CheckRay(ray, r)
	})
}

// CheckCollisionRayBody casts a finite ray against one body.
func (e *Environment) CheckCollisionRayBody(ray geom.Ray, b *body.Body, report *iface.CollisionReport) bool {
	return e.check(report, func(c iface.CollisionChecker, r *iface.CollisionReport) bool {
		return c.CheckRayBody(ray, b, r)
	})
}

// CheckCollisionRayLink casts a finite ray against one link.
func (e *Environment) CheckCollisionRayLink(ray geom.Ray, l *body.Link, report *iface.CollisionReport) bool {
	return e.check(report, func(c iface.CollisionChecker, r *iface.CollisionReport) bool {
		return c.CheckRayLink(ray, l, r)
	})
}

// CheckSelfCollision tests a body's links against each other.
func (e *Environment) CheckSelfCollision(b *body.Body, report *iface.CollisionReport) bool {
	return e.check(report, func(c iface.CollisionChecker, r *iface.CollisionReport) bool {
		return c.CheckSelfCollision(b, r)
	})
}
