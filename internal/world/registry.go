package world

import (
	"fmt"

	"github.com/mkalland/simworld/internal/body"
)

// Add registers a body with the environment, transferring ownership. If a
// live body with the same name exists the call fails unless anonymous is
// set, in which case the body is renamed with a unique suffix first.
// The body is assigned an identifier unique for the environment's
// lifetime.
func (e *Environment) Add(b *body.Body, anonymous bool) bool {
	if b == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addLocked(b, anonymous)
}

// AddRobot registers a robot, with the same naming rules as Add.
func (e *Environment) AddRobot(r *body.Robot, anonymous bool) bool {
	if r == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.addLocked(&r.Body, anonymous) {
		return false
	}
	e.robots = append(e.robots, r)
	return true
}

func (e *Environment) addLocked(b *body.Body, anonymous bool) bool {
	if e.bodyLocked(b.Name()) != nil {
		if !anonymous {
			logger.Debug("add rejected, name taken", "name", b.Name())
			return false
		}
		base := b.Name()
		for n := 0; ; n++ {
			candidate := fmt.Sprintf("%s%d", base, n)
			if e.bodyLocked(candidate) == nil {
				b.SetName(candidate)
				break
			}
		}
	}
	e.nextID++
	b.SetID(e.nextID)
	e.byID[b.ID()] = b
	e.bodies = append(e.bodies, b)
	b.CaptureInitial()
	if e.checker != nil {
		e.checker.InitBody(b)
	}
	if e.engine != nil {
		e.engine.InitBody(b)
	}
	return true
}

// Remove unregisters a body (or a robot's body), returning ownership to
// the caller. It reports whether the body was registered. Identifiers of
// removed bodies are never reused.
func (e *Environment) Remove(b *body.Body) bool {
	if b == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := -1
	for i, x := range e.bodies {
		if x == b {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	e.bodies = append(e.bodies[:idx], e.bodies[idx+1:]...)
	delete(e.byID, b.ID())
	for i, r := range e.robots {
		if &r.Body == b {
			r.ReleaseAll()
			e.robots = append(e.robots[:i], e.robots[i+1:]...)
			break
		}
	}
	// a removed body belongs to the caller again; no robot may keep
	// driving it through a stale grab
	for _, r := range e.robots {
		r.Release(b)
	}
	for _, a := range b.Attached() {
		b.Detach(a)
	}
	if e.checker != nil {
		e.checker.RemoveBody(b)
	}
	if e.engine != nil {
		e.engine.RemoveBody(b)
	}
	return true
}

// Body returns the first live body (including robots) with the given
// name, or nil.
func (e *Environment) Body(name string) *body.Body {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bodyLocked(name)
}

func (e *Environment) bodyLocked(name string) *body.Body {
	for _, b := range e.bodies {
		if b.Name() == name {
			return b
		}
	}
	return nil
}

// Robot returns the first robot with the given name, or nil.
func (e *Environment) Robot(name string) *body.Robot {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range e.robots {
		if r.Name() == name {
			return r
		}
	}
	return nil
}

// BodyFromID returns the live body with the given identifier, or nil.
func (e *Environment) BodyFromID(id int) *body.Body {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.byID[id]
}

// Bodies returns all live bodies (including robots) in insertion order.
func (e *Environment) Bodies() []*body.Body {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*body.Body, len(e.bodies))
	copy(out, e.bodies)
	return out
}

// Robots returns all live robots in insertion order.
func (e *Environment) Robots() []*body.Robot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*body.Robot, len(e.robots))
	copy(out, e.robots)
	return out
}

// robotForBodyLocked returns the robot owning b, or nil if b is a plain
// body.
func (e *Environment) robotForBodyLocked(b *body.Body) *body.Robot {
	for _, r := range e.robots {
		if &r.Body == b {
			return r
		}
	}
	return nil
}
