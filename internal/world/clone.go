package world

import (
	"github.com/mkalland/simworld/internal/iface"
)

// CloneOption selects which auxiliary subsystems Clone carries over
// beyond the body/robot graph, the collision checker and the physics
// engine.
type CloneOption uint32

const (
	// CloneSimulation carries the simulated-time counter into the clone.
	CloneSimulation CloneOption = 1 << iota
	// CloneViewer reconstructs the attached viewer's type in the clone.
	CloneViewer
	// CloneModules reloads the loaded modules, by type and argument
	// string, into the clone.
	CloneModules
)

// Clone produces a new, independent environment whose body/robot graph is
// a deep copy of this one. Identifiers are preserved: the body with id N
// here corresponds to the body with id N in the clone. Attachments and
// grabs are re-established by identifier. The collision checker and
// physics engine types are reconstructed against the new registry; other
// interfaces start unattached unless selected through options. The clone
// shares no mutable memory with its source.
func (e *Environment) Clone(opts CloneOption) *Environment {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := New()
	c.nextID = e.nextID

	// bodies and robots, insertion order, ids preserved
	for _, b := range e.bodies {
		if r := e.robotForBodyLocked(b); r != nil {
			cr := r.Clone()
			c.bodies = append(c.bodies, &cr.Body)
			c.robots = append(c.robots, cr)
			c.byID[cr.ID()] = &cr.Body
		} else {
			cb := b.Clone()
			c.bodies = append(c.bodies, cb)
			c.byID[cb.ID()] = cb
		}
	}

	// attachments by identifier
	for _, b := range e.bodies {
		cb := c.byID[b.ID()]
		for _, a := range b.Attached() {
			if ca := c.byID[a.ID()]; ca != nil {
				cb.Attach(ca)
			}
		}
	}

	// grabs by identifier
	for _, r := range e.robots {
		cr := c.robotForBodyLocked(c.byID[r.ID()])
		if cr == nil {
			continue
		}
		for _, g := range r.Grabs() {
			cr.RestoreGrab(c.byID[g.Body.ID()], g.LinkIndex, g.RelPose)
		}
	}

	// reconstruct checker and engine selections against the new registry
	if e.checker != nil {
		if inst, err := c.registry.Create(iface.KindCollisionChecker, e.checker.TypeName()); err == nil {
			c.installCheckerRaw(inst.(iface.CollisionChecker))
		} else {
			logger.Warn("clone could not reconstruct collision checker", "type", e.checker.TypeName(), "err", err)
		}
	}
	if e.engine != nil && e.engine.TypeName() != NullEngineType {
		if inst, err := c.registry.Create(iface.KindPhysicsEngine, e.engine.TypeName()); err == nil {
			eng := inst.(iface.PhysicsEngine)
			c.installEngineRaw(eng)
			eng.SetGravity(e.engine.Gravity())
		} else {
			logger.Warn("clone could not reconstruct physics engine", "type", e.engine.TypeName(), "err", err)
		}
	} else if e.engine != nil {
		c.engine.SetGravity(e.engine.Gravity())
	}

	if opts&CloneSimulation != 0 {
		c.simTime.Store(e.simTime.Load())
	}
	if opts&CloneViewer != 0 && e.viewer != nil {
		if inst, err := c.registry.Create(iface.KindViewer, e.viewer.TypeName()); err == nil {
			v := inst.(iface.Viewer)
			if v.Init(c) {
				c.viewer = v
			}
		}
	}
	if opts&CloneModules != 0 {
		for _, lm := range e.modules {
			inst, err := c.registry.Create(iface.KindModule, lm.mod.TypeName())
			if err != nil {
				logger.Warn("clone could not reconstruct module", "type", lm.mod.TypeName(), "err", err)
				continue
			}
			m := inst.(iface.Module)
			if m.Main(c, lm.args) == 0 {
				c.modules = append(c.modules, &loadedModule{mod: m, args: lm.args})
			}
		}
	}

	c.updatePublishedLocked()
	return c
}

// installCheckerRaw wires a checker into a clone under construction,
// before the clone is visible to any other goroutine.
func (c *Environment) installCheckerRaw(ck iface.CollisionChecker) {
	if !ck.InitEnvironment(c) {
		return
	}
	for _, b := range c.bodies {
		ck.InitBody(b)
	}
	c.checker = ck
}

func (c *Environment) installEngineRaw(p iface.PhysicsEngine) {
	if !p.InitEnvironment(c) {
		return
	}
	for _, b := range c.bodies {
		p.InitBody(b)
	}
	if c.engine != nil {
		c.engine.DestroyEnvironment()
	}
	c.engine = p
}
