// Package world implements the central coordinator of a simulation: the
// Environment. It owns every simulated body and robot, mediates collision
// queries, drives the physics stepping loop, dispatches creation of
// pluggable subsystem instances, and can deep-clone itself into an
// independent copy.
//
// # Locking
//
// One re-entrant lock serializes all mutation. Public methods acquire it
// internally, so nested calls from plugin hooks (a module stepping into a
// collision query, for instance) never deadlock. Clients that need several
// operations to be atomic take the lock explicitly with Lock/Unlock.
package world

import (
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/plugins"
	"github.com/mkalland/simworld/internal/relock"
)

// Environment is the coordinator of one simulation world. Construct with
// New; a destroyed Environment must not be used again.
type Environment struct {
	mu relock.Mutex

	bodies []*body.Body
	robots []*body.Robot
	byID   map[int]*body.Body
	nextID int

	owned []iface.Interface

	registry *plugins.Registry

	checker iface.CollisionChecker
	engine  iface.PhysicsEngine
	viewer  iface.Viewer

	callbacks  []*callbackEntry
	tagReaders map[tagKey]tagEntry

	modules []*loadedModule

	parser SceneParser

	clk           clock.Clock
	simTime       atomic.Uint64 // microseconds
	running       atomic.Bool
	inPhysicsStep bool
	stopCh        chan struct{}
	loopDone      chan struct{}

	published atomic.Value // []body.PublishedState
}

// New creates an empty environment with every available plugin loaded and
// a no-op physics engine installed.
func New() *Environment {
	e := &Environment{
		byID:       map[int]*body.Body{},
		registry:   plugins.NewLoadedRegistry(),
		tagReaders: map[tagKey]tagEntry{},
		clk:        clock.New(),
	}
	e.engine = newNullEngine()
	e.engine.InitEnvironment(e)
	return e
}

// SetClock replaces the wall clock used to pace real-time simulation.
// Intended for tests; call before StartSimulation.
func (e *Environment) SetClock(c clock.Clock) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clk = c
}

// Lock acquires the environment lock. The lock is re-entrant: a goroutine
// already holding it may lock again without blocking.
func (e *Environment) Lock() { e.mu.Lock() }

// Unlock releases one level of the environment lock.
func (e *Environment) Unlock() { e.mu.Unlock() }

// TryLock attempts to acquire the environment lock without blocking and
// reports whether it succeeded.
func (e *Environment) TryLock() bool { return e.mu.TryLock() }

// LockTimeout attempts to acquire the environment lock, giving up after
// the duration. A false result means "would block", not failure.
func (e *Environment) LockTimeout(d time.Duration) bool { return e.mu.LockTimeout(d) }

// OwnInterface transfers lifetime responsibility for an interface to the
// environment: it is released when the environment is destroyed.
// Owning an already-owned interface is a no-op.
func (e *Environment) OwnInterface(i iface.Interface) {
	if i == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, o := range e.owned {
		if o == i {
			return
		}
	}
	e.owned = append(e.owned, i)
}

// DisownInterface drops the environment's reference to an interface,
// returning lifetime responsibility to the caller. Disowning an interface
// that is not owned is a no-op.
func (e *Environment) DisownInterface(i iface.Interface) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for n, o := range e.owned {
		if o == i {
			e.owned = append(e.owned[:n], e.owned[n+1:]...)
			return
		}
	}
}

// OwnedInterfaces returns the interfaces currently owned by the
// environment.
func (e *Environment) OwnedInterfaces() []iface.Interface {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]iface.Interface, len(e.owned))
	copy(out, e.owned)
	return out
}

// AttachViewer installs the viewer receiving published states and drawing
// requests, replacing any previous one. It reports whether the viewer
// accepted the environment.
func (e *Environment) AttachViewer(v iface.Viewer) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v != nil && !v.Init(e) {
		return false
	}
	if e.viewer != nil {
		e.viewer.Quit()
	}
	e.viewer = v
	return true
}

// Viewer returns the attached viewer, or nil.
func (e *Environment) Viewer() iface.Viewer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewer
}

// Reset restores every body to the configuration it was added with and
// zeroes simulated time. Loaded modules and installed interfaces are
// preserved. Reset is a no-op while the simulation loop is running.
func (e *Environment) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	// checked under the lock so a racing StartSimulation cannot slip in
	// between the check and the restore
	if e.running.Load() {
		logger.Warn("Reset ignored while simulation is running")
		return
	}
	e.simTime.Store(0)
	for _, b := range e.bodies {
		b.RestoreInitial()
	}
	e.updatePublishedLocked()
}

// Destroy stops the simulation and releases every owned body and
// interface. The environment must not be used afterwards.
func (e *Environment) Destroy() {
	e.StopSimulation()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.viewer != nil {
		e.viewer.Quit()
		e.viewer = nil
	}
	for _, m := range e.modules {
		m.mod.Destroy()
	}
	e.modules = nil
	if e.checker != nil {
		e.checker.DestroyEnvironment()
		e.checker = nil
	}
	if e.engine != nil {
		e.engine.DestroyEnvironment()
		e.engine = nil
	}
	e.bodies = nil
	e.robots = nil
	e.byID = map[int]*body.Body{}
	e.owned = nil
	e.callbacks = nil
	e.tagReaders = map[tagKey]tagEntry{}
	e.published.Store([]body.PublishedState{})
}
