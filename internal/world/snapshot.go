package world

import (
	"github.com/mkalland/simworld/internal/body"
)

// UpdatePublishedBodies refreshes the read-safe snapshot of per-body
// state. The clock calls this after every step; clients mutating bodies
// outside the loop call it to make their changes visible to snapshot
// readers.
func (e *Environment) UpdatePublishedBodies() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updatePublishedLocked()
}

func (e *Environment) updatePublishedLocked() {
	states := make([]body.PublishedState, len(e.bodies))
	for i, b := range e.bodies {
		states[i] = b.Published()
	}
	e.published.Store(states)
	if e.viewer != nil {
		e.viewer.UpdateBodies(states)
	}
}

// PublishedBodies returns the latest snapshot of per-body state. It never
// blocks on the environment lock and always returns a self-consistent set
// produced by a single completed refresh. The returned slice is shared
// and must be treated as read-only.
func (e *Environment) PublishedBodies() []body.PublishedState {
	if s, ok := e.published.Load().([]body.PublishedState); ok {
		return s
	}
	return nil
}
