// Package iface defines the pluggable subsystem contracts of the
// simulation world: the common Interface base, the kind enumeration, and
// one capability interface per kind (collision checker, physics engine,
// controller, planner, sensor, module, viewer, ...).
//
// The environment depends only on these contracts; concrete
// implementations are supplied by plugins through the factory registry.
package iface

import (
	"github.com/mkalland/simworld/internal/body"
)

// Interface is the base contract shared by every pluggable subsystem
// instance.
type Interface interface {
	// TypeName is the registered type within the kind, e.g. "aabbsphere".
	TypeName() string
	// Kind returns the capability family of the instance.
	Kind() Kind
	// PluginName names the plugin that constructed the instance.
	PluginName() string
	Description() string
	UserData() any
	SetUserData(any)
}

// Base provides the common Interface bookkeeping; concrete types embed it.
type Base struct {
	kind        Kind
	typeName    string
	pluginName  string
	description string
	userData    any
}

// NewBase initializes the embedded bookkeeping for a concrete interface.
func NewBase(kind Kind, typeName string) Base {
	return Base{kind: kind, typeName: typeName}
}

func (b *Base) TypeName() string     { return b.typeName }
func (b *Base) Kind() Kind           { return b.kind }
func (b *Base) PluginName() string   { return b.pluginName }
func (b *Base) Description() string  { return b.description }
func (b *Base) UserData() any        { return b.userData }
func (b *Base) SetUserData(d any)    { b.userData = d }

// SetDescription sets the human-readable description.
func (b *Base) SetDescription(d string) { b.description = d }

// SetPluginName records the constructing plugin. Called by the factory.
func (b *Base) SetPluginName(n string) { b.pluginName = n }

// World is the narrow view of the environment that interface
// implementations receive. It is satisfied by *world.Environment; the
// indirection keeps plugin packages from depending on the coordinator.
//
// All methods require the caller to be inside a locked section; interface
// hooks (physics steps, module steps, collision queries) always are.
type World interface {
	Bodies() []*body.Body
	Robots() []*body.Robot
	Body(name string) *body.Body
	BodyFromID(id int) *body.Body
	SimulationTime() uint64
}
