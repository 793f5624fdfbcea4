// Package modules holds the built-in module types. Modules are loaded
// units of scripted behavior hooked into the simulation step.
package modules

import (
	"sync/atomic"

	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/plugins"
)

// DummyType is a module that does nothing but count its steps. Useful
// for exercising module loading from configs and tests.
const DummyType = "dummy"

func init() {
	plugins.Provide("modules", func() *plugins.Descriptor {
		return &plugins.Descriptor{
			Name: "modules",
			Constructors: map[iface.Kind]map[string]plugins.Constructor{
				iface.KindModule: {
					DummyType: func() iface.Interface { return NewDummy() },
				},
			},
		}
	})
}

type Dummy struct {
	iface.Base
	steps atomic.Int64
	args  string
}

func NewDummy() *Dummy {
	d := &Dummy{Base: iface.NewBase(iface.KindModule, DummyType)}
	d.SetDescription("counts simulation steps")
	return d
}

func (d *Dummy) Main(w iface.World, args string) int {
	if args == "fail" {
		return 1
	}
	d.args = args
	return 0
}

func (d *Dummy) SimulationStep(dt float64) { d.steps.Add(1) }

func (d *Dummy) Destroy() {}

// Steps returns how many simulation steps ran while loaded.
func (d *Dummy) Steps() int64 { return d.steps.Load() }

// Args returns the argument string passed at load time.
func (d *Dummy) Args() string { return d.args }
