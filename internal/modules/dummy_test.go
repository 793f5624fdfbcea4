package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/world"
)

func TestDummyRegistered(t *testing.T) {
	e := world.New()
	defer e.Destroy()
	assert.True(t, e.HasInterface(iface.KindModule, DummyType))
}

func TestDummyCountsSteps(t *testing.T) {
	e := world.New()
	defer e.Destroy()

	m := e.CreateModule(DummyType)
	require.NotNil(t, m)
	require.Zero(t, e.LoadModule(m, "demo"))

	for i := 0; i < 5; i++ {
		e.StepSimulation(0.01)
	}
	d := m.(*Dummy)
	assert.EqualValues(t, 5, d.Steps())
	assert.Equal(t, "demo", d.Args())
}

func TestDummyFailExit(t *testing.T) {
	e := world.New()
	defer e.Destroy()

	m := e.CreateModule(DummyType)
	require.NotNil(t, m)
	assert.Equal(t, 1, e.LoadModule(m, "fail"))

	mods, h := e.LoadedModules()
	defer h.Release()
	assert.Empty(t, mods)
}
