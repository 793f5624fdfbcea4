package world

import (
	"errors"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/plugins"
)

// LoadPlugin loads the named plugin into this environment's factory. It
// reports whether a plugin with that name is available.
func (e *Environment) LoadPlugin(name string) bool {
	return e.registry.Load(name)
}

// ReloadPlugins refreshes all loaded plugins. Interface instances created
// earlier keep using the code they were built with.
func (e *Environment) ReloadPlugins() {
	e.registry.Reload()
}

// PluginInfo returns the loaded plugins and the interface types each one
// supports.
func (e *Environment) PluginInfo() []plugins.Info {
	return e.registry.Info()
}

// HasInterface reports whether some loaded plugin can construct the given
// type.
func (e *Environment) HasInterface(kind iface.Kind, typeName string) bool {
	return e.registry.Has(kind, typeName)
}

// CreateInterface constructs a fresh instance of the given kind and type.
// A nil result means the type is unknown or its constructor failed; both
// are ordinary outcomes, logged at debug and warn level respectively.
func (e *Environment) CreateInterface(kind iface.Kind, typeName string) iface.Interface {
	inst, err := e.registry.Create(kind, typeName)
	if err != nil {
		if errors.Is(err, plugins.ErrConstruction) {
			logger.Warn("interface construction failed", "kind", kind.String(), "type", typeName, "err", err)
		} else {
			logger.Debug("interface type not found", "kind", kind.String(), "type", typeName)
		}
		return nil
	}
	return inst
}

// CreateCollisionChecker constructs a collision checker by type name.
func (e *Environment) CreateCollisionChecker(typeName string) iface.CollisionChecker {
	c, _ := e.CreateInterface(iface.KindCollisionChecker, typeName).(iface.CollisionChecker)
	return c
}

// CreatePhysicsEngine constructs a physics engine by type name.
func (e *Environment) CreatePhysicsEngine(typeName string) iface.PhysicsEngine {
	p, _ := e.CreateInterface(iface.KindPhysicsEngine, typeName).(iface.PhysicsEngine)
	return p
}

// CreateController constructs a controller by type name.
func (e *Environment) CreateController(typeName string) iface.Controller {
	c, _ := e.CreateInterface(iface.KindController, typeName).(iface.Controller)
	return c
}

// CreatePlanner constructs a planner by type name.
func (e *Environment) CreatePlanner(typeName string) iface.Planner {
	p, _ := e.CreateInterface(iface.KindPlanner, typeName).(iface.Planner)
	return p
}

// CreateSensor constructs a sensor by type name.
func (e *Environment) CreateSensor(typeName string) iface.Sensor {
	s, _ := e.CreateInterface(iface.KindSensor, typeName).(iface.Sensor)
	return s
}

// CreateSensorSystem constructs a sensor system by type name.
func (e *Environment) CreateSensorSystem(typeName string) iface.SensorSystem {
	s, _ := e.CreateInterface(iface.KindSensorSystem, typeName).(iface.SensorSystem)
	return s
}

// CreateIkSolver constructs an inverse-kinematics solver by type name.
func (e *Environment) CreateIkSolver(typeName string) iface.IkSolver {
	s, _ := e.CreateInterface(iface.KindIkSolver, typeName).(iface.IkSolver)
	return s
}

// CreateModule constructs a module by type name.
func (e *Environment) CreateModule(typeName string) iface.Module {
	m, _ := e.CreateInterface(iface.KindModule, typeName).(iface.Module)
	return m
}

// CreateViewer constructs a viewer by type name.
func (e *Environment) CreateViewer(typeName string) iface.Viewer {
	v, _ := e.CreateInterface(iface.KindViewer, typeName).(iface.Viewer)
	return v
}

// CreateKinBody returns an empty body, not yet added to the environment.
// Bodies are plain data assembled in code or by the scene parser, so no
// plugin is involved.
func (e *Environment) CreateKinBody(name string) *body.Body {
	return body.New(name)
}

// CreateRobot returns an empty robot, not yet added to the environment.
func (e *Environment) CreateRobot(name string) *body.Robot {
	return body.NewRobot(name)
}
