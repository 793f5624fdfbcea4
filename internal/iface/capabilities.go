package iface

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
)

// PhysicsEngine advances world dynamics by discrete time steps. All
// methods run under the environment lock.
type PhysicsEngine interface {
	Interface

	InitEnvironment(w World) bool
	DestroyEnvironment()
	InitBody(b *body.Body) bool
	RemoveBody(b *body.Body)

	// SimulateStep advances every dynamic body by dt seconds.
	SimulateStep(dt float64)

	SetGravity(g mgl64.Vec3) bool
	Gravity() mgl64.Vec3
}

// Controller is the interface-kind wrapper around the joint controller
// contract declared next to Robot.
type Controller interface {
	Interface
	body.Controller
}

// Planner computes joint-space paths for a robot.
type Planner interface {
	Interface

	// InitPlan prepares a query from the robot's current configuration to
	// the goal joint values. Reports whether the query is well-formed.
	InitPlan(r *body.Robot, goal []float64) bool
	// PlanPath runs the query, returning a sequence of joint
	// configurations from start to goal. ok is false if no plan exists.
	PlanPath() (path [][]float64, ok bool)
}

// IkSolver computes joint values reaching a workspace pose.
type IkSolver interface {
	Interface

	Init(r *body.Robot) bool
	// Solve returns joint values placing the robot's tool frame at goal,
	// seeded from the current values. ok is false if unreachable.
	Solve(goal geom.Pose, current []float64) (values []float64, ok bool)
}

// Sensor produces measurements from the simulated world.
type Sensor interface {
	Interface

	Init(w World) bool
	// SimulationStep integrates the sensor by dt seconds.
	SimulationStep(dt float64)
	// Data returns the latest measurement, keyed by channel name.
	Data() map[string]float64
}

// SensorSystem manages a set of bodies tracked by an external sensing
// process (e.g. a motion capture setup).
type SensorSystem interface {
	Interface

	Init(w World) bool
	AddBody(b *body.Body) bool
	RemoveBody(b *body.Body) bool
}

// Module is a loaded unit of scripted behavior hooked into the simulation
// step (a "problem instance" in older terminology).
type Module interface {
	Interface

	// Main runs the module entry point with its argument string. The
	// return value is the module's exit code; zero means success.
	Main(w World, args string) int
	// SimulationStep is invoked once per simulation step while loaded.
	SimulationStep(dt float64)
	// Destroy releases module resources when unloaded.
	Destroy()
}

// Graph is a handle to a primitive drawn on a viewer; Remove erases it.
// Implementations must make Remove idempotent.
type Graph interface {
	Remove()
}

// Viewer renders the world for external observers. Draw methods and
// UpdateBodies may be called with the environment lock held and must not
// block.
type Viewer interface {
	Interface

	Init(w World) bool
	// Quit shuts the viewer down and releases its resources.
	Quit()
	// UpdateBodies delivers a fresh published-state snapshot.
	UpdateBodies(states []body.PublishedState)

	DrawPoints(points []mgl64.Vec3, size float64, color mgl64.Vec4) Graph
	DrawLineStrip(points []mgl64.Vec3, width float64, color mgl64.Vec4) Graph
	DrawLineList(points []mgl64.Vec3, width float64, color mgl64.Vec4) Graph
	DrawArrow(from, to mgl64.Vec3, width float64, color mgl64.Vec4) Graph
	DrawBox(pos, extents mgl64.Vec3, color mgl64.Vec4) Graph
	DrawPlane(pose geom.Pose, extents mgl64.Vec3, color mgl64.Vec4) Graph
	DrawTriMesh(mesh geom.TriMesh, color mgl64.Vec4) Graph
}
