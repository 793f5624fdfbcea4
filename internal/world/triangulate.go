package world

import (
	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
)

// SceneSelector chooses which registered bodies TriangulateScene covers.
type SceneSelector int

const (
	// SelectObstacles covers plain bodies only, robots excluded.
	SelectObstacles SceneSelector = iota
	// SelectRobots covers robots only.
	SelectRobots
	// SelectEverything covers all registered bodies.
	SelectEverything
	// SelectBody covers only the body with the given name.
	SelectBody
	// SelectAllExceptBody covers everything but the body with the given
	// name.
	SelectAllExceptBody
)

// Triangulate appends b's world-space triangle geometry to mesh. The body
// need not be registered with the environment.
func (e *Environment) Triangulate(mesh *geom.TriMesh, b *body.Body) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b.Triangulate(mesh)
}

// TriangulateScene appends the world-space triangle geometry of every
// selected body to mesh. The name argument is consulted only by the
// SelectBody and SelectAllExceptBody selectors.
func (e *Environment) TriangulateScene(mesh *geom.TriMesh, sel SceneSelector, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, b := range e.bodies {
		isRobot := e.robotForBodyLocked(b) != nil
		include := false
		switch sel {
		case SelectObstacles:
			include = !isRobot
		case SelectRobots:
			include = isRobot
		case SelectEverything:
			include = true
		case SelectBody:
			include = b.Name() == name
		case SelectAllExceptBody:
			include = b.Name() != name
		}
		if include {
			b.Triangulate(mesh)
		}
	}
}
