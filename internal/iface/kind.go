package iface

import "fmt"

// Kind identifies which capability family an interface instance belongs to.
type Kind int

const (
	KindPlanner Kind = iota
	KindRobot
	KindSensorSystem
	KindController
	KindModule
	KindIkSolver
	KindKinBody
	KindPhysicsEngine
	KindSensor
	KindCollisionChecker
	KindViewer
	numKinds
)

var kindNames = [...]string{
	KindPlanner:          "planner",
	KindRobot:            "robot",
	KindSensorSystem:     "sensorsystem",
	KindController:       "controller",
	KindModule:           "module",
	KindIkSolver:         "iksolver",
	KindKinBody:          "kinbody",
	KindPhysicsEngine:    "physicsengine",
	KindSensor:           "sensor",
	KindCollisionChecker: "collisionchecker",
	KindViewer:           "viewer",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every valid interface kind.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind resolves a kind name as used in scene files and plugin
// descriptors.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("iface: unknown interface kind %q", s)
}
