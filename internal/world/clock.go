package world

import (
	"math"
	"time"

	"github.com/mkalland/simworld/internal/iface"
)

// SetPhysicsEngine installs the active physics engine; nil installs a
// no-op engine. Swapping is atomic with respect to in-flight steps. It
// reports whether the engine accepted the environment.
func (e *Environment) SetPhysicsEngine(p iface.PhysicsEngine) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p == nil {
		p = newNullEngine()
	}
	if !p.InitEnvironment(e) {
		return false
	}
	for _, b := range e.bodies {
		p.InitBody(b)
	}
	if e.engine != nil {
		e.engine.DestroyEnvironment()
	}
	e.engine = p
	return true
}

// PhysicsEngine returns the active engine; a no-op engine is installed by
// default so the result is never nil on a live environment.
func (e *Environment) PhysicsEngine() iface.PhysicsEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine
}

// StepSimulation performs exactly one simulation step of stepSize seconds
// synchronously, independent of the background loop: physics advance,
// controller updates, module hooks, time bookkeeping and snapshot refresh,
// all under the lock.
func (e *Environment) StepSimulation(stepSize float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stepLocked(stepSize)
}

func (e *Environment) stepLocked(stepSize float64) {
	e.inPhysicsStep = true
	if e.engine != nil {
		e.engine.SimulateStep(stepSize)
	}
	for _, r := range e.robots {
		r.SimulateController(stepSize)
	}
	for _, m := range e.modules {
		m.mod.SimulationStep(stepSize)
	}
	e.inPhysicsStep = false
	e.simTime.Add(uint64(math.Round(stepSize * 1e6)))
	e.updatePublishedLocked()
}

// StartSimulation launches the background stepping loop. stepSize is in
// seconds. With realTime set, steps are paced so simulated time tracks
// wall-clock time; otherwise the loop runs as fast as possible. Starting
// an already-running simulation is a no-op.
func (e *Environment) StartSimulation(stepSize float64, realTime bool) {
	if stepSize <= 0 {
		logger.Warn("StartSimulation rejected non-positive step", "step", stepSize)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	// start and stop serialize on the environment lock: a concurrent stop
	// can never observe running without the channels in place
	e.stopCh = make(chan struct{})
	e.loopDone = make(chan struct{})
	go e.simLoop(stepSize, realTime, e.stopCh, e.loopDone)
}

// StopSimulation stops the background loop. The request is observed at
// the next step boundary: a step already in progress always completes in
// full. StopSimulation returns once the loop has exited; calling it when
// no loop runs is a no-op.
func (e *Environment) StopSimulation() {
	e.mu.Lock()
	if !e.running.CompareAndSwap(true, false) {
		e.mu.Unlock()
		return
	}
	stop, done := e.stopCh, e.loopDone
	e.mu.Unlock()
	close(stop)
	<-done
}

// IsSimulationRunning reports whether the background loop is executing.
func (e *Environment) IsSimulationRunning() bool { return e.running.Load() }

// SimulationTime returns elapsed simulated time in microseconds since the
// environment's creation or the last Reset.
func (e *Environment) SimulationTime() uint64 { return e.simTime.Load() }

func (e *Environment) simLoop(stepSize float64, realTime bool, stopCh, done chan struct{}) {
	defer close(done)
	interval := time.Duration(stepSize * float64(time.Second))
	for {
		select {
		case <-stopCh:
			return
		default:
		}
		start := e.clk.Now()
		e.StepSimulation(stepSize)
		if !realTime {
			continue
		}
		if remaining := interval - e.clk.Since(start); remaining > 0 {
			t := e.clk.Timer(remaining)
			select {
			case <-stopCh:
				t.Stop()
				return
			case <-t.C:
			}
		}
	}
}
