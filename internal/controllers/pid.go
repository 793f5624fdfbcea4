// Package controllers provides the built-in robot controllers: a
// joint-space PID tracker ("pid") and a hold-position controller
// ("idle"). Both register as Controller-kind plugin types.
package controllers

import (
	"math"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/plugins"
)

const (
	// PIDType is the registered type of the joint-space PID controller.
	PIDType = "pid"
	// IdleType is the registered type of the hold-position controller.
	IdleType = "idle"
)

func init() {
	plugins.Provide("controllers", func() *plugins.Descriptor {
		return &plugins.Descriptor{
			Name: "controllers",
			Constructors: map[iface.Kind]map[string]plugins.Constructor{
				iface.KindController: {
					PIDType:  func() iface.Interface { return NewPID(10, 0.1, 0.2) },
					IdleType: func() iface.Interface { return NewIdle() },
				},
			},
		}
	})
}

// doneTolerance is the per-joint error below which a PID command counts
// as completed.
const doneTolerance = 1e-3

// PID tracks desired joint values with one loop per joint, commanding
// joint velocities. Kp and Ki act on the position error; Kd damps the
// measured joint velocity.
type PID struct {
	iface.Base
	Kp, Ki, Kd float64

	robot    *body.Robot
	desired  []float64
	integral []float64
}

// NewPID returns a PID controller with the given shared gains.
func NewPID(kp, ki, kd float64) *PID {
	p := &PID{
		Base: iface.NewBase(iface.KindController, PIDType),
		Kp:   kp,
		Ki:   ki,
		Kd:   kd,
	}
	p.SetDescription("joint-space PID tracking controller")
	return p
}

func (p *PID) Init(r *body.Robot) bool {
	if r == nil || r.DOF() == 0 {
		return false
	}
	p.robot = r
	p.desired = r.JointValues()
	p.integral = make([]float64, r.DOF())
	return true
}

func (p *PID) SetDesired(values []float64) bool {
	if p.robot == nil || len(values) != p.robot.DOF() {
		return false
	}
	p.desired = append([]float64(nil), values...)
	p.integral = make([]float64, len(values))
	return true
}

func (p *PID) Simulate(dt float64) bool {
	if p.robot == nil || dt <= 0 {
		return false
	}
	current := p.robot.JointValues()
	measured := p.robot.JointVelocities()
	vels := make([]float64, len(current))
	next := make([]float64, len(current))
	for i := range current {
		err := p.desired[i] - current[i]
		p.integral[i] += err * dt

		u := p.Kp*err + p.Ki*p.integral[i] - p.Kd*measured[i]
		vels[i] = u
		next[i] = current[i] + u*dt
	}
	p.robot.SetJointValues(next)
	p.robot.SetJointVelocities(vels)
	return true
}

func (p *PID) IsDone() bool {
	if p.robot == nil {
		return true
	}
	for i, v := range p.robot.JointValues() {
		if math.Abs(p.desired[i]-v) > doneTolerance {
			return false
		}
	}
	return true
}

func (p *PID) Reset() {
	if p.robot == nil {
		return
	}
	p.desired = p.robot.JointValues()
	p.integral = make([]float64, p.robot.DOF())
	p.robot.SetJointVelocities(make([]float64, p.robot.DOF()))
}
