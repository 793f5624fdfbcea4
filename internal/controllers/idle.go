package controllers

import (
	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/iface"
)

// Idle accepts any robot and holds it where it is. Commands complete
// immediately.
type Idle struct {
	iface.Base
	robot *body.Robot
	hold  []float64
}

// NewIdle returns a hold-position controller.
func NewIdle() *Idle {
	c := &Idle{Base: iface.NewBase(iface.KindController, IdleType)}
	c.SetDescription("holds the robot at its current configuration")
	return c
}

func (c *Idle) Init(r *body.Robot) bool {
	if r == nil {
		return false
	}
	c.robot = r
	c.hold = r.JointValues()
	return true
}

// SetDesired snaps the robot to the values instantly.
func (c *Idle) SetDesired(values []float64) bool {
	if c.robot == nil || len(values) != c.robot.DOF() {
		return false
	}
	c.hold = append([]float64(nil), values...)
	c.robot.SetJointValues(c.hold)
	return true
}

func (c *Idle) Simulate(dt float64) bool {
	if c.robot == nil {
		return false
	}
	c.robot.SetJointValues(c.hold)
	c.robot.SetJointVelocities(make([]float64, c.robot.DOF()))
	return true
}

func (c *Idle) IsDone() bool { return true }

func (c *Idle) Reset() {
	if c.robot != nil {
		c.hold = c.robot.JointValues()
	}
}
