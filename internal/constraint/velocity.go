package constraint

import (
	"math"
)

// Force limits the velocity inversely to the measured external force:
// min(1, max/|F|). No force means no limitation.
type Force struct {
	base
	maximum *float64
}

func NewForce(maximum *float64) *Force {
	return &Force{maximum: maximum}
}

func (c *Force) Compute() float64 {
	if c.robot == nil {
		return 1
	}
	f := c.robot.Task.State.Wrench.Linear()
	return ratio(*c.maximum, f.Norm())
}

// Velocity limits the translational velocity of the control point.
type Velocity struct {
	base
	maximum *float64
}

func NewVelocity(maximum *float64) *Velocity {
	return &Velocity{maximum: maximum}
}

func (c *Velocity) Compute() float64 {
	if c.robot == nil {
		return 1
	}
	v := c.robot.Control.Task.TotalVelocity.Linear()
	return ratio(*c.maximum, v.Norm())
}

// Acceleration limits the change of the translational velocity command
// between two cycles.
type Acceleration struct {
	base
	maximum *float64
}

func NewAcceleration(maximum *float64) *Acceleration {
	return &Acceleration{maximum: maximum}
}

func (c *Acceleration) Compute() float64 {
	if c.robot == nil {
		return 1
	}
	prev := c.robot.Task.Command.Twist.Linear()
	v := c.robot.Control.Task.TotalVelocity.Linear()
	limit := prev.Norm() + *c.maximum*c.robot.Control.TimeStep
	return ratio(limit, v.Norm())
}

// KineticEnergy bounds the translational kinetic energy of a mass carried
// at the control point.
type KineticEnergy struct {
	base
	mass    *float64
	maximum *float64
}

func NewKineticEnergy(mass, maximum *float64) *KineticEnergy {
	return &KineticEnergy{mass: mass, maximum: maximum}
}

func (c *KineticEnergy) Compute() float64 {
	if c.robot == nil || *c.mass <= 0 {
		return 1
	}
	vmax := math.Sqrt(2 * *c.maximum / *c.mass)
	v := c.robot.Control.Task.TotalVelocity.Linear()
	return ratio(vmax, v.Norm())
}

// Power bounds the power transferred when moving against the external
// force, P = F·v < 0.
type Power struct {
	base
	maximum *float64
	power   float64
}

func NewPower(maximum *float64) *Power {
	return &Power{maximum: maximum}
}

// Power returns the power computed by the last Compute.
func (c *Power) Power() float64 { return c.power }

func (c *Power) Compute() float64 {
	if c.robot == nil {
		return 1
	}
	f := c.robot.Task.State.Wrench.Linear()
	v := c.robot.Control.Task.TotalVelocity.Linear()
	c.power = f.Dot(v)
	if c.power >= 0 {
		return 1
	}
	return ratio(*c.maximum, c.power)
}

// JointVelocity limits each joint velocity to its own bound.
type JointVelocity struct {
	base
	maximum []float64
}

func NewJointVelocity(maximum []float64) *JointVelocity {
	return &JointVelocity{maximum: maximum}
}

func (c *JointVelocity) Compute() float64 {
	if c.robot == nil {
		return 1
	}
	qd := c.robot.Control.Joints.TotalVelocity
	factor := 1.0
	for i := 0; i < len(qd) && i < len(c.maximum); i++ {
		factor = math.Min(factor, ratio(c.maximum[i], qd[i]))
	}
	return factor
}

// JointAcceleration limits the change of each joint velocity command
// between two cycles.
type JointAcceleration struct {
	base
	maximum []float64
}

func NewJointAcceleration(maximum []float64) *JointAcceleration {
	return &JointAcceleration{maximum: maximum}
}

func (c *JointAcceleration) Compute() float64 {
	if c.robot == nil {
		return 1
	}
	dt := c.robot.Control.TimeStep
	prev := c.robot.Joints.Command.Velocity
	qd := c.robot.Control.Joints.TotalVelocity
	factor := 1.0
	for i := 0; i < len(qd) && i < len(c.maximum); i++ {
		if math.Abs(qd[i]) < 1e-6 {
			continue
		}
		factor = math.Min(factor, ratio(math.Abs(prev[i])+c.maximum[i]*dt, qd[i]))
	}
	return factor
}
