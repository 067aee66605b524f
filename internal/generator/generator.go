package generator

import (
	"github.com/san-kum/phrictl/internal/robot"
	"github.com/san-kum/phrictl/internal/spatial"
)

// ForceGenerator produces a wrench applied at the control point.
type ForceGenerator interface {
	SetRobot(r *robot.Robot)
	// Compute resets the output, evaluates the generator and returns the
	// output buffer expressed in the control point frame. The buffer stays
	// valid until the next call.
	Compute() *spatial.Wrench
	// Output returns the buffer filled by the last Compute.
	Output() *spatial.Wrench
	Frame() spatial.Frame
	isForce()
}

// VelocityGenerator produces a twist of the control point.
type VelocityGenerator interface {
	SetRobot(r *robot.Robot)
	Compute() *spatial.Twist
	Output() *spatial.Twist
	Frame() spatial.Frame
	isVelocity()
}

// JointVelocityGenerator produces a joint velocity vector.
type JointVelocityGenerator interface {
	SetRobot(r *robot.Robot)
	Compute() []float64
	Output() []float64
	isJointVelocity()
}

// JointTorqueGenerator produces a joint torque vector.
type JointTorqueGenerator interface {
	SetRobot(r *robot.Robot)
	Compute() []float64
	Output() []float64
	isJointTorque()
}

type cartesianUpdater interface {
	update(out *spatial.Vector6)
}

type cartesian struct {
	self   cartesianUpdater
	robot  *robot.Robot
	frame  spatial.Frame
	output spatial.Vector6
}

func (c *cartesian) SetRobot(r *robot.Robot)  { c.robot = r }
func (c *cartesian) Frame() spatial.Frame     { return c.frame }
func (c *cartesian) Output() *spatial.Vector6 { return &c.output }

func (c *cartesian) Compute() *spatial.Vector6 {
	c.output.Reset()
	c.self.update(&c.output)
	if c.frame == spatial.Base && c.robot != nil {
		spatial.ToControlPoint(c.robot.Control.SpatialTransformation, &c.output)
	}
	return &c.output
}

type forceBase struct{ cartesian }

func (forceBase) isForce() {}

func newForceBase(self cartesianUpdater, frame spatial.Frame) forceBase {
	return forceBase{cartesian{self: self, frame: frame}}
}

type velocityBase struct{ cartesian }

func (velocityBase) isVelocity() {}

func newVelocityBase(self cartesianUpdater, frame spatial.Frame) velocityBase {
	return velocityBase{cartesian{self: self, frame: frame}}
}

type jointUpdater interface {
	update(out []float64)
}

type joint struct {
	self   jointUpdater
	robot  *robot.Robot
	output []float64
}

// SetRobot binds the robot and sizes the output to its joint count.
func (j *joint) SetRobot(r *robot.Robot) {
	j.robot = r
	if len(j.output) != r.JointCount() {
		j.output = make([]float64, r.JointCount())
	}
}

func (j *joint) Output() []float64 { return j.output }

func (j *joint) Compute() []float64 {
	clear(j.output)
	j.self.update(j.output)
	return j.output
}

type jointVelocityBase struct{ joint }

func (jointVelocityBase) isJointVelocity() {}

type jointTorqueBase struct{ joint }

func (jointTorqueBase) isJointTorque() {}
