package robot

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phrictl/internal/spatial"
)

// DefaultTimeStep is the control period used until a driver sets one.
const DefaultTimeStep = 0.005

// JointState holds measured joint quantities.
type JointState struct {
	Position []float64
	Velocity []float64
	// Force is the external torque (or force for prismatic joints) measured on each joint.
	Force []float64
}

// JointCommand holds the commands sent to the joints.
type JointCommand struct {
	Velocity []float64
	Position []float64
}

type Joints struct {
	State   JointState
	Command JointCommand
}

// TaskState holds measured control point quantities.
type TaskState struct {
	Pose         spatial.Pose
	Twist        spatial.Twist
	Acceleration spatial.Twist
	Wrench       spatial.Wrench
}

type TaskCommand struct {
	Twist spatial.Twist
}

type Task struct {
	State   TaskState
	Command TaskCommand
}

// JointControl holds the controller's joint-space aggregates.
type JointControl struct {
	// Damping maps summed joint torques to joint velocities. +Inf disables the mapping.
	Damping       []float64
	VelocitySum   []float64
	ForceSum      []float64
	Velocity      []float64
	TotalVelocity []float64
	TotalForce    []float64
}

// TaskControl holds the controller's Cartesian aggregates, expressed in the
// control point frame.
type TaskControl struct {
	// Damping maps the summed wrench to a twist. +Inf disables the mapping.
	Damping       spatial.Vector6
	VelocitySum   spatial.Twist
	ForceSum      spatial.Wrench
	Velocity      spatial.Twist
	TotalVelocity spatial.Twist
	TotalForce    spatial.Wrench
}

// Control holds kinematic data refreshed each cycle and the controller outputs.
type Control struct {
	TimeStep float64

	// Jacobian is 6 x n, expressed in the base frame.
	Jacobian *mat.Dense
	// JacobianInverse is n x 6.
	JacobianInverse *mat.Dense
	// Transformation is the 4x4 homogeneous transform of the control point.
	Transformation *mat.Dense
	// SpatialTransformation is the 6x6 matrix mapping control point quantities to the base frame.
	SpatialTransformation *mat.Dense

	Joints JointControl
	Task   TaskControl

	ConstraintValue float64
	ScalingFactor   float64
}

// Robot is the state shared between the driver, the kinematic model and the
// safety controller. All buffers are sized once, by New.
type Robot struct {
	name       string
	jointCount int

	Joints  Joints
	Task    Task
	Control Control
}

func New(name string, jointCount int) *Robot {
	vec := func() []float64 { return make([]float64, jointCount) }
	r := &Robot{
		name:       name,
		jointCount: jointCount,
		Joints: Joints{
			State:   JointState{Position: vec(), Velocity: vec(), Force: vec()},
			Command: JointCommand{Velocity: vec(), Position: vec()},
		},
		Task: Task{
			State: TaskState{Pose: spatial.IdentityPose()},
		},
		Control: Control{
			TimeStep:              DefaultTimeStep,
			Jacobian:              mat.NewDense(6, jointCount, nil),
			JacobianInverse:       mat.NewDense(jointCount, 6, nil),
			Transformation:        mat.NewDense(4, 4, nil),
			SpatialTransformation: mat.NewDense(6, 6, nil),
			Joints: JointControl{
				Damping:       vec(),
				VelocitySum:   vec(),
				ForceSum:      vec(),
				Velocity:      vec(),
				TotalVelocity: vec(),
				TotalForce:    vec(),
			},
			ConstraintValue: 1,
			ScalingFactor:   1,
		},
	}

	for i := range r.Control.Joints.Damping {
		r.Control.Joints.Damping[i] = math.Inf(1)
	}
	for i := range r.Control.Task.Damping {
		r.Control.Task.Damping[i] = math.Inf(1)
	}
	r.Task.State.Pose.FillTransformation(r.Control.Transformation)
	r.Task.State.Pose.FillSpatialTransformation(r.Control.SpatialTransformation)

	return r
}

func (r *Robot) Name() string    { return r.name }
func (r *Robot) JointCount() int { return r.jointCount }

// ControlPointPose returns the measured pose of the control point.
func (r *Robot) ControlPointPose() *spatial.Pose {
	return &r.Task.State.Pose
}

// SetIdentityKinematics makes the Jacobian and its inverse identity-like
// (ones on the leading diagonal). It is meant for robots driven without a
// kinematic model.
func (r *Robot) SetIdentityKinematics() {
	r.Control.Jacobian.Zero()
	r.Control.JacobianInverse.Zero()
	n := min(6, r.jointCount)
	for i := 0; i < n; i++ {
		r.Control.Jacobian.Set(i, i, 1)
		r.Control.JacobianInverse.Set(i, i, 1)
	}
}
