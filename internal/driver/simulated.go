package driver

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phrictl/internal/dynamo"
	"github.com/san-kum/phrictl/internal/integrators"
	"github.com/san-kum/phrictl/internal/model"
	"github.com/san-kum/phrictl/internal/robot"
	"github.com/san-kum/phrictl/internal/signal"
	"github.com/san-kum/phrictl/internal/spatial"
)

const DefaultTimeConstant = 0.02

// Driver exchanges state and commands with a robot once per cycle.
type Driver interface {
	Init() error
	Read() error
	Send() error
}

// Simulated is a Driver for a simulated robot. Joints follow the velocity
// command through an Actuator; the external wrench comes from an
// Environment plus an additional wrench that callers may set between cycles.
type Simulated struct {
	robot      *robot.Robot
	model      *model.Model
	actuator   *Actuator
	integrator dynamo.Integrator
	env        Environment

	initial  []float64
	deadband float64

	// ExternalWrench is added to the environment wrench, in the base frame.
	ExternalWrench spatial.Wrench
	// ExternalTorque is added to the joint torques induced by the wrench.
	ExternalTorque []float64

	x    dynamo.State
	u    dynamo.Control
	time float64

	wrench      spatial.Wrench
	wrenchBase  *mat.VecDense
	jointForce  *mat.VecDense
	jacobianT   mat.Matrix
	spatialT    mat.Matrix
	wrenchLocal *mat.VecDense
}

type Option func(*Simulated)

func WithTimeConstant(tau float64) Option {
	return func(s *Simulated) { s.actuator.Tau = tau }
}

func WithIntegrator(integ dynamo.Integrator) Option {
	return func(s *Simulated) { s.integrator = integ }
}

func WithEnvironment(env Environment) Option {
	return func(s *Simulated) { s.env = env }
}

// WithDeadband zeroes measured wrench components smaller than threshold.
func WithDeadband(threshold float64) Option {
	return func(s *Simulated) { s.deadband = threshold }
}

func WithInitialPosition(q []float64) Option {
	return func(s *Simulated) { s.initial = q }
}

func NewSimulated(r *robot.Robot, m *model.Model, opts ...Option) (*Simulated, error) {
	n := r.JointCount()
	if m.Kinematics().JointCount() != n {
		return nil, errors.Wrapf(model.ErrDimensionMismatch, "driver for %q", r.Name())
	}
	s := &Simulated{
		robot:          r,
		model:          m,
		actuator:       NewActuator(n, DefaultTimeConstant),
		integrator:     integrators.NewRK4(),
		env:            FreeSpace{},
		ExternalTorque: make([]float64, n),
		x:              make(dynamo.State, 2*n),
		u:              make(dynamo.Control, n),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !(s.actuator.Tau > 0) {
		return nil, errors.Wrapf(dynamo.ErrParameterBounds, "time constant %g", s.actuator.Tau)
	}
	if s.initial != nil && len(s.initial) != n {
		return nil, errors.Wrapf(dynamo.ErrDimensionMismatch, "%d initial positions for %d joints", len(s.initial), n)
	}
	s.wrenchBase = mat.NewVecDense(6, s.wrench[:])
	s.wrenchLocal = mat.NewVecDense(6, r.Task.State.Wrench[:])
	s.jointForce = mat.NewVecDense(n, r.Joints.State.Force)
	s.jacobianT = r.Control.Jacobian.T()
	s.spatialT = r.Control.SpatialTransformation.T()
	return s, nil
}

func (s *Simulated) Robot() *robot.Robot { return s.robot }
func (s *Simulated) Time() float64       { return s.time }

// Init resets the simulation to the initial joint positions at rest and
// reads the resulting state.
func (s *Simulated) Init() error {
	clear(s.x)
	copy(s.x, s.initial)
	s.time = 0
	s.model.Reset()
	return s.Read()
}

// Read updates the robot's joint state, kinematics and measured wrench.
func (s *Simulated) Read() error {
	n := s.robot.JointCount()
	copy(s.robot.Joints.State.Position, s.x[:n])
	copy(s.robot.Joints.State.Velocity, s.x[n:])

	if err := s.model.Update(s.robot); err != nil {
		return err
	}

	s.env.Wrench(s.time, &s.robot.Task.State.Pose, &s.wrench)
	s.wrench.Add(&s.ExternalWrench)

	s.jointForce.MulVec(s.jacobianT, s.wrenchBase)
	for i, tau := range s.ExternalTorque {
		s.robot.Joints.State.Force[i] += tau
	}

	s.wrenchLocal.MulVec(s.spatialT, s.wrenchBase)
	if s.deadband > 0 {
		signal.Deadband(s.robot.Task.State.Wrench[:], s.deadband)
	}
	return nil
}

// Send integrates the joints over one time step under the current velocity command.
func (s *Simulated) Send() error {
	copy(s.u, s.robot.Joints.Command.Velocity)
	dt := s.robot.Control.TimeStep
	s.integrator.Step(s.actuator, s.x, s.u, s.time, dt)
	s.time += dt
	if !s.x.IsValid() {
		return errors.Wrapf(dynamo.ErrInvalidState, "driver %q at t=%.4f", s.robot.Name(), s.time)
	}
	return nil
}
