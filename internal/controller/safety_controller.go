package controller

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phrictl/internal/constraint"
	"github.com/san-kum/phrictl/internal/generator"
	"github.com/san-kum/phrictl/internal/registry"
	"github.com/san-kum/phrictl/internal/robot"
)

// DefaultConstraintName is the name of the always-1 constraint registered
// by New.
const DefaultConstraintName = "default"

type constraintEntry struct {
	constraint constraint.Constraint
	value      float64
}

// SafetyController sums the registered generators per category, reduces
// the registered constraints to one scaling factor and writes the scaled
// commands into the robot.
type SafetyController struct {
	robot   *robot.Robot
	logger  *zap.Logger
	verbose bool

	forces          *registry.Ordered[generator.ForceGenerator]
	velocities      *registry.Ordered[generator.VelocityGenerator]
	jointVelocities *registry.Ordered[generator.JointVelocityGenerator]
	torques         *registry.Ordered[generator.JointTorqueGenerator]
	constraints     *registry.Ordered[*constraintEntry]

	v views
}

type Option func(*SafetyController)

func WithLogger(logger *zap.Logger) Option {
	return func(c *SafetyController) { c.logger = logger }
}

// WithVerbose logs registrations and, at debug level, every cycle's outputs.
func WithVerbose(verbose bool) Option {
	return func(c *SafetyController) { c.verbose = verbose }
}

// New returns a controller bound to r. A nil robot yields an unbound
// controller that rejects registrations until SetRobot is called.
func New(r *robot.Robot, opts ...Option) *SafetyController {
	c := &SafetyController{
		logger:          zap.NewNop(),
		forces:          registry.New[generator.ForceGenerator](),
		velocities:      registry.New[generator.VelocityGenerator](),
		jointVelocities: registry.New[generator.JointVelocityGenerator](),
		torques:         registry.New[generator.JointTorqueGenerator](),
		constraints:     registry.New[*constraintEntry](),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.addDefaultConstraint()
	if r != nil {
		c.SetRobot(r)
	}
	return c
}

func (c *SafetyController) addDefaultConstraint() {
	_ = c.constraints.Add(DefaultConstraintName, &constraintEntry{constraint: constraint.NewDefault(), value: 1}, true)
}

// SetRobot binds r and rebinds every registered item to it. A nil robot
// unbinds the controller.
func (c *SafetyController) SetRobot(r *robot.Robot) {
	c.robot = r
	if r == nil {
		return
	}
	c.v = newViews(r)
	for _, g := range c.forces.Items() {
		g.SetRobot(r)
	}
	for _, g := range c.velocities.Items() {
		g.SetRobot(r)
	}
	for _, g := range c.jointVelocities.Items() {
		g.SetRobot(r)
	}
	for _, g := range c.torques.Items() {
		g.SetRobot(r)
	}
	for _, e := range c.constraints.Items() {
		e.constraint.SetRobot(r)
	}
}

func (c *SafetyController) Robot() *robot.Robot { return c.robot }

func (c *SafetyController) SetVerbose(verbose bool) { c.verbose = verbose }

func (c *SafetyController) registered(kind, name string) {
	if c.verbose {
		c.logger.Info("registered", zap.String("kind", kind), zap.String("name", name))
	}
}

func (c *SafetyController) AddConstraint(name string, ct constraint.Constraint) error {
	if c.robot == nil {
		return errors.Wrapf(ErrUnboundRobot, "constraint %q", name)
	}
	if err := c.constraints.Add(name, &constraintEntry{constraint: ct, value: 1}, false); err != nil {
		return errors.Wrap(err, "constraint")
	}
	ct.SetRobot(c.robot)
	c.registered("constraint", name)
	return nil
}

func (c *SafetyController) AddForceGenerator(name string, g generator.ForceGenerator) error {
	return addGenerator(c, c.forces, "force generator", name, g)
}

func (c *SafetyController) AddVelocityGenerator(name string, g generator.VelocityGenerator) error {
	return addGenerator(c, c.velocities, "velocity generator", name, g)
}

func (c *SafetyController) AddJointVelocityGenerator(name string, g generator.JointVelocityGenerator) error {
	return addGenerator(c, c.jointVelocities, "joint velocity generator", name, g)
}

func (c *SafetyController) AddJointTorqueGenerator(name string, g generator.JointTorqueGenerator) error {
	return addGenerator(c, c.torques, "joint torque generator", name, g)
}

type bindable interface {
	SetRobot(r *robot.Robot)
}

func addGenerator[T bindable](c *SafetyController, reg *registry.Ordered[T], kind, name string, g T) error {
	if c.robot == nil {
		return errors.Wrapf(ErrUnboundRobot, "%s %q", kind, name)
	}
	if err := reg.Add(name, g, false); err != nil {
		return errors.Wrap(err, kind)
	}
	g.SetRobot(c.robot)
	c.registered(kind, name)
	return nil
}

// Add registers any generator or constraint under name, dispatching on its type.
func (c *SafetyController) Add(name string, item any) error {
	switch v := item.(type) {
	case constraint.Constraint:
		return c.AddConstraint(name, v)
	case generator.ForceGenerator:
		return c.AddForceGenerator(name, v)
	case generator.VelocityGenerator:
		return c.AddVelocityGenerator(name, v)
	case generator.JointVelocityGenerator:
		return c.AddJointVelocityGenerator(name, v)
	case generator.JointTorqueGenerator:
		return c.AddJointTorqueGenerator(name, v)
	default:
		return errors.Wrapf(ErrUnsupported, "%q is %T", name, item)
	}
}

func (c *SafetyController) RemoveConstraint(name string) error {
	_, err := c.constraints.Remove(name)
	return errors.Wrap(err, "constraint")
}

func (c *SafetyController) RemoveForceGenerator(name string) error {
	_, err := c.forces.Remove(name)
	return errors.Wrap(err, "force generator")
}

func (c *SafetyController) RemoveVelocityGenerator(name string) error {
	_, err := c.velocities.Remove(name)
	return errors.Wrap(err, "velocity generator")
}

func (c *SafetyController) RemoveJointVelocityGenerator(name string) error {
	_, err := c.jointVelocities.Remove(name)
	return errors.Wrap(err, "joint velocity generator")
}

func (c *SafetyController) RemoveJointTorqueGenerator(name string) error {
	_, err := c.torques.Remove(name)
	return errors.Wrap(err, "joint torque generator")
}

// RemoveAll unregisters every generator and constraint except the default constraint.
func (c *SafetyController) RemoveAll() {
	c.forces.Clear()
	c.velocities.Clear()
	c.jointVelocities.Clear()
	c.torques.Clear()
	c.constraints.Clear()
	c.addDefaultConstraint()
}

func (c *SafetyController) GetConstraint(name string) (constraint.Constraint, error) {
	e, err := c.constraints.Get(name)
	if err != nil {
		return nil, errors.Wrap(err, "constraint")
	}
	return e.constraint, nil
}

func (c *SafetyController) GetForceGenerator(name string) (generator.ForceGenerator, error) {
	g, err := c.forces.Get(name)
	return g, errors.Wrap(err, "force generator")
}

func (c *SafetyController) GetVelocityGenerator(name string) (generator.VelocityGenerator, error) {
	g, err := c.velocities.Get(name)
	return g, errors.Wrap(err, "velocity generator")
}

func (c *SafetyController) GetJointVelocityGenerator(name string) (generator.JointVelocityGenerator, error) {
	g, err := c.jointVelocities.Get(name)
	return g, errors.Wrap(err, "joint velocity generator")
}

func (c *SafetyController) GetJointTorqueGenerator(name string) (generator.JointTorqueGenerator, error) {
	g, err := c.torques.Get(name)
	return g, errors.Wrap(err, "joint torque generator")
}

// ConstraintValue returns the output of the named constraint at the last Compute.
func (c *SafetyController) ConstraintValue(name string) (float64, error) {
	e, err := c.constraints.Get(name)
	if err != nil {
		return 0, errors.Wrap(err, "constraint")
	}
	return e.value, nil
}

// ConstraintNames returns the registered constraint names in evaluation order.
func (c *SafetyController) ConstraintNames() []string { return c.constraints.Names() }

// GeneratorNames returns the registered generator names per category.
func (c *SafetyController) GeneratorNames() map[string][]string {
	return map[string][]string{
		"force":          c.forces.Names(),
		"velocity":       c.velocities.Names(),
		"joint_velocity": c.jointVelocities.Names(),
		"joint_torque":   c.torques.Names(),
	}
}

// ScalingFactor returns the factor applied at the last Compute.
func (c *SafetyController) ScalingFactor() float64 {
	if c.robot == nil {
		return 1
	}
	return c.robot.Control.ScalingFactor
}

// Compute runs one control cycle. The robot's Jacobian, its inverse and the
// spatial transformation must be up to date.
func (c *SafetyController) Compute() error {
	if c.robot == nil {
		return ErrUnboundRobot
	}
	r := c.robot
	task := &r.Control.Task
	joints := &r.Control.Joints

	task.ForceSum.Reset()
	task.VelocitySum.Reset()
	clear(joints.VelocitySum)
	clear(joints.ForceSum)

	for _, g := range c.forces.Items() {
		task.ForceSum.Add(g.Compute())
	}
	for _, g := range c.velocities.Items() {
		task.VelocitySum.Add(g.Compute())
	}
	for _, g := range c.jointVelocities.Items() {
		accumulate(joints.VelocitySum, g.Compute())
	}
	for _, g := range c.torques.Items() {
		accumulate(joints.ForceSum, g.Compute())
	}

	for i := range task.Velocity {
		task.Velocity[i] = damp(task.ForceSum[i], task.Damping[i]) + task.VelocitySum[i]
	}
	for i := range joints.Velocity {
		joints.Velocity[i] = damp(joints.ForceSum[i], joints.Damping[i]) + joints.VelocitySum[i]
	}

	c.computeTotals()

	factor := math.Inf(1)
	for _, e := range c.constraints.Items() {
		e.value = e.constraint.Compute()
		if math.IsNaN(e.value) {
			// an undefined limit stops the robot
			factor = 0
			continue
		}
		factor = math.Min(factor, e.value)
	}
	if math.IsInf(factor, 1) {
		factor = 1
	}
	r.Control.ConstraintValue = factor
	r.Control.ScalingFactor = factor

	for i := range r.Task.Command.Twist {
		r.Task.Command.Twist[i] = task.TotalVelocity[i] * factor
	}
	for i := range r.Joints.Command.Velocity {
		r.Joints.Command.Velocity[i] = joints.TotalVelocity[i] * factor
	}

	if c.verbose && c.logger.Core().Enabled(zap.DebugLevel) {
		c.logCycle()
	}
	return nil
}

// computeTotals couples the task and joint spaces through the Jacobian:
//
//	q̇_total = J⁺·(T·v) + q̇
//	v_total = v + Tᵀ·(J·q̇)
//	τ_total = τ + Jᵀ·(T·F)
//	F_total = F + Tᵀ·(J⁺ᵀ·τ)
func (c *SafetyController) computeTotals() {
	ctl := &c.robot.Control
	v := &c.v

	v.s6a.MulVec(ctl.SpatialTransformation, v.taskVelocity)
	v.totalJointVelocity.MulVec(ctl.JacobianInverse, v.s6a)
	v.totalJointVelocity.AddVec(v.totalJointVelocity, v.jointVelocity)

	v.s6a.MulVec(ctl.Jacobian, v.jointVelocity)
	v.s6b.MulVec(v.spatialT, v.s6a)
	v.totalTaskVelocity.AddVec(v.taskVelocity, v.s6b)

	v.s6a.MulVec(ctl.SpatialTransformation, v.taskForce)
	v.totalJointForce.MulVec(v.jacobianT, v.s6a)
	v.totalJointForce.AddVec(v.totalJointForce, v.jointForce)

	v.s6a.MulVec(v.jacobianInverseT, v.jointForce)
	v.s6b.MulVec(v.spatialT, v.s6a)
	v.totalTaskForce.AddVec(v.taskForce, v.s6b)
}

func (c *SafetyController) logCycle() {
	r := c.robot
	fields := []zap.Field{
		zap.Float64("scaling_factor", r.Control.ScalingFactor),
		zap.Float64s("task_command", r.Task.Command.Twist[:]),
		zap.Float64s("joint_command", r.Joints.Command.Velocity),
	}
	for name, e := range c.constraints.All() {
		fields = append(fields, zap.Float64("constraint."+name, e.value))
	}
	c.logger.Debug("cycle", fields...)
}

func accumulate(dst, src []float64) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] += src[i]
	}
}

func damp(force, damping float64) float64 {
	if math.IsInf(damping, 0) {
		return 0
	}
	return force / damping
}

// views are gonum vectors sharing storage with the robot's buffers. The
// robot's matrices are updated in place so their transposes are taken once.
type views struct {
	taskVelocity, taskForce           *mat.VecDense
	jointVelocity, jointForce         *mat.VecDense
	totalTaskVelocity, totalTaskForce *mat.VecDense
	totalJointVelocity                *mat.VecDense
	totalJointForce                   *mat.VecDense
	s6a, s6b                          *mat.VecDense

	spatialT, jacobianT, jacobianInverseT mat.Matrix
}

func newViews(r *robot.Robot) views {
	ctl := &r.Control
	n := r.JointCount()
	return views{
		taskVelocity:       mat.NewVecDense(6, ctl.Task.Velocity[:]),
		taskForce:          mat.NewVecDense(6, ctl.Task.ForceSum[:]),
		jointVelocity:      mat.NewVecDense(n, ctl.Joints.Velocity),
		jointForce:         mat.NewVecDense(n, ctl.Joints.ForceSum),
		totalTaskVelocity:  mat.NewVecDense(6, ctl.Task.TotalVelocity[:]),
		totalTaskForce:     mat.NewVecDense(6, ctl.Task.TotalForce[:]),
		totalJointVelocity: mat.NewVecDense(n, ctl.Joints.TotalVelocity),
		totalJointForce:    mat.NewVecDense(n, ctl.Joints.TotalForce),
		s6a:                mat.NewVecDense(6, nil),
		s6b:                mat.NewVecDense(6, nil),
		spatialT:           ctl.SpatialTransformation.T(),
		jacobianT:          ctl.Jacobian.T(),
		jacobianInverseT:   ctl.JacobianInverse.T(),
	}
}
