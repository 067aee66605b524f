package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/phrictl/internal/automation"
	"github.com/san-kum/phrictl/internal/config"
	"github.com/san-kum/phrictl/internal/constraint"
	"github.com/san-kum/phrictl/internal/controller"
	"github.com/san-kum/phrictl/internal/driver"
	"github.com/san-kum/phrictl/internal/integrators"
	"github.com/san-kum/phrictl/internal/metrics"
	"github.com/san-kum/phrictl/internal/model"
	"github.com/san-kum/phrictl/internal/robot"
	"github.com/san-kum/phrictl/internal/sim"
	"github.com/san-kum/phrictl/internal/spatial"
	"github.com/san-kum/phrictl/internal/storage"
	"github.com/san-kum/phrictl/internal/trajectory"
)

// Experiment is a fully wired setup built from a configuration.
type Experiment struct {
	cfg          *config.Config
	robot        *robot.Robot
	model        *model.Model
	driver       *driver.Simulated
	controller   *controller.SafetyController
	trajectories *trajectory.Generator
	timeline     *automation.Timeline
	simulator    *sim.Simulator
	params       Params
	logger       *zap.Logger
}

type Option func(*builder)

func WithLogger(logger *zap.Logger) Option {
	return func(b *builder) { b.logger = logger }
}

// WithMetrics replaces the metrics named in the configuration.
func WithMetrics(m ...sim.Metric) Option {
	return func(b *builder) { b.metrics = m }
}

type builder struct {
	cfg     *config.Config
	robot   *robot.Robot
	params  Params
	logger  *zap.Logger
	metrics []sim.Metric

	generators  map[string]generatorFactory
	constraints map[string]constraintFactory
}

// Build validates cfg and wires the robot, model, driver, controller,
// trajectories, scenario and simulator it describes.
func Build(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &builder{
		cfg:         cfg,
		params:      make(Params),
		logger:      zap.NewNop(),
		generators:  generatorFactories(),
		constraints: constraintFactories(),
	}
	for _, opt := range opts {
		opt(b)
	}

	e := &Experiment{cfg: cfg, params: b.params, logger: b.logger}
	steps := []func(*Experiment) error{
		b.buildRobot,
		b.buildDriver,
		b.buildController,
		b.buildTrajectories,
		b.buildSimulator,
	}
	for _, step := range steps {
		if err := step(e); err != nil {
			return nil, errors.Wrapf(err, "experiment %q", cfg.Name)
		}
	}

	b.logger.Info("experiment built",
		zap.String("name", cfg.Name),
		zap.String("kinematics", cfg.Robot.Kinematics),
		zap.Int("generators", len(cfg.Generators)),
		zap.Int("constraints", len(cfg.Constraints)),
		zap.Int("trajectories", len(cfg.Trajectories.Items)),
		zap.Int("params", len(b.params)))
	return e, nil
}

func (b *builder) buildRobot(e *Experiment) error {
	rc := b.cfg.Robot
	kin, err := model.NewKinematics(rc.Kinematics, rc.Links)
	if err != nil {
		return err
	}

	r := robot.New(rc.Name, kin.JointCount())
	r.Control.TimeStep = b.cfg.Run.Dt
	if len(rc.TaskDamping) == 6 {
		copy(r.Control.Task.Damping[:], rc.TaskDamping)
	}
	if len(rc.JointDamping) == r.JointCount() {
		copy(r.Control.Joints.Damping, rc.JointDamping)
	}

	b.params.bindPosition("robot", &r.Task.State.Pose.Position)
	b.params.bindJoints("robot", r.Joints.State.Position)
	b.params.bindVector6("robot.twist", &r.Task.State.Twist, axes)
	b.params.bindVector6("robot", &r.Task.State.Wrench, wrenchAxes)
	b.params.bindVector6("damping", &r.Control.Task.Damping, axes)

	b.robot = r
	e.robot = r
	e.model = model.New(kin, model.WithDamping(b.cfg.Controller.Lambda, b.cfg.Controller.SigmaThreshold))
	return nil
}

func (b *builder) buildDriver(e *Experiment) error {
	dc := b.cfg.Driver
	integ, err := integrators.New(dc.Integrator)
	if err != nil {
		return err
	}

	var env driver.Environment = driver.FreeSpace{}
	if len(dc.Walls) > 0 {
		walls := make(driver.Environments, 0, len(dc.Walls))
		for _, w := range dc.Walls {
			normal := r3.Vector{X: w.Normal[0], Y: w.Normal[1], Z: w.Normal[2]}
			walls = append(walls, driver.NewWall(normal, w.Offset, w.Stiffness))
		}
		env = walls
	}

	opts := []driver.Option{
		driver.WithIntegrator(integ),
		driver.WithTimeConstant(dc.TimeConstant),
		driver.WithEnvironment(env),
		driver.WithDeadband(dc.Deadband),
	}
	if len(b.cfg.Robot.InitialPosition) > 0 {
		opts = append(opts, driver.WithInitialPosition(b.cfg.Robot.InitialPosition))
	}

	drv, err := driver.NewSimulated(e.robot, e.model, opts...)
	if err != nil {
		return err
	}
	b.params.bindVector6("env", &drv.ExternalWrench, wrenchAxes)
	b.params.bindJoints("env", drv.ExternalTorque)
	e.driver = drv

	// the driver reads once so that the state handles start from the
	// initial configuration
	return drv.Init()
}

func (b *builder) buildController(e *Experiment) error {
	ctrl := controller.New(e.robot,
		controller.WithLogger(b.logger.Named("controller")),
		controller.WithVerbose(b.cfg.Controller.Verbose))

	for _, gc := range b.cfg.Generators {
		factory, ok := b.generators[gc.Type]
		if !ok {
			return errors.Wrapf(ErrUnknownType, "generator %q: %q", gc.Name, gc.Type)
		}
		g, err := factory(b, gc)
		if err != nil {
			return errors.Wrapf(err, "generator %q", gc.Name)
		}
		if err := ctrl.Add(gc.Name, g); err != nil {
			return err
		}
	}

	for _, cc := range b.cfg.Constraints {
		c, err := b.constraint(cc, nil)
		if err != nil {
			return err
		}
		if err := ctrl.AddConstraint(cc.Name, c); err != nil {
			return err
		}
	}

	e.controller = ctrl
	return nil
}

func (b *builder) constraint(cc config.ConstraintConfig, limit *float64) (constraint.Constraint, error) {
	factory, ok := b.constraints[cc.Type]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "constraint %q: %q", cc.Name, cc.Type)
	}
	c, err := factory(b, cc, limit)
	return c, errors.Wrapf(err, "constraint %q", cc.Name)
}

func (b *builder) buildTrajectories(e *Experiment) error {
	tc := b.cfg.Trajectories
	if len(tc.Items) == 0 {
		return nil
	}

	sync, err := trajectory.ParseSync(tc.Sync)
	if err != nil {
		return err
	}
	gen := trajectory.NewGenerator(sync, trajectory.WithLogger(b.logger.Named("trajectory")))

	for _, item := range tc.Items {
		t, err := b.trajectory(item)
		if err != nil {
			return errors.Wrapf(err, "trajectory %q", item.Name)
		}
		if err := gen.Add(item.Name, t, false); err != nil {
			return err
		}
	}
	if err := gen.ComputeParameters(); err != nil {
		return err
	}
	e.trajectories = gen
	return nil
}

func (b *builder) trajectory(tc config.TrajectoryConfig) (*trajectory.Trajectory, error) {
	output, err := trajectory.ParseOutputType(tc.Output)
	if err != nil {
		return nil, err
	}
	target, err := b.params.Lookup(tc.Bind)
	if err != nil {
		return nil, err
	}

	var targets trajectory.Option
	switch output {
	case trajectory.Velocity:
		targets = trajectory.WithTargets(nil, target, nil)
	case trajectory.Acceleration:
		targets = trajectory.WithTargets(nil, nil, target)
	default:
		targets = trajectory.WithTargets(target, nil, nil)
	}

	t := trajectory.New(point(tc.Start), b.cfg.Run.Dt, trajectory.WithOutputType(output), targets)
	for i, s := range tc.Segments {
		if s.Duration > 0 {
			err = t.AddTimedPathTo(point(s.To), s.Duration)
		} else {
			err = t.AddPathTo(point(s.To), s.MaxVelocity, s.MaxAcceleration)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "segment %d", i)
		}
	}

	if tr := tc.Tracking; tr != nil {
		ref, err := b.params.Lookup(tr.Reference)
		if err != nil {
			return nil, err
		}
		if err := t.TrackError(ref, tr.Threshold, tr.Hysteresis); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func point(p config.PointConfig) trajectory.Point {
	return trajectory.NewPoint(p.Y, p.DY, p.D2Y)
}

func (b *builder) buildSimulator(e *Experiment) error {
	opts := []sim.Option{sim.WithLogger(b.logger.Named("sim"))}
	if e.trajectories != nil {
		opts = append(opts, sim.WithTrajectories(e.trajectories))
	}
	if len(b.cfg.Scenario) > 0 {
		tl, err := automation.NewTimeline(b.cfg.Scenario, b.params.Lookup, automation.WithLogger(b.logger.Named("scenario")))
		if err != nil {
			return err
		}
		e.timeline = tl
		opts = append(opts, sim.WithScenario(tl))
	}

	s := sim.New(e.robot, e.driver, e.controller, opts...)

	ms := b.metrics
	if ms == nil {
		mc := b.cfg.Metrics
		for _, name := range mc.Names {
			m, err := metrics.New(name, metrics.Params{ForceThreshold: mc.ForceThreshold, Mass: mc.Mass})
			if err != nil {
				return err
			}
			ms = append(ms, m)
		}
	}
	for _, m := range ms {
		s.AddMetric(m)
	}

	e.simulator = s
	return nil
}

// vector6 returns the target of gc as a live six-vector bound under the
// generator name, along with its frame.
func (b *builder) vector6(gc config.GeneratorConfig, names [6]string) (*spatial.Vector6, spatial.Frame, error) {
	frame, err := spatial.ParseFrame(gc.Frame)
	if err != nil {
		return nil, frame, err
	}
	v := new(spatial.Vector6)
	switch len(gc.Target) {
	case 0:
	case 6:
		copy(v[:], gc.Target)
	default:
		return nil, frame, errors.Wrapf(ErrBadValues, "%q target: %d", gc.Name, len(gc.Target))
	}
	b.params.bindVector6(gc.Name, v, names)
	return v, frame, nil
}

// joints returns a live per-joint vector bound under name.
func (b *builder) joints(name string, values []float64) ([]float64, error) {
	n := b.robot.JointCount()
	q := make([]float64, n)
	switch len(values) {
	case 0:
	case n:
		copy(q, values)
	default:
		return nil, errors.Wrapf(ErrBadValues, "%q: %d values for %d joints", name, len(values), n)
	}
	b.params.bindJoints(name, q)
	return q, nil
}

// limit returns a live scalar bound as <constraint>.<key>. A non-nil
// override is bound instead of a fresh value.
func (b *builder) limit(cc config.ConstraintConfig, key string, override *float64) *float64 {
	h := override
	if h == nil {
		h = new(float64)
		*h = param(cc.Params, key, math.Inf(1))
	}
	b.params.bind(cc.Name, key, h)
	return h
}

func (e *Experiment) Config() *config.Config                   { return e.cfg }
func (e *Experiment) Robot() *robot.Robot                      { return e.robot }
func (e *Experiment) Model() *model.Model                      { return e.model }
func (e *Experiment) Driver() *driver.Simulated                { return e.driver }
func (e *Experiment) Controller() *controller.SafetyController { return e.controller }
func (e *Experiment) Trajectories() *trajectory.Generator      { return e.trajectories }
func (e *Experiment) Simulator() *sim.Simulator                { return e.simulator }
func (e *Experiment) Params() Params                           { return e.params }

// SimConfig is the run configuration of the experiment.
func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{Dt: e.cfg.Run.Dt, Duration: e.cfg.Run.Duration, Decimation: e.cfg.Run.Decimation}
}

// Rewind restarts the trajectories so the experiment can run again.
func (e *Experiment) Rewind() error {
	if e.trajectories == nil {
		return nil
	}
	return e.trajectories.ComputeParameters()
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not built")
	}
	if err := e.Rewind(); err != nil {
		return nil, err
	}
	return e.simulator.Run(ctx, e.SimConfig())
}

// Metadata describes the experiment for storage.
func (e *Experiment) Metadata() storage.RunMetadata {
	sync := ""
	if e.trajectories != nil {
		sync = e.trajectories.Sync().String()
	}
	return storage.RunMetadata{
		Name:       e.cfg.Name,
		Robot:      e.robot.Name(),
		Kinematics: e.cfg.Robot.Kinematics,
		Joints:     e.robot.JointCount(),
		Integrator: e.cfg.Driver.Integrator,
		Sync:       sync,
		Dt:         e.cfg.Run.Dt,
		Duration:   e.cfg.Run.Duration,
	}
}
