package config

import (
	"math"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/san-kum/phrictl/internal/integrators"
	"github.com/san-kum/phrictl/internal/logging"
	"github.com/san-kum/phrictl/internal/metrics"
	"github.com/san-kum/phrictl/internal/trajectory"
)

var (
	ErrInvalid      = errors.New("config: invalid")
	ErrUnknownParam = errors.New("config: unknown parameter")
)

// reservedNames prefix the robot, driver and controller parameters.
var reservedNames = []string{"default", "robot", "env", "damping"}

func invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalid, format, args...)
}

// Validate reports every problem of the configuration at once.
func (c *Config) Validate() error {
	var err error
	add := func(e error) { err = multierr.Append(err, e) }

	if c.Run.Dt <= 0 {
		add(invalid("run.dt must be positive, got %g", c.Run.Dt))
	}
	if c.Run.Duration <= 0 {
		add(invalid("run.duration must be positive, got %g", c.Run.Duration))
	}
	if c.Run.Decimation < 0 {
		add(invalid("run.decimation must not be negative, got %d", c.Run.Decimation))
	}

	add(c.validateRobot())
	add(c.validateDriver())

	if c.Controller.Lambda < 0 || c.Controller.SigmaThreshold < 0 {
		add(invalid("controller damping must not be negative"))
	}

	add(uniqueNames("generator", c.Generators, func(g GeneratorConfig) string { return g.Name }))
	add(uniqueNames("constraint", c.Constraints, func(cc ConstraintConfig) string { return cc.Name }))
	for _, g := range c.Generators {
		if slices.Contains(reservedNames, g.Name) {
			add(invalid("generator name %q is reserved", g.Name))
		}
	}
	for _, cc := range c.Constraints {
		if slices.Contains(reservedNames, cc.Name) {
			add(invalid("constraint name %q is reserved", cc.Name))
		}
		if cc.Type == "separation_distance" && (cc.Inner == nil || cc.Interpolator == nil) {
			add(invalid("constraint %q needs an inner constraint and an interpolator", cc.Name))
		}
	}

	add(c.validateTrajectories())

	for i, ev := range c.Scenario {
		if ev.Param == "" {
			add(invalid("scenario event %d has no param", i))
		}
		if ev.At < 0 || (ev.Until != 0 && ev.Until <= ev.At) {
			add(invalid("scenario event %d has bad timing [%g, %g]", i, ev.At, ev.Until))
		}
	}

	known := metrics.Names()
	for _, name := range c.Metrics.Names {
		if !slices.Contains(known, name) {
			add(invalid("unknown metric %q", name))
		}
	}

	if _, e := logging.NewLoggerConfig(c.Logging); e != nil {
		add(e)
	}
	return err
}

func (c *Config) validateRobot() error {
	var err error
	r := c.Robot
	switch r.Kinematics {
	case "gantry":
	case "planar_arm":
		if len(r.Links) == 0 {
			err = multierr.Append(err, invalid("planar_arm needs links"))
		}
		for _, l := range r.Links {
			if !(l > 0) {
				err = multierr.Append(err, invalid("link lengths must be positive, got %g", l))
				break
			}
		}
	default:
		err = multierr.Append(err, invalid("unknown kinematics %q", r.Kinematics))
	}

	n := c.JointCount()
	if len(r.InitialPosition) != 0 && len(r.InitialPosition) != n {
		err = multierr.Append(err, invalid("initial_position has %d values for %d joints", len(r.InitialPosition), n))
	}
	if len(r.TaskDamping) != 0 && len(r.TaskDamping) != 6 {
		err = multierr.Append(err, invalid("task_damping needs 6 values, got %d", len(r.TaskDamping)))
	}
	if len(r.JointDamping) != 0 && len(r.JointDamping) != n {
		err = multierr.Append(err, invalid("joint_damping has %d values for %d joints", len(r.JointDamping), n))
	}
	for _, d := range append(slices.Clone(r.TaskDamping), r.JointDamping...) {
		if !(d > 0) {
			err = multierr.Append(err, invalid("damping must be positive, got %g", d))
			break
		}
	}
	return err
}

func (c *Config) validateDriver() error {
	var err error
	d := c.Driver
	if !slices.Contains(integrators.Names(), d.Integrator) {
		err = multierr.Append(err, invalid("unknown integrator %q", d.Integrator))
	}
	if !(d.TimeConstant > 0) {
		err = multierr.Append(err, invalid("driver.time_constant must be positive, got %g", d.TimeConstant))
	}
	if d.Deadband < 0 {
		err = multierr.Append(err, invalid("driver.deadband must not be negative, got %g", d.Deadband))
	}
	for i, w := range d.Walls {
		if len(w.Normal) != 3 || math.Hypot(math.Hypot(w.Normal[0], w.Normal[1]), w.Normal[2]) == 0 {
			err = multierr.Append(err, invalid("wall %d needs a non-zero 3-D normal", i))
		}
		if w.Stiffness < 0 {
			err = multierr.Append(err, invalid("wall %d has negative stiffness", i))
		}
	}
	return err
}

func (c *Config) validateTrajectories() error {
	var err error
	if _, e := trajectory.ParseSync(c.Trajectories.Sync); e != nil {
		err = multierr.Append(err, e)
	}
	err = multierr.Append(err, uniqueNames("trajectory", c.Trajectories.Items, func(t TrajectoryConfig) string { return t.Name }))
	for _, t := range c.Trajectories.Items {
		if _, e := trajectory.ParseOutputType(t.Output); e != nil {
			err = multierr.Append(err, e)
		}
		if t.Bind == "" {
			err = multierr.Append(err, invalid("trajectory %q has no bind target", t.Name))
		}
		if len(t.Segments) == 0 {
			err = multierr.Append(err, invalid("trajectory %q has no segment", t.Name))
		}
		for i, s := range t.Segments {
			if s.Duration <= 0 && (!(s.MaxVelocity > 0) || !(s.MaxAcceleration > 0)) {
				err = multierr.Append(err, invalid("trajectory %q segment %d needs a duration or positive limits", t.Name, i))
			}
		}
		if tr := t.Tracking; tr != nil && (tr.Reference == "" || !(tr.Threshold > 0) || !(tr.Hysteresis > 0 && tr.Hysteresis <= 1)) {
			err = multierr.Append(err, invalid("trajectory %q has bad error tracking", t.Name))
		}
	}
	return err
}

func uniqueNames[T any](kind string, items []T, name func(T) string) error {
	var err error
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		n := name(item)
		switch {
		case n == "":
			err = multierr.Append(err, invalid("%s without a name", kind))
		case seen[n]:
			err = multierr.Append(err, invalid("duplicate %s %q", kind, n))
		}
		seen[n] = true
	}
	return err
}

// SetParam sets a numeric setting by path. Paths are run.dt, run.duration,
// controller.lambda, controller.sigma_threshold, driver.time_constant,
// driver.deadband, <generator>.<param>, <constraint>.<param> and
// <constraint>.inner.<param>.
func (c *Config) SetParam(path string, value float64) error {
	switch path {
	case "run.dt":
		c.Run.Dt = value
		return nil
	case "run.duration":
		c.Run.Duration = value
		return nil
	case "controller.lambda":
		c.Controller.Lambda = value
		return nil
	case "controller.sigma_threshold":
		c.Controller.SigmaThreshold = value
		return nil
	case "driver.time_constant":
		c.Driver.TimeConstant = value
		return nil
	case "driver.deadband":
		c.Driver.Deadband = value
		return nil
	}

	name, key, ok := strings.Cut(path, ".")
	if !ok || key == "" {
		return errors.Wrapf(ErrUnknownParam, "%q", path)
	}
	for i := range c.Generators {
		if g := &c.Generators[i]; g.Name == name {
			g.Params = setKey(g.Params, key, value)
			return nil
		}
	}
	for i := range c.Constraints {
		cc := &c.Constraints[i]
		if cc.Name != name {
			continue
		}
		if innerKey, ok := strings.CutPrefix(key, "inner."); ok && cc.Inner != nil {
			cc.Inner.Params = setKey(cc.Inner.Params, innerKey, value)
			return nil
		}
		cc.Params = setKey(cc.Params, key, value)
		return nil
	}
	return errors.Wrapf(ErrUnknownParam, "%q", path)
}

func setKey(m map[string]float64, key string, value float64) map[string]float64 {
	if m == nil {
		m = make(map[string]float64)
	}
	m[key] = value
	return m
}
