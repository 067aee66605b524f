package experiment

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phrictl/internal/config"
	"github.com/san-kum/phrictl/internal/constraint"
	"github.com/san-kum/phrictl/internal/generator"
	"github.com/san-kum/phrictl/internal/interpolator"
	"github.com/san-kum/phrictl/internal/polynomial"
	"github.com/san-kum/phrictl/internal/spatial"
)

var (
	ErrUnknownType = errors.New("experiment: unknown type")
	ErrBadValues   = errors.New("experiment: wrong number of values")
)

// generatorFactory builds a generator and binds its live values under its
// name. The result is dispatched by the controller's Add.
type generatorFactory func(b *builder, gc config.GeneratorConfig) (any, error)

// constraintFactory builds a constraint. A non-nil limit replaces the
// constraint's "max" value, which lets an interpolator drive it.
type constraintFactory func(b *builder, cc config.ConstraintConfig, limit *float64) (constraint.Constraint, error)

// generatorFactories returns the generator builders keyed by type tag.
func generatorFactories() map[string]generatorFactory {
	return map[string]generatorFactory{
		"force_proxy": func(b *builder, gc config.GeneratorConfig) (any, error) {
			w, frame, err := b.vector6(gc, wrenchAxes)
			if err != nil {
				return nil, err
			}
			return generator.NewForceProxy(w, frame), nil
		},
		"velocity_proxy": func(b *builder, gc config.GeneratorConfig) (any, error) {
			v, frame, err := b.vector6(gc, axes)
			if err != nil {
				return nil, err
			}
			return generator.NewVelocityProxy(v, frame), nil
		},
		"joint_velocity_proxy": func(b *builder, gc config.GeneratorConfig) (any, error) {
			q, err := b.joints(gc.Name, gc.Target)
			if err != nil {
				return nil, err
			}
			return generator.NewJointVelocityProxy(q), nil
		},
		"torque_proxy": func(b *builder, gc config.GeneratorConfig) (any, error) {
			q, err := b.joints(gc.Name, gc.Target)
			if err != nil {
				return nil, err
			}
			return generator.NewTorqueProxy(q), nil
		},
		"null_space": func(b *builder, gc config.GeneratorConfig) (any, error) {
			q, err := b.joints(gc.Name, gc.Target)
			if err != nil {
				return nil, err
			}
			return generator.NewNullSpaceMotion(q), nil
		},
		"external_force": func(*builder, config.GeneratorConfig) (any, error) {
			return generator.NewExternalForce(), nil
		},
		"potential_field": buildPotentialField,
		"force_control":   buildForceControl,
		"mass": func(b *builder, gc config.GeneratorConfig) (any, error) {
			acc, _, err := b.vector6(gc, axes)
			if err != nil {
				return nil, err
			}
			m := param(gc.Params, "mass", 1)
			return generator.NewMass(diagonal6(m, param(gc.Params, "inertia", m)), acc), nil
		},
		"stiffness": buildStiffness,
	}
}

// constraintFactories returns the constraint builders keyed by type tag.
// Separation distance recurses into the builder's own table for its inner
// constraint.
func constraintFactories() map[string]constraintFactory {
	return map[string]constraintFactory{
		"default": func(*builder, config.ConstraintConfig, *float64) (constraint.Constraint, error) {
			return constraint.NewDefault(), nil
		},
		"emergency_stop":       buildEmergencyStop,
		"joint_emergency_stop": buildJointEmergencyStop,
		"separation_distance":  buildSeparationDistance,
		"force": func(b *builder, cc config.ConstraintConfig, limit *float64) (constraint.Constraint, error) {
			return constraint.NewForce(b.limit(cc, "max", limit)), nil
		},
		"velocity": func(b *builder, cc config.ConstraintConfig, limit *float64) (constraint.Constraint, error) {
			return constraint.NewVelocity(b.limit(cc, "max", limit)), nil
		},
		"acceleration": func(b *builder, cc config.ConstraintConfig, limit *float64) (constraint.Constraint, error) {
			return constraint.NewAcceleration(b.limit(cc, "max", limit)), nil
		},
		"power": func(b *builder, cc config.ConstraintConfig, limit *float64) (constraint.Constraint, error) {
			return constraint.NewPower(b.limit(cc, "max", limit)), nil
		},
		"kinetic_energy": func(b *builder, cc config.ConstraintConfig, limit *float64) (constraint.Constraint, error) {
			return constraint.NewKineticEnergy(b.limit(cc, "mass", nil), b.limit(cc, "max", limit)), nil
		},
		"joint_velocity": func(b *builder, cc config.ConstraintConfig, _ *float64) (constraint.Constraint, error) {
			q, err := b.joints(cc.Name, cc.Limits)
			if err != nil {
				return nil, err
			}
			return constraint.NewJointVelocity(q), nil
		},
		"joint_acceleration": func(b *builder, cc config.ConstraintConfig, _ *float64) (constraint.Constraint, error) {
			q, err := b.joints(cc.Name, cc.Limits)
			if err != nil {
				return nil, err
			}
			return constraint.NewJointAcceleration(q), nil
		},
	}
}

func GeneratorTypes() []string  { return keys(generatorFactories()) }
func ConstraintTypes() []string { return keys(constraintFactories()) }

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func param(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

func diagonal6(linear, angular float64) *mat.Dense {
	return mat.DenseCopyOf(mat.NewDiagDense(6, []float64{linear, linear, linear, angular, angular, angular}))
}

func buildPotentialField(b *builder, gc config.GeneratorConfig) (any, error) {
	frame, err := spatial.ParseFrame(gc.Frame)
	if err != nil {
		return nil, err
	}
	g := generator.NewPotentialField(frame)
	for _, oc := range gc.Objects {
		typ, err := generator.ParseObjectType(oc.Type)
		if err != nil {
			return nil, err
		}
		objFrame, err := spatial.ParseFrame(oc.Frame)
		if err != nil {
			return nil, err
		}
		pos, err := position(oc)
		if err != nil {
			return nil, err
		}
		obj := generator.Object{Type: typ, Gain: oc.Gain, Threshold: oc.Threshold, Position: pos, Frame: objFrame}
		if err := g.Add(oc.Name, obj, false); err != nil {
			return nil, err
		}
		b.params.bindPosition(gc.Name+"."+oc.Name, pos)
	}
	return g, nil
}

func buildForceControl(b *builder, gc config.GeneratorConfig) (any, error) {
	target, _, err := b.vector6(gc, wrenchAxes)
	if err != nil {
		return nil, err
	}
	targetType, err := generator.ParseTargetType(gc.TargetType)
	if err != nil {
		return nil, err
	}

	params := &generator.ForceControlParameters{}
	kp, kd := param(gc.Params, "kp", 0), param(gc.Params, "kd", 0)
	for i := range params.Selection {
		params.Selection[i] = len(gc.Selection) == 0 || (i < len(gc.Selection) && gc.Selection[i])
		params.ProportionalGain[i] = kp
		params.DerivativeGain[i] = kd
	}
	b.params.bindVector6(gc.Name+".kp", &params.ProportionalGain, axes)
	b.params.bindVector6(gc.Name+".kd", &params.DerivativeGain, axes)

	var opts []generator.ForceControlOption
	if hz, ok := gc.Params["cutoff"]; ok {
		opts = append(opts, generator.WithCutoffFrequency(hz))
	}
	if tau, ok := gc.Params["time_constant"]; ok {
		opts = append(opts, generator.WithTimeConstant(tau))
	}
	return generator.NewForceControl(target, params, targetType, opts...), nil
}

func buildStiffness(b *builder, gc config.GeneratorConfig) (any, error) {
	pose := spatial.IdentityPose()
	switch len(gc.Target) {
	case 0:
	case 3, 4:
		pose.Position = r3.Vector{X: gc.Target[0], Y: gc.Target[1], Z: gc.Target[2]}
		if len(gc.Target) == 4 {
			pose.Orientation = spatial.RotationZ(gc.Target[3])
		}
	default:
		return nil, errors.Wrapf(ErrBadValues, "stiffness %q target: %d", gc.Name, len(gc.Target))
	}
	b.params.bindPosition(gc.Name, &pose.Position)

	k := param(gc.Params, "stiffness", 0)
	return generator.NewStiffness(diagonal6(k, param(gc.Params, "rot_stiffness", 0)), &pose), nil
}

func buildEmergencyStop(b *builder, cc config.ConstraintConfig, _ *float64) (constraint.Constraint, error) {
	mode, err := constraint.ParseMode(cc.Mode)
	if err != nil {
		return nil, err
	}
	force := &constraint.Threshold{
		Activation:   param(cc.Params, "force_activation", math.Inf(1)),
		Deactivation: param(cc.Params, "force_deactivation", 0),
	}
	torque := &constraint.Threshold{
		Activation:   param(cc.Params, "torque_activation", math.Inf(1)),
		Deactivation: param(cc.Params, "torque_deactivation", 0),
	}
	b.params.bind(cc.Name, "force_activation", &force.Activation)
	b.params.bind(cc.Name, "force_deactivation", &force.Deactivation)
	b.params.bind(cc.Name, "torque_activation", &torque.Activation)
	b.params.bind(cc.Name, "torque_deactivation", &torque.Deactivation)
	return constraint.NewEmergencyStop(mode, force, torque)
}

func buildJointEmergencyStop(b *builder, cc config.ConstraintConfig, _ *float64) (constraint.Constraint, error) {
	n := b.robot.JointCount()
	if len(cc.Limits) != n || len(cc.Deactivation) != n {
		return nil, errors.Wrapf(ErrBadValues, "joint emergency stop %q needs %d activation and deactivation values", cc.Name, n)
	}
	return constraint.NewJointEmergencyStop(append([]float64(nil), cc.Limits...), append([]float64(nil), cc.Deactivation...))
}

func buildSeparationDistance(b *builder, cc config.ConstraintConfig, _ *float64) (constraint.Constraint, error) {
	if cc.Inner == nil || cc.Interpolator == nil {
		return nil, errors.Errorf("experiment: separation distance %q needs an inner constraint and an interpolator", cc.Name)
	}
	frame, err := spatial.ParseFrame(cc.Frame)
	if err != nil {
		return nil, err
	}

	interp, err := buildInterpolator(cc.Interpolator)
	if err != nil {
		return nil, errors.Wrapf(err, "separation distance %q", cc.Name)
	}
	inner, err := b.constraint(*cc.Inner, interp.Output())
	if err != nil {
		return nil, errors.Wrapf(err, "separation distance %q", cc.Name)
	}

	c := constraint.NewSeparationDistance(inner, interp, frame)
	for _, oc := range cc.Objects {
		pos, err := position(oc)
		if err != nil {
			return nil, err
		}
		if err := c.Add(oc.Name, pos, false); err != nil {
			return nil, err
		}
		b.params.bindPosition(cc.Name+"."+oc.Name, pos)
	}
	return c, nil
}

func buildInterpolator(ic *config.InterpolatorConfig) (interpolator.Interpolator, error) {
	switch ic.Type {
	case "", "linear":
		from := interpolator.Point{X: ic.From.X, Y: ic.From.Y}
		to := interpolator.Point{X: ic.To.X, Y: ic.To.Y}
		if ic.Saturation {
			return interpolator.NewSaturatedLinear(from, to, nil), nil
		}
		return interpolator.NewLinear(from, to, nil), nil
	case "polynomial":
		return interpolator.NewPolynomial(polyPoint(ic.From), polyPoint(ic.To), nil), nil
	}
	return nil, errors.Wrapf(ErrUnknownType, "interpolator %q", ic.Type)
}

func polyPoint(p config.PointConfig) polynomial.Point {
	return polynomial.Point{X: p.X, Y: p.Y, DY: p.DY, D2Y: p.D2Y}
}

func position(oc config.ObjectConfig) (*r3.Vector, error) {
	if len(oc.Position) != 3 {
		return nil, errors.Wrapf(ErrBadValues, "object %q position: %d", oc.Name, len(oc.Position))
	}
	return &r3.Vector{X: oc.Position[0], Y: oc.Position[1], Z: oc.Position[2]}, nil
}
