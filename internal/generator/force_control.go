package generator

import (
	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/signal"
	"github.com/san-kum/phrictl/internal/spatial"
)

// TargetType tells how the target wrench of a ForceControl is interpreted.
type TargetType int

const (
	// Environment targets are forces applied to the environment. The measured
	// wrench, being the reaction on the robot, is negated.
	Environment TargetType = iota
	// Robot targets are forces felt by the robot.
	Robot
)

func ParseTargetType(s string) (TargetType, error) {
	switch s {
	case "", "environment":
		return Environment, nil
	case "robot":
		return Robot, nil
	}
	return Environment, errors.Errorf("generator: unknown force target type %q", s)
}

// ForceControlParameters are the PD gains and the axes under force control.
type ForceControlParameters struct {
	ProportionalGain spatial.Vector6
	DerivativeGain   spatial.Vector6
	Selection        [6]bool
}

// ForceControl regulates the measured wrench toward a target by producing a
// control point twist Kp·e + Kd·ė. Axes not selected output zero.
type ForceControl struct {
	velocityBase
	target     *spatial.Wrench
	params     *ForceControlParameters
	targetType TargetType

	cutoffFrequency float64
	timeConstant    float64

	filtered spatial.Vector6
}

type ForceControlOption func(*ForceControl)

// WithCutoffFrequency low-pass filters the error before differentiation.
func WithCutoffFrequency(hz float64) ForceControlOption {
	return func(g *ForceControl) { g.cutoffFrequency = hz }
}

// WithTimeConstant low-pass filters the error with time constant tau (s).
func WithTimeConstant(tau float64) ForceControlOption {
	return func(g *ForceControl) { g.timeConstant = tau }
}

func NewForceControl(target *spatial.Wrench, params *ForceControlParameters, targetType TargetType, opts ...ForceControlOption) *ForceControl {
	g := &ForceControl{target: target, params: params, targetType: targetType}
	g.velocityBase = newVelocityBase(g, spatial.ControlPoint)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *ForceControl) Parameters() *ForceControlParameters { return g.params }
func (g *ForceControl) Target() *spatial.Wrench             { return g.target }

func (g *ForceControl) smoothing(dt float64) float64 {
	switch {
	case g.cutoffFrequency > 0:
		return signal.Smoothing(dt, g.cutoffFrequency)
	case g.timeConstant > 0:
		return signal.SmoothingFromTimeConstant(dt, g.timeConstant)
	default:
		return 0
	}
}

func (g *ForceControl) update(out *spatial.Twist) {
	if g.robot == nil {
		return
	}
	measured := &g.robot.Task.State.Wrench
	dt := g.robot.Control.TimeStep
	alpha := g.smoothing(dt)

	for i := range out {
		if !g.params.Selection[i] {
			g.filtered[i] = 0
			continue
		}

		var e float64
		if g.targetType == Environment {
			e = g.target[i] + measured[i]
		} else {
			e = g.target[i] - measured[i]
		}

		filtered := alpha*g.filtered[i] + (1-alpha)*e
		out[i] = g.params.ProportionalGain[i] * e
		if dt > 0 {
			out[i] += g.params.DerivativeGain[i] * (filtered - g.filtered[i]) / dt
		}
		g.filtered[i] = filtered
	}
}
