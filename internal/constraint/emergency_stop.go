package constraint

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Threshold is a hysteresis pair. Deactivation must be strictly lower than
// Activation.
type Threshold struct {
	Activation   float64
	Deactivation float64
}

func (t *Threshold) validate() error {
	if t == nil {
		return errors.Wrap(ErrThresholds, "missing threshold")
	}
	if t.Deactivation >= t.Activation {
		return errors.Wrapf(ErrThresholds, "activation %g, deactivation %g", t.Activation, t.Deactivation)
	}
	return nil
}

// Mode selects the checks performed by an EmergencyStop.
type Mode int

const (
	CheckForce Mode = iota
	CheckTorque
	CheckBoth
)

func (m Mode) String() string {
	switch m {
	case CheckForce:
		return "force"
	case CheckTorque:
		return "torque"
	default:
		return "both"
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "force":
		return CheckForce, nil
	case "torque":
		return CheckTorque, nil
	case "", "both":
		return CheckBoth, nil
	}
	return CheckBoth, errors.Errorf("constraint: unknown emergency stop mode %q", s)
}

// latch accumulates the checks of one cycle.
type latch struct {
	trigger bool
	hold    bool
}

func (l *latch) observe(magnitude float64, t *Threshold) {
	if magnitude >= t.Activation {
		l.trigger = true
	}
	if magnitude > t.Deactivation {
		l.hold = true
	}
}

// next returns the new activation state: set when any check reaches its
// activation threshold, kept while any check stays above its deactivation
// threshold.
func (l *latch) next(active bool) bool {
	return l.trigger || (active && l.hold)
}

// EmergencyStop outputs 0 once the external force at the control point or
// the external joint torques reach their activation threshold, and 1 again
// only after every enabled check has fallen to its deactivation threshold.
type EmergencyStop struct {
	base
	mode   Mode
	force  *Threshold
	torque *Threshold
	active bool
}

// NewEmergencyStop validates the thresholds of the enabled checks. The
// threshold handles may be changed live afterwards.
func NewEmergencyStop(mode Mode, force, torque *Threshold) (*EmergencyStop, error) {
	if mode != CheckTorque {
		if err := force.validate(); err != nil {
			return nil, errors.Wrap(err, "force")
		}
	}
	if mode != CheckForce {
		if err := torque.validate(); err != nil {
			return nil, errors.Wrap(err, "torque")
		}
	}
	return &EmergencyStop{mode: mode, force: force, torque: torque}, nil
}

func (c *EmergencyStop) Active() bool { return c.active }
func (c *EmergencyStop) Mode() Mode   { return c.mode }

func (c *EmergencyStop) Reset() { c.active = false }

func (c *EmergencyStop) Compute() float64 {
	if c.robot == nil {
		return 1
	}
	var l latch
	if c.mode != CheckTorque {
		f := c.robot.Task.State.Wrench.Linear()
		l.observe(f.Norm(), c.force)
	}
	if c.mode != CheckForce {
		l.observe(norm(c.robot.Joints.State.Force), c.torque)
	}
	c.active = l.next(c.active)
	if c.active {
		return 0
	}
	return 1
}

// JointEmergencyStop applies the same latch to each joint's external
// torque against per-joint thresholds.
type JointEmergencyStop struct {
	base
	activation   []float64
	deactivation []float64
	active       bool
}

func NewJointEmergencyStop(activation, deactivation []float64) (*JointEmergencyStop, error) {
	if len(activation) != len(deactivation) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%d activation and %d deactivation thresholds", len(activation), len(deactivation))
	}
	for i := range activation {
		t := Threshold{Activation: activation[i], Deactivation: deactivation[i]}
		if err := t.validate(); err != nil {
			return nil, errors.Wrapf(err, "joint %d", i)
		}
	}
	return &JointEmergencyStop{activation: activation, deactivation: deactivation}, nil
}

func (c *JointEmergencyStop) Active() bool { return c.active }

func (c *JointEmergencyStop) Compute() float64 {
	if c.robot == nil {
		return 1
	}
	var l latch
	torques := c.robot.Joints.State.Force
	for i := 0; i < len(torques) && i < len(c.activation); i++ {
		t := Threshold{Activation: c.activation[i], Deactivation: c.deactivation[i]}
		l.observe(math.Abs(torques[i]), &t)
	}
	c.active = l.next(c.active)
	if c.active {
		return 0
	}
	return 1
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
