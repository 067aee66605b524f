package constraint

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/san-kum/phrictl/internal/interpolator"
	"github.com/san-kum/phrictl/internal/robot"
	"github.com/san-kum/phrictl/internal/spatial"
)

func newStop(t *testing.T, mode Mode) (*EmergencyStop, *robot.Robot) {
	t.Helper()
	r := robot.New("test", 7)
	c, err := NewEmergencyStop(mode,
		&Threshold{Activation: 25, Deactivation: 5},
		&Threshold{Activation: 5, Deactivation: 1})
	test.That(t, err, test.ShouldBeNil)
	c.SetRobot(r)
	return c, r
}

func TestEmergencyStopHysteresis(t *testing.T) {
	c, r := newStop(t, CheckForce)
	eps := 0.1

	outputs := []float64{}
	for _, f := range []float64{0, 25 + eps, 5 + eps, 5 - eps} {
		r.Task.State.Wrench[0] = f
		outputs = append(outputs, c.Compute())
	}
	test.That(t, outputs, test.ShouldResemble, []float64{1, 0, 0, 1})
	test.That(t, c.Active(), test.ShouldBeFalse)
}

func TestEmergencyStopBoth(t *testing.T) {
	c, r := newStop(t, CheckBoth)

	steps := []struct {
		force, torque float64
		want          float64
	}{
		{0, 0, 1},
		{3, 0, 1},
		{15, 0, 1},
		{30, 0, 0},
		{15, 0, 0},
		{4, 0, 1},
		{4, 6, 0},
		{30, 6, 0},
		{30, 0.5, 0},
		{2, 0.5, 1},
	}
	for _, s := range steps {
		r.Task.State.Wrench[0] = s.force
		r.Joints.State.Force[0] = s.torque
		test.That(t, c.Compute(), test.ShouldEqual, s.want)
	}
}

func TestEmergencyStopTorqueHold(t *testing.T) {
	c, r := newStop(t, CheckBoth)

	r.Task.State.Wrench[0] = 30
	test.That(t, c.Compute(), test.ShouldEqual, 0.0)

	// force released but torque still inside its band
	r.Task.State.Wrench[0] = 0
	r.Joints.State.Force[0] = 2
	test.That(t, c.Compute(), test.ShouldEqual, 0.0)

	r.Joints.State.Force[0] = 0.5
	test.That(t, c.Compute(), test.ShouldEqual, 1.0)
}

func TestEmergencyStopTorqueOnlyIgnoresForce(t *testing.T) {
	c, r := newStop(t, CheckTorque)
	r.Task.State.Wrench[0] = 100
	test.That(t, c.Compute(), test.ShouldEqual, 1.0)
	test.That(t, c.Mode(), test.ShouldEqual, CheckTorque)
}

func TestEmergencyStopInvalidThresholds(t *testing.T) {
	_, err := NewEmergencyStop(CheckForce, &Threshold{Activation: 5, Deactivation: 5}, nil)
	test.That(t, errors.Is(err, ErrThresholds), test.ShouldBeTrue)

	_, err = NewEmergencyStop(CheckBoth, &Threshold{Activation: 5, Deactivation: 1}, nil)
	test.That(t, errors.Is(err, ErrThresholds), test.ShouldBeTrue)

	_, err = NewEmergencyStop(CheckForce, &Threshold{Activation: 5, Deactivation: 1}, nil)
	test.That(t, err, test.ShouldBeNil)
}

func TestJointEmergencyStop(t *testing.T) {
	r := robot.New("test", 2)
	c, err := NewJointEmergencyStop([]float64{5, 10}, []float64{1, 2})
	test.That(t, err, test.ShouldBeNil)
	c.SetRobot(r)

	r.Joints.State.Force[1] = -11
	test.That(t, c.Compute(), test.ShouldEqual, 0.0)
	r.Joints.State.Force[1] = 3
	test.That(t, c.Compute(), test.ShouldEqual, 0.0)
	r.Joints.State.Force[1] = 1
	test.That(t, c.Compute(), test.ShouldEqual, 1.0)

	_, err = NewJointEmergencyStop([]float64{5}, []float64{1, 2})
	test.That(t, errors.Is(err, ErrDimensionMismatch), test.ShouldBeTrue)
}

func TestForce(t *testing.T) {
	r := robot.New("test", 6)
	maximum := 10.0
	c := NewForce(&maximum)
	c.SetRobot(r)

	test.That(t, c.Compute(), test.ShouldEqual, 1.0)

	r.Task.State.Wrench.SetLinear(r3.Vector{X: 12, Y: 16})
	test.That(t, c.Compute(), test.ShouldAlmostEqual, 0.5)

	r.Task.State.Wrench.SetLinear(r3.Vector{X: 5})
	test.That(t, c.Compute(), test.ShouldEqual, 1.0)
}

func TestVelocityFamily(t *testing.T) {
	r := robot.New("test", 6)
	r.Control.TimeStep = 0.1
	r.Control.Task.TotalVelocity = spatial.Twist{0.3, 0.4, 0, 0, 0, 0}

	vmax := 0.25
	v := NewVelocity(&vmax)
	v.SetRobot(r)
	test.That(t, v.Compute(), test.ShouldAlmostEqual, 0.5)

	amax := 1.0
	a := NewAcceleration(&amax)
	a.SetRobot(r)
	r.Task.Command.Twist = spatial.Twist{0.1, 0, 0, 0, 0, 0}
	test.That(t, a.Compute(), test.ShouldAlmostEqual, 0.4)

	mass, energy := 2.0, 0.0625
	ke := NewKineticEnergy(&mass, &energy)
	ke.SetRobot(r)
	test.That(t, ke.Compute(), test.ShouldAlmostEqual, 0.5)

	pmax := 1.0
	p := NewPower(&pmax)
	p.SetRobot(r)
	r.Task.State.Wrench = spatial.Wrench{-10, 0, 0, 0, 0, 0}
	test.That(t, p.Compute(), test.ShouldAlmostEqual, 1/3.0)
	test.That(t, p.Power(), test.ShouldAlmostEqual, -3.0)

	r.Task.State.Wrench = spatial.Wrench{10, 0, 0, 0, 0, 0}
	test.That(t, p.Compute(), test.ShouldEqual, 1.0)
}

func TestJointLimits(t *testing.T) {
	r := robot.New("test", 3)
	r.Control.TimeStep = 0.01
	copy(r.Control.Joints.TotalVelocity, []float64{1, -2, 0})

	jv := NewJointVelocity([]float64{2, 1, 1})
	jv.SetRobot(r)
	test.That(t, jv.Compute(), test.ShouldAlmostEqual, 0.5)

	copy(r.Joints.Command.Velocity, []float64{0.5, 0, 0})
	ja := NewJointAcceleration([]float64{10, 100, 1})
	ja.SetRobot(r)
	// joint 0: (0.5+0.1)/1, joint 1: (0+1)/2, joint 2 skipped
	test.That(t, ja.Compute(), test.ShouldAlmostEqual, 0.5)
}

func TestSeparationDistance(t *testing.T) {
	r := robot.New("test", 6)
	r.Task.State.Pose.Position = r3.Vector{X: 1}
	r.Control.Task.TotalVelocity = spatial.Twist{1, 0, 0, 0, 0, 0}

	interp := interpolator.NewSaturatedLinear(
		interpolator.Point{X: 0.1, Y: 0},
		interpolator.Point{X: 0.5, Y: 0.5},
		nil)
	inner := NewVelocity(interp.Output())
	c := NewSeparationDistance(inner, interp, spatial.Base)
	c.SetRobot(r)

	// no object: infinitely far, saturated
	test.That(t, c.Compute(), test.ShouldAlmostEqual, 0.5)
	test.That(t, math.IsInf(c.Distance(), 1), test.ShouldBeTrue)

	far := r3.Vector{X: 2}
	near := r3.Vector{X: 1, Y: 0.3}
	test.That(t, c.Add("far", &far, false), test.ShouldBeNil)
	test.That(t, c.Add("near", &near, false), test.ShouldBeNil)
	test.That(t, c.Add("near", &near, false), test.ShouldNotBeNil)

	test.That(t, c.Compute(), test.ShouldAlmostEqual, 0.25)
	test.That(t, c.Distance(), test.ShouldAlmostEqual, 0.3)

	// objects are live handles
	near.Y = 0.05
	test.That(t, c.Compute(), test.ShouldEqual, 0.0)

	test.That(t, c.Remove("near"), test.ShouldBeNil)
	test.That(t, c.Compute(), test.ShouldAlmostEqual, 0.5)
	test.That(t, c.Inner(), test.ShouldEqual, inner)
}

func TestSeparationDistanceWithoutObjectsStaysFinite(t *testing.T) {
	r := robot.New("test", 6)
	r.Task.State.Wrench.SetLinear(r3.Vector{X: 10})

	interp := interpolator.NewLinear(
		interpolator.Point{X: 0.1, Y: 20},
		interpolator.Point{X: 0.5, Y: 20},
		nil)
	c := NewSeparationDistance(NewForce(interp.Output()), interp, spatial.Base)
	c.SetRobot(r)

	v := c.Compute()
	test.That(t, math.IsInf(c.Distance(), 1), test.ShouldBeTrue)
	test.That(t, *interp.Output(), test.ShouldEqual, 20.0)
	test.That(t, math.IsNaN(v), test.ShouldBeFalse)
	test.That(t, v, test.ShouldEqual, 1.0)

	r.Task.State.Wrench.SetLinear(r3.Vector{X: 40})
	test.That(t, c.Compute(), test.ShouldAlmostEqual, 0.5)
}

func TestDefaultAndFunc(t *testing.T) {
	test.That(t, NewDefault().Compute(), test.ShouldEqual, 1.0)

	r := robot.New("test", 1)
	f := NewFunc(func(r *robot.Robot) float64 { return r.Control.TimeStep * 100 })
	f.SetRobot(r)
	test.That(t, f.Compute(), test.ShouldAlmostEqual, robot.DefaultTimeStep*100)
}
