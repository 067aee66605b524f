package model

import (
	"errors"
	"math"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phrictl/internal/robot"
	"github.com/san-kum/phrictl/internal/spatial"
)

func TestGantryUpdate(t *testing.T) {
	r := robot.New("gantry", 4)
	m := New(NewGantry())

	copy(r.Joints.State.Position, []float64{0.1, 0.2, 0.3, math.Pi / 2})
	copy(r.Joints.State.Velocity, []float64{1, 0, 0, 0})
	test.That(t, m.Update(r), test.ShouldBeNil)

	pose := r.Task.State.Pose
	test.That(t, pose.Position.X, test.ShouldAlmostEqual, 0.1)
	test.That(t, pose.Position.Z, test.ShouldAlmostEqual, 0.3)
	test.That(t, r.Control.Transformation.At(0, 3), test.ShouldAlmostEqual, 0.1)

	// base x is the control point's -y after a quarter turn
	test.That(t, r.Task.State.Twist[0], test.ShouldAlmostEqual, 0.0, 1e-12)
	test.That(t, r.Task.State.Twist[1], test.ShouldAlmostEqual, -1.0, 1e-12)

	var product mat.Dense
	product.Mul(r.Control.JacobianInverse, r.Control.Jacobian)
	test.That(t, mat.EqualApprox(&product, eye(4), 1e-9), test.ShouldBeTrue)
	test.That(t, m.Damping(), test.ShouldEqual, 0.0)
}

func TestPlanarArmForward(t *testing.T) {
	arm, err := NewPlanarArm(1, 1)
	test.That(t, err, test.ShouldBeNil)

	var pose spatial.Pose
	arm.Forward([]float64{0, math.Pi / 2}, &pose)
	test.That(t, pose.Position.X, test.ShouldAlmostEqual, 1.0, 1e-12)
	test.That(t, pose.Position.Y, test.ShouldAlmostEqual, 1.0, 1e-12)
	test.That(t, pose.Orientation, test.ShouldResemble, spatial.RotationZ(math.Pi/2))
}

func TestPlanarArmJacobianMatchesFiniteDifferences(t *testing.T) {
	arm, err := NewPlanarArm(0.5, 0.4, 0.3)
	test.That(t, err, test.ShouldBeNil)

	q := []float64{0.3, -0.7, 1.1}
	jac := mat.NewDense(6, 3, nil)
	arm.Jacobian(q, jac)

	const h = 1e-6
	var plus, minus spatial.Pose
	for j := range q {
		qp := append([]float64(nil), q...)
		qm := append([]float64(nil), q...)
		qp[j] += h
		qm[j] -= h
		arm.Forward(qp, &plus)
		arm.Forward(qm, &minus)
		test.That(t, jac.At(0, j), test.ShouldAlmostEqual, (plus.Position.X-minus.Position.X)/(2*h), 1e-6)
		test.That(t, jac.At(1, j), test.ShouldAlmostEqual, (plus.Position.Y-minus.Position.Y)/(2*h), 1e-6)
		test.That(t, jac.At(5, j), test.ShouldEqual, 1.0)
	}
}

func TestDampedInverseNearSingularity(t *testing.T) {
	arm, err := NewPlanarArm(1, 1)
	test.That(t, err, test.ShouldBeNil)
	r := robot.New("arm", 2)
	m := New(arm, WithDamping(0.2, 10))

	test.That(t, m.Update(r), test.ShouldBeNil)
	test.That(t, m.SmallestSingularValue(), test.ShouldBeLessThan, 10)
	test.That(t, m.Damping(), test.ShouldBeGreaterThan, 0)
	test.That(t, m.Damping(), test.ShouldBeLessThanOrEqualTo, 0.2)

	rows, cols := r.Control.JacobianInverse.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := r.Control.JacobianInverse.At(i, j)
			test.That(t, math.IsNaN(v) || math.IsInf(v, 0), test.ShouldBeFalse)
		}
	}
}

func TestUpdateDimensionMismatch(t *testing.T) {
	m := New(NewGantry())
	err := m.Update(robot.New("arm", 3))
	test.That(t, errors.Is(err, ErrDimensionMismatch), test.ShouldBeTrue)
}

func TestNewKinematics(t *testing.T) {
	k, err := NewKinematics("planar_arm", []float64{1, 2, 3})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, k.JointCount(), test.ShouldEqual, 3)

	_, err = NewKinematics("planar_arm", []float64{1, 0})
	test.That(t, errors.Is(err, ErrInvalidLinks), test.ShouldBeTrue)

	_, err = NewKinematics("delta", nil)
	test.That(t, errors.Is(err, ErrUnknownKinematics), test.ShouldBeTrue)
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
