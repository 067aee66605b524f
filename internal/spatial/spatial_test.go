package spatial

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestVector6(t *testing.T) {
	v := NewVector6(r3.Vector{X: 3, Y: 4}, r3.Vector{})
	test.That(t, v.Norm(), test.ShouldAlmostEqual, 5.0)
	test.That(t, v.Linear(), test.ShouldResemble, r3.Vector{X: 3, Y: 4})
	test.That(t, v.Angular(), test.ShouldResemble, r3.Vector{})

	other := Vector6{1, 1, 1, 1, 1, 1}
	v.Add(&other)
	test.That(t, v, test.ShouldResemble, Vector6{4, 5, 1, 1, 1, 1})

	v.Scale(0)
	test.That(t, v.IsZero(), test.ShouldBeTrue)

	v[2] = math.NaN()
	test.That(t, v.IsValid(), test.ShouldBeFalse)
}

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, f, test.ShouldEqual, ControlPoint)

	f, err = ParseFrame("Base")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, f, test.ShouldEqual, Base)

	_, err = ParseFrame("tool0")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPoseExpress(t *testing.T) {
	p := Pose{Position: r3.Vector{X: 1}, Orientation: RotationZ(math.Pi / 2)}

	local := r3.Vector{X: 1}
	base := p.ToBase(local)
	test.That(t, base.X, test.ShouldAlmostEqual, 1.0, 1e-12)
	test.That(t, base.Y, test.ShouldAlmostEqual, 1.0, 1e-12)

	back := p.ToLocal(base)
	test.That(t, back.X, test.ShouldAlmostEqual, 1.0, 1e-12)
	test.That(t, back.Y, test.ShouldAlmostEqual, 0.0, 1e-12)

	test.That(t, p.Express(local, ControlPoint, ControlPoint), test.ShouldResemble, local)
	test.That(t, p.Origin(ControlPoint), test.ShouldResemble, r3.Vector{})
	test.That(t, p.Origin(Base), test.ShouldResemble, r3.Vector{X: 1})
}

func TestPoseError(t *testing.T) {
	current := IdentityPose()
	target := Pose{Position: r3.Vector{X: 0.1, Z: -0.2}, Orientation: RotationZ(0.01)}

	e := current.Error(&target)
	test.That(t, e[0], test.ShouldAlmostEqual, 0.1)
	test.That(t, e[2], test.ShouldAlmostEqual, -0.2)
	test.That(t, e[5], test.ShouldAlmostEqual, math.Sin(0.01), 1e-12)
}

func TestSpatialTransformation(t *testing.T) {
	p := Pose{Orientation: RotationZ(math.Pi / 2)}
	tr := mat.NewDense(6, 6, nil)
	p.FillSpatialTransformation(tr)

	v := Vector6{1, 0, 0, 0, 0, 1}
	ToBase(tr, &v)
	test.That(t, v[0], test.ShouldAlmostEqual, 0.0, 1e-12)
	test.That(t, v[1], test.ShouldAlmostEqual, 1.0, 1e-12)
	test.That(t, v[5], test.ShouldAlmostEqual, 1.0, 1e-12)

	ToControlPoint(tr, &v)
	test.That(t, v.ApproxEqual(Vector6{1, 0, 0, 0, 0, 1}, 1e-12), test.ShouldBeTrue)

	h := mat.NewDense(4, 4, nil)
	p.Position = r3.Vector{X: 2}
	p.FillTransformation(h)
	test.That(t, h.At(0, 3), test.ShouldEqual, 2.0)
	test.That(t, h.At(3, 3), test.ShouldEqual, 1.0)
}
