package signal

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestSmoothing(t *testing.T) {
	dt := 0.005
	f := 10.0
	alpha := Smoothing(dt, f)
	test.That(t, alpha, test.ShouldAlmostEqual, 1/(1+2*math.Pi*f*dt))

	tau := 1 / (2 * math.Pi * f)
	test.That(t, SmoothingFromTimeConstant(dt, tau), test.ShouldAlmostEqual, alpha, 1e-12)
	test.That(t, SmoothingFromTimeConstant(dt, 0), test.ShouldEqual, 0.0)
}

func TestLowPassFilter(t *testing.T) {
	lp := NewLowPassFilter(0.5)
	test.That(t, lp.Filter(1), test.ShouldAlmostEqual, 0.5)
	test.That(t, lp.Filter(1), test.ShouldAlmostEqual, 0.75)
	test.That(t, lp.Value(), test.ShouldAlmostEqual, 0.75)

	lp.Reset()
	test.That(t, lp.Value(), test.ShouldEqual, 0.0)

	pass := NewLowPassFilter(0)
	test.That(t, pass.Filter(3), test.ShouldEqual, 3.0)

	// converges to a constant input
	lp = NewLowPassFilterFromFrequency(0.001, 5)
	for i := 0; i < 5000; i++ {
		lp.Filter(2)
	}
	test.That(t, lp.Value(), test.ShouldAlmostEqual, 2.0, 1e-6)
}

func TestDerivator(t *testing.T) {
	d := NewDerivator(2)
	out := make([]float64, 2)

	d.Derive([]float64{1, 2}, out, 0.1)
	test.That(t, out, test.ShouldResemble, []float64{0, 0})

	d.Derive([]float64{1.5, 1}, out, 0.1)
	test.That(t, out[0], test.ShouldAlmostEqual, 5.0)
	test.That(t, out[1], test.ShouldAlmostEqual, -10.0)
}

func TestDeadband(t *testing.T) {
	v := []float64{0.05, -0.2, -0.01, 1}
	Deadband(v, 0.1)
	test.That(t, v, test.ShouldResemble, []float64{0, -0.2, 0, 1})
}
